// internal/infra/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"visa_slot_watcher/internal/domain/appointment"
	"visa_slot_watcher/internal/domain/session"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Poll modes.
const (
	PollModePayment = "payment"
	PollModeDates   = "dates"
)

const DefaultBaseURL = "https://ais.usvisa-info.com"

// AppConfig holds all configuration for the application.
// It is loaded once at start and never mutated afterwards.
type AppConfig struct {
	PersonalInfo PersonalInfo       `mapstructure:"personal_info"`
	Accounts     []session.Account  `mapstructure:"accounts"`
	Site         SiteConfig         `mapstructure:"site"`
	Notification NotificationConfig `mapstructure:"notification"`
	Time         TimeConfig         `mapstructure:"time"`
	ChromeDriver ChromeDriverConfig `mapstructure:"chromedriver"`
	Poll         PollConfig         `mapstructure:"poll"`
	Log          LogConfig          `mapstructure:"log"`

	// Resolved by Load from the raw fields above.
	Embassy            Embassy            `mapstructure:"-"`
	CurrentAppointment time.Time          `mapstructure:"-"`
	Period             appointment.Period `mapstructure:"-"`
}

type PersonalInfo struct {
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	ScheduleID  string `mapstructure:"schedule_id"`
	YourEmbassy string `mapstructure:"your_embassy"`

	// Overrides of the built-in embassy table entry.
	EmbassyCode    string `mapstructure:"embassy_code"`
	FacilityID     int    `mapstructure:"facility_id"`
	ContinueMarker string `mapstructure:"continue_marker"`

	CurrentAppointmentDate string `mapstructure:"current_appointment_date"`
}

type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type NotificationConfig struct {
	TelegramBotToken        string `mapstructure:"telegram_bot_token"`
	TelegramChatID          int64  `mapstructure:"telegram_chat_id"`
	TelegramMessageThreadID int    `mapstructure:"telegram_message_thread_id"`
	TelegramAPIURL          string `mapstructure:"telegram_api_url"`
	NotifyOnException       bool   `mapstructure:"notify_on_exception"`
	HeartbeatCron           string `mapstructure:"heartbeat_cron"`
}

// TimeConfig keeps the units of the config file: seconds for short waits, hours for rests.
type TimeConfig struct {
	StepTime         float64 `mapstructure:"step_time"`
	WaitTimeout      float64 `mapstructure:"wait_timeout"`
	RetryTimeLBound  float64 `mapstructure:"retry_time_l_bound"`
	RetryTimeUBound  float64 `mapstructure:"retry_time_u_bound"`
	WorkLimitTime    float64 `mapstructure:"work_limit_time"`
	WorkCooldownTime float64 `mapstructure:"work_cooldown_time"`
	BanCooldownTime  float64 `mapstructure:"ban_cooldown_time"`
}

type ChromeDriverConfig struct {
	LocalUse   bool   `mapstructure:"local_use"`
	HubAddress string `mapstructure:"hub_address"`
	Headless   bool   `mapstructure:"headless"`
}

type PollConfig struct {
	Mode                string `mapstructure:"mode"`
	PeriodStart         string `mapstructure:"period_start"`
	PeriodEnd           string `mapstructure:"period_end"`
	UnavailableStatus   string `mapstructure:"unavailable_status"`
	CompareInconclusive bool   `mapstructure:"compare_inconclusive"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
	Dir         string `mapstructure:"dir"`
}

// shortEnv are secrets commonly kept in a .env file under flat names.
var shortEnv = map[string]string{
	"personal_info.username":          "VISA_USERNAME",
	"personal_info.password":          "VISA_PASSWORD",
	"notification.telegram_bot_token": "TELEGRAM_BOT_TOKEN",
	"notification.telegram_chat_id":   "TELEGRAM_CHAT_ID",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("personal_info.username", "")
	v.SetDefault("personal_info.password", "")
	v.SetDefault("personal_info.schedule_id", "")
	v.SetDefault("personal_info.your_embassy", "")
	v.SetDefault("personal_info.embassy_code", "")
	v.SetDefault("personal_info.facility_id", 0)
	v.SetDefault("personal_info.continue_marker", "")
	v.SetDefault("personal_info.current_appointment_date", "")

	v.SetDefault("site.base_url", DefaultBaseURL)

	v.SetDefault("notification.telegram_bot_token", "")
	v.SetDefault("notification.telegram_chat_id", 0)
	v.SetDefault("notification.telegram_message_thread_id", 0)
	v.SetDefault("notification.telegram_api_url", "")
	v.SetDefault("notification.notify_on_exception", false)
	v.SetDefault("notification.heartbeat_cron", "")

	v.SetDefault("time.step_time", 0.5)
	v.SetDefault("time.wait_timeout", 60)
	v.SetDefault("time.retry_time_l_bound", 60)
	v.SetDefault("time.retry_time_u_bound", 180)
	v.SetDefault("time.work_limit_time", 1.5)
	v.SetDefault("time.work_cooldown_time", 0.5)
	v.SetDefault("time.ban_cooldown_time", 5)

	v.SetDefault("chromedriver.local_use", true)
	v.SetDefault("chromedriver.hub_address", "")
	v.SetDefault("chromedriver.headless", true)

	v.SetDefault("poll.mode", PollModePayment)
	v.SetDefault("poll.period_start", "")
	v.SetDefault("poll.period_end", "")
	v.SetDefault("poll.unavailable_status", appointment.DefaultUnavailableStatus)
	v.SetDefault("poll.compare_inconclusive", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.environment", "development")
	v.SetDefault("log.dir", "")
}

// Load reads the config file at path (INI, YAML or JSON by extension), then
// applies environment overrides. A .env file in the working directory is
// loaded first; it never overrides variables that are already set.
// An empty path reads configuration from defaults and environment only.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range shortEnv {
		upper := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, upper, env); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolve fills the derived fields: embassy identifiers, dates and the account list.
func (c *AppConfig) resolve() error {
	c.Poll.Mode = strings.ToLower(strings.TrimSpace(c.Poll.Mode))
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Environment = strings.ToLower(c.Log.Environment)
	c.Site.BaseURL = strings.TrimRight(c.Site.BaseURL, "/")

	if c.PersonalInfo.YourEmbassy != "" {
		embassy, ok := Embassies[strings.ToLower(c.PersonalInfo.YourEmbassy)]
		if !ok && (c.PersonalInfo.EmbassyCode == "" || c.PersonalInfo.FacilityID == 0) {
			return fmt.Errorf("unknown embassy %q", c.PersonalInfo.YourEmbassy)
		}
		c.Embassy = embassy
	}
	if c.PersonalInfo.EmbassyCode != "" {
		c.Embassy.Code = c.PersonalInfo.EmbassyCode
	}
	if c.PersonalInfo.FacilityID != 0 {
		c.Embassy.FacilityID = c.PersonalInfo.FacilityID
	}
	if c.PersonalInfo.ContinueMarker != "" {
		c.Embassy.ContinueMarker = c.PersonalInfo.ContinueMarker
	}
	if c.Embassy.ContinueMarker == "" {
		c.Embassy.ContinueMarker = "Continue"
	}

	var err error
	if s := c.PersonalInfo.CurrentAppointmentDate; s != "" {
		if c.CurrentAppointment, err = appointment.ParseDate(s); err != nil {
			return fmt.Errorf("invalid current_appointment_date: %w", err)
		}
	}
	if s := c.Poll.PeriodStart; s != "" {
		if c.Period.Start, err = appointment.ParseDate(s); err != nil {
			return fmt.Errorf("invalid period_start: %w", err)
		}
	}
	if s := c.Poll.PeriodEnd; s != "" {
		if c.Period.End, err = appointment.ParseDate(s); err != nil {
			return fmt.Errorf("invalid period_end: %w", err)
		}
	}

	if c.PersonalInfo.Username != "" {
		primary := session.Account{Username: c.PersonalInfo.Username, Password: c.PersonalInfo.Password}
		c.Accounts = append([]session.Account{primary}, c.Accounts...)
	}
	return nil
}

// Validate checks the invariants the watcher relies on.
func (c *AppConfig) Validate() error {
	if len(c.Accounts) == 0 {
		return fmt.Errorf("at least one account is required (personal_info.username)")
	}
	for i, a := range c.Accounts {
		if a.Username == "" || a.Password == "" {
			return fmt.Errorf("account %d: username and password are required", i)
		}
	}
	if c.PersonalInfo.ScheduleID == "" {
		return fmt.Errorf("personal_info.schedule_id is not set")
	}
	if c.Embassy.Code == "" || c.Embassy.FacilityID == 0 {
		return fmt.Errorf("embassy is not set (personal_info.your_embassy or embassy_code + facility_id)")
	}
	if c.Time.RetryTimeLBound < 0 || c.Time.RetryTimeUBound < c.Time.RetryTimeLBound {
		return fmt.Errorf("invalid retry bounds [%v, %v]", c.Time.RetryTimeLBound, c.Time.RetryTimeUBound)
	}
	if c.Time.WaitTimeout <= 0 {
		return fmt.Errorf("time.wait_timeout must be positive")
	}
	if !c.ChromeDriver.LocalUse && c.ChromeDriver.HubAddress == "" {
		return fmt.Errorf("chromedriver.hub_address is required when local_use is false")
	}
	switch c.Poll.Mode {
	case PollModePayment, PollModeDates:
	default:
		return fmt.Errorf("unknown poll.mode %q", c.Poll.Mode)
	}
	if !c.Period.Start.IsZero() && !c.Period.End.IsZero() && !c.Period.Start.Before(c.Period.End) {
		return fmt.Errorf("poll.period_start must be before poll.period_end")
	}
	return nil
}

func seconds(v float64) time.Duration { return time.Duration(v * float64(time.Second)) }
func hours(v float64) time.Duration   { return time.Duration(v * float64(time.Hour)) }

func (t TimeConfig) Step() time.Duration         { return seconds(t.StepTime) }
func (t TimeConfig) Wait() time.Duration         { return seconds(t.WaitTimeout) }
func (t TimeConfig) RetryLower() time.Duration   { return seconds(t.RetryTimeLBound) }
func (t TimeConfig) RetryUpper() time.Duration   { return seconds(t.RetryTimeUBound) }
func (t TimeConfig) WorkLimit() time.Duration    { return hours(t.WorkLimitTime) }
func (t TimeConfig) WorkCooldown() time.Duration { return hours(t.WorkCooldownTime) }
func (t TimeConfig) BanCooldown() time.Duration  { return hours(t.BanCooldownTime) }
