package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleINI = `[PERSONAL_INFO]
USERNAME = user@example.com
PASSWORD = secret
SCHEDULE_ID = 1234567
GROUP_ID = 7654321
YOUR_EMBASSY = en-am-yer
CURRENT_APPOINTMENT_DATE = 2024-05-15

[NOTIFICATION]
TELEGRAM_BOT_TOKEN = 123:abc
TELEGRAM_CHAT_ID = -1001234
TELEGRAM_MESSAGE_THREAD_ID = 5

[TIME]
RETRY_TIME_L_BOUND = 30
RETRY_TIME_U_BOUND = 90
WORK_LIMIT_TIME = 2
WORK_COOLDOWN_TIME = 0.25
BAN_COOLDOWN_TIME = 4

[CHROMEDRIVER]
LOCAL_USE = True
HUB_ADDRESS =

[POLL]
MODE = dates
PERIOD_START = 2024-01-01
PERIOD_END = 2024-06-01
`

// writeConfig writes content to a file with the given name inside a temp dir.
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_INI(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.ini", sampleINI))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Accounts) != 1 || cfg.Accounts[0].Username != "user@example.com" {
		t.Errorf("unexpected accounts %+v", cfg.Accounts)
	}
	if cfg.Embassy.Code != "en-am" || cfg.Embassy.FacilityID != 122 || cfg.Embassy.ContinueMarker != "Continue" {
		t.Errorf("unexpected embassy %+v", cfg.Embassy)
	}
	if cfg.Notification.TelegramChatID != -1001234 || cfg.Notification.TelegramMessageThreadID != 5 {
		t.Errorf("unexpected notification target %+v", cfg.Notification)
	}
	if got := cfg.Time.RetryLower(); got != 30*time.Second {
		t.Errorf("RetryLower() = %v", got)
	}
	if got := cfg.Time.WorkCooldown(); got != 15*time.Minute {
		t.Errorf("WorkCooldown() = %v", got)
	}
	if got := cfg.Time.Wait(); got != 60*time.Second {
		t.Errorf("Wait() default = %v", got)
	}
	if !cfg.ChromeDriver.LocalUse {
		t.Error("expected local_use true")
	}
	if cfg.Poll.Mode != PollModeDates {
		t.Errorf("Mode = %q", cfg.Poll.Mode)
	}
	if cfg.Poll.UnavailableStatus != "No Appointments Available" {
		t.Errorf("UnavailableStatus default = %q", cfg.Poll.UnavailableStatus)
	}
	if cfg.CurrentAppointment.Format("2006-01-02") != "2024-05-15" {
		t.Errorf("CurrentAppointment = %v", cfg.CurrentAppointment)
	}
	if cfg.Period.String() != "2024-01-01 - 2024-06-01" {
		t.Errorf("Period = %v", cfg.Period)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TIME_RETRY_TIME_U_BOUND", "120")
	t.Setenv("TELEGRAM_BOT_TOKEN", "999:zzz")

	cfg, err := Load(writeConfig(t, "config.ini", strings.Replace(sampleINI, "TELEGRAM_BOT_TOKEN = 123:abc\n", "", 1)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Time.RetryUpper(); got != 120*time.Second {
		t.Errorf("RetryUpper() = %v, want 2m", got)
	}
	if cfg.Notification.TelegramBotToken != "999:zzz" {
		t.Errorf("TelegramBotToken = %q", cfg.Notification.TelegramBotToken)
	}
}

func TestLoad_YAMLAccounts(t *testing.T) {
	content := `
personal_info:
  username: first@example.com
  password: one
  schedule_id: "42"
  embassy_code: en-ca
  facility_id: 94
accounts:
  - username: second@example.com
    password: two
`
	cfg, err := Load(writeConfig(t, "config.yaml", content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(cfg.Accounts))
	}
	if cfg.Accounts[0].Username != "first@example.com" || cfg.Accounts[1].Username != "second@example.com" {
		t.Errorf("primary account must come first, got %+v", cfg.Accounts)
	}
	if cfg.Location() != "en-ca/94" {
		t.Errorf("Location() = %q", cfg.Location())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		wantErr string
	}{
		{"retry bounds inverted", [2]string{"RETRY_TIME_L_BOUND = 30", "RETRY_TIME_L_BOUND = 300"}, "retry bounds"},
		{"remote without hub", [2]string{"LOCAL_USE = True", "LOCAL_USE = False"}, "hub_address"},
		{"unknown embassy", [2]string{"YOUR_EMBASSY = en-am-yer", "YOUR_EMBASSY = xx-xx-xxx"}, "unknown embassy"},
		{"unknown mode", [2]string{"MODE = dates", "MODE = calendar"}, "poll.mode"},
		{"bad date", [2]string{"PERIOD_END = 2024-06-01", "PERIOD_END = June"}, "period_end"},
		{"period inverted", [2]string{"PERIOD_END = 2024-06-01", "PERIOD_END = 2023-06-01"}, "period_start"},
		{"missing schedule", [2]string{"SCHEDULE_ID = 1234567", "SCHEDULE_ID ="}, "schedule_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(sampleINI, tt.replace[0], tt.replace[1], 1)
			_, err := Load(writeConfig(t, "config.ini", content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.ini")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestURLs(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.ini", sampleINI))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	urls := cfg.URLs()

	want := map[string]string{
		"SignIn":  "https://ais.usvisa-info.com/en-am/niv/users/sign_in",
		"Payment": "https://ais.usvisa-info.com/en-am/niv/schedule/1234567/payment",
		"Days":    "https://ais.usvisa-info.com/en-am/niv/schedule/1234567/appointment/days/122.json?appointments[expedite]=false",
		"SignOut": "https://ais.usvisa-info.com/en-am/niv/users/sign_out",
	}
	got := map[string]string{
		"SignIn":  urls.SignIn,
		"Payment": urls.Payment,
		"Days":    urls.Days,
		"SignOut": urls.SignOut,
	}
	for name, w := range want {
		if got[name] != w {
			t.Errorf("%s = %q, want %q", name, got[name], w)
		}
	}
	wantTimes := "https://ais.usvisa-info.com/en-am/niv/schedule/1234567/appointment/times/122.json?date=2024-04-20&appointments[expedite]=false"
	if got := urls.TimesURL("2024-04-20"); got != wantTimes {
		t.Errorf("TimesURL() = %q, want %q", got, wantTimes)
	}
}

func TestEmbassyKeysSorted(t *testing.T) {
	keys := EmbassyKeys()
	if len(keys) != len(Embassies) {
		t.Fatalf("expected %d keys, got %d", len(Embassies), len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}
