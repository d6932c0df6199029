// internal/infra/config/urls.go
package config

import (
	"fmt"
	"net/url"
)

// SiteURLs are the pages the watcher visits, resolved for one embassy and schedule.
type SiteURLs struct {
	SignIn  string
	Payment string
	Days    string
	// Times needs the date substituted, see TimesURL.
	Times   string
	SignOut string
}

// URLs builds the site links from the base URL, embassy code, schedule and facility.
func (c *AppConfig) URLs() SiteURLs {
	root := fmt.Sprintf("%s/%s/niv", c.Site.BaseURL, c.Embassy.Code)
	schedule := fmt.Sprintf("%s/schedule/%s", root, c.PersonalInfo.ScheduleID)
	return SiteURLs{
		SignIn:  root + "/users/sign_in",
		Payment: schedule + "/payment",
		Days:    fmt.Sprintf("%s/appointment/days/%d.json?appointments[expedite]=false", schedule, c.Embassy.FacilityID),
		Times:   fmt.Sprintf("%s/appointment/times/%d.json?date=%%s&appointments[expedite]=false", schedule, c.Embassy.FacilityID),
		SignOut: root + "/users/sign_out",
	}
}

// TimesURL is the time slots endpoint for one YYYY-MM-DD date.
func (u SiteURLs) TimesURL(date string) string {
	return fmt.Sprintf(u.Times, url.QueryEscape(date))
}

// Location is the display name used for the office in dates mode snapshots.
func (c *AppConfig) Location() string {
	if c.PersonalInfo.YourEmbassy != "" {
		return c.PersonalInfo.YourEmbassy
	}
	return fmt.Sprintf("%s/%d", c.Embassy.Code, c.Embassy.FacilityID)
}
