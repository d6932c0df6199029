// internal/infra/browser/parser.go
package browser

import (
	"encoding/json"
	"fmt"
	"strings"

	"visa_slot_watcher/internal/domain/appointment"
	"visa_slot_watcher/internal/domain/session"

	"github.com/PuerkitoBio/goquery"
)

// paymentRowsSelector points at the location/status table of the payment page.
const paymentRowsSelector = "#paymentOptions > div:nth-of-type(2) > table > tbody > tr"

// paymentRows is how many table rows are read. The page lists one row per
// consular location and only the first two are of interest.
const paymentRows = 2

// ParsePaymentTable reads the first two (location, status) rows of the payment page.
// When a row or one of its cells is missing the result is not Complete and
// holds only the rows read before it.
func ParsePaymentTable(html string) (appointment.PollResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return appointment.PollResult{}, fmt.Errorf("%w: failed to parse payment page: %v", session.ErrBadPayload, err)
	}

	result := appointment.PollResult{Snapshot: appointment.Snapshot{}, Complete: true}
	rows := doc.Find(paymentRowsSelector)
	for i := 0; i < paymentRows; i++ {
		cells := rows.Eq(i).Children().Filter("td")
		if cells.Length() < 2 {
			result.Complete = false
			break
		}
		location := cellText(cells.Eq(0))
		status := cellText(cells.Eq(1))
		result.Snapshot[location] = status
	}
	return result, nil
}

// cellText mimics rendered text: trimmed, with runs of whitespace collapsed.
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

type availableDay struct {
	Date        string `json:"date"`
	BusinessDay bool   `json:"business_day"`
}

// ParseDays decodes the days JSON endpoint and returns the offered dates in site order.
func ParseDays(body string) ([]string, error) {
	var days []availableDay
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &days); err != nil {
		return nil, fmt.Errorf("%w: failed to decode available days: %v", session.ErrBadPayload, err)
	}
	dates := make([]string, 0, len(days))
	for _, d := range days {
		if d.Date != "" {
			dates = append(dates, d.Date)
		}
	}
	return dates, nil
}

type availableTimes struct {
	AvailableTimes []string `json:"available_times"`
	BusinessTimes  []string `json:"business_times"`
}

// ParseTimes decodes the times JSON endpoint. Slots listed as available win;
// business times are the fallback the site fills for some posts.
func ParseTimes(body string) ([]string, error) {
	var times availableTimes
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &times); err != nil {
		return nil, fmt.Errorf("%w: failed to decode available times: %v", session.ErrBadPayload, err)
	}
	if len(times.AvailableTimes) > 0 {
		return times.AvailableTimes, nil
	}
	return times.BusinessTimes, nil
}

// IsSignInPage reports whether the browser was sent back to the login form.
func IsSignInPage(location string) bool {
	return strings.Contains(location, "/users/sign_in")
}
