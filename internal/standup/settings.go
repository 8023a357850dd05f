package standup

import (
	"fmt"
	"time"
)

// dayLayout is the calendar label used for thread names, recap headers and
// tracker day keys, e.g. "08/25/2026".
const dayLayout = "01/02/2006"

// Settings are the runtime-configurable knobs. They are mutated through
// commands and persisted as JSON, so the field tags are the on-disk format.
type Settings struct {
	ReminderTime       string `json:"reminder_time"`
	SecondReminderTime string `json:"second_reminder_time,omitempty"`
	DeadlineTime       string `json:"deadline_time"`
	Timezone           string `json:"timezone"`
	WeekdaysOnly       bool   `json:"weekdays_only"`
	StandupFormat      string `json:"standup_format"`
}

// DefaultSettings returns the configuration a fresh deployment starts with.
func DefaultSettings() Settings {
	return Settings{
		ReminderTime:       "09:30",
		SecondReminderTime: "",
		DeadlineTime:       "11:00",
		Timezone:           "America/Los_Angeles",
		WeekdaysOnly:       true,
		StandupFormat:      "**Yesterday:**\n- \n\n**Today:**\n- \n\n**Blockers:**\n- ",
	}
}

// Validate rejects settings that cannot be scheduled.
func (s Settings) Validate() error {
	if _, _, err := ParseClock(s.ReminderTime); err != nil {
		return fmt.Errorf("reminder time: %w", err)
	}
	if s.SecondReminderTime != "" {
		if _, _, err := ParseClock(s.SecondReminderTime); err != nil {
			return fmt.Errorf("second reminder time: %w", err)
		}
	}
	if _, _, err := ParseClock(s.DeadlineTime); err != nil {
		return fmt.Errorf("deadline time: %w", err)
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// Location resolves the configured timezone.
func (s Settings) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// DayLabel formats t as the calendar day label used everywhere a day is
// named: thread titles, recap headers, tracker keys.
func DayLabel(t time.Time) string {
	return t.Format(dayLayout)
}

// ParseDayLabel parses a day label back into the midnight of that day in loc.
func ParseDayLabel(label string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, label, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected MM/DD/YYYY", label)
	}
	return t, nil
}
