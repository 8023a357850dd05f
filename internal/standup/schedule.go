package standup

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Trigger names. The scheduler fires these back into Service.RunTrigger.
const (
	TriggerDailyReset     = "dailyReset"
	TriggerPrompt         = "prompt"
	TriggerSecondReminder = "secondReminder"
	TriggerFollowup       = "followup"
	TriggerPrecreate      = "precreate"
)

// Schedule registers cron triggers. Implemented by internal/scheduler.
// Apply replaces the previous trigger set atomically: either every spec in
// the new set is registered, or the old set keeps running.
type Schedule interface {
	Apply(loc *time.Location, triggers map[string]string, run func(trigger string)) error
	NextFire(trigger string) (time.Time, bool)
	Stop()
}

// ParseClock parses a 24-hour "HH:MM" string.
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}

// BuildTriggers derives the cron spec for every trigger the settings call
// for. The daily reset always runs every day so the tracker day flips on
// weekends too; the weekday filter only applies to the notification
// triggers. precreateEvery of zero disables the pre-creation poll.
func BuildTriggers(s Settings, precreateEvery time.Duration) (map[string]string, error) {
	triggers := map[string]string{
		TriggerDailyReset: "0 0 * * *",
	}

	promptSpec, err := cronSpec(s.ReminderTime, s.WeekdaysOnly)
	if err != nil {
		return nil, fmt.Errorf("reminder time: %w", err)
	}
	triggers[TriggerPrompt] = promptSpec

	if s.SecondReminderTime != "" {
		spec, err := cronSpec(s.SecondReminderTime, s.WeekdaysOnly)
		if err != nil {
			return nil, fmt.Errorf("second reminder time: %w", err)
		}
		triggers[TriggerSecondReminder] = spec
	}

	followupSpec, err := cronSpec(s.DeadlineTime, s.WeekdaysOnly)
	if err != nil {
		return nil, fmt.Errorf("deadline time: %w", err)
	}
	triggers[TriggerFollowup] = followupSpec

	if precreateEvery > 0 {
		triggers[TriggerPrecreate] = fmt.Sprintf("@every %s", precreateEvery)
	}

	return triggers, nil
}

func cronSpec(clock string, weekdaysOnly bool) (string, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	dow := "*"
	if weekdaysOnly {
		dow = "1-5"
	}
	return fmt.Sprintf("%d %d * * %s", minute, hour, dow), nil
}
