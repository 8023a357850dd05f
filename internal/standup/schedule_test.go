package standup

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		value   string
		hour    int
		minute  int
		wantErr bool
	}{
		{value: "09:30", hour: 9, minute: 30},
		{value: "9:30", hour: 9, minute: 30},
		{value: "00:00", hour: 0, minute: 0},
		{value: "23:59", hour: 23, minute: 59},
		{value: "24:00", wantErr: true},
		{value: "09:60", wantErr: true},
		{value: "-1:00", wantErr: true},
		{value: "09", wantErr: true},
		{value: "09:30:00", wantErr: true},
		{value: "9am", wantErr: true},
		{value: "aa:bb", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tt := range tests {
		hour, minute, err := ParseClock(tt.value)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseClock(%q): expected error", tt.value)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", tt.value, err)
		}
		if hour != tt.hour || minute != tt.minute {
			t.Fatalf("ParseClock(%q) = %d:%d, want %d:%d", tt.value, hour, minute, tt.hour, tt.minute)
		}
	}
}

func TestBuildTriggers(t *testing.T) {
	t.Run("weekday defaults", func(t *testing.T) {
		triggers, err := BuildTriggers(testSettings(), 0)
		if err != nil {
			t.Fatalf("BuildTriggers: %v", err)
		}

		want := map[string]string{
			TriggerDailyReset: "0 0 * * *",
			TriggerPrompt:     "30 9 * * 1-5",
			TriggerFollowup:   "0 11 * * 1-5",
		}
		if len(triggers) != len(want) {
			t.Fatalf("expected %d triggers, got %v", len(want), triggers)
		}
		for name, spec := range want {
			if triggers[name] != spec {
				t.Fatalf("trigger %s = %q, want %q", name, triggers[name], spec)
			}
		}
	})

	t.Run("every day", func(t *testing.T) {
		settings := testSettings()
		settings.WeekdaysOnly = false

		triggers, err := BuildTriggers(settings, 0)
		if err != nil {
			t.Fatalf("BuildTriggers: %v", err)
		}
		if got := triggers[TriggerPrompt]; got != "30 9 * * *" {
			t.Fatalf("expected every-day prompt spec, got %q", got)
		}
		// The reset runs daily regardless.
		if got := triggers[TriggerDailyReset]; got != "0 0 * * *" {
			t.Fatalf("expected daily reset spec, got %q", got)
		}
	})

	t.Run("second reminder", func(t *testing.T) {
		settings := testSettings()
		settings.SecondReminderTime = "10:30"

		triggers, err := BuildTriggers(settings, 0)
		if err != nil {
			t.Fatalf("BuildTriggers: %v", err)
		}
		if got := triggers[TriggerSecondReminder]; got != "30 10 * * 1-5" {
			t.Fatalf("expected second reminder spec, got %q", got)
		}
	})

	t.Run("precreate poll", func(t *testing.T) {
		triggers, err := BuildTriggers(testSettings(), 15*time.Minute)
		if err != nil {
			t.Fatalf("BuildTriggers: %v", err)
		}
		if got := triggers[TriggerPrecreate]; got != "@every 15m0s" {
			t.Fatalf("expected precreate spec, got %q", got)
		}
	})

	t.Run("invalid times rejected", func(t *testing.T) {
		settings := testSettings()
		settings.ReminderTime = "25:00"
		if _, err := BuildTriggers(settings, 0); err == nil {
			t.Fatal("expected error for invalid reminder time")
		}

		settings = testSettings()
		settings.SecondReminderTime = "nope"
		if _, err := BuildTriggers(settings, 0); err == nil {
			t.Fatal("expected error for invalid second reminder time")
		}
	})
}
