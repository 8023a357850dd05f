package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"standupbot/internal/standup"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, dir
}

func TestFirstRunMaterializesDefaults(t *testing.T) {
	s, dir := newTestStore(t)

	settings, err := s.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings != standup.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", settings)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Fatalf("expected settings file on disk: %v", err)
	}

	roster, err := s.LoadRoster()
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	if len(roster) != 0 {
		t.Fatalf("expected empty roster, got %v", roster)
	}
	if _, err := os.Stat(filepath.Join(dir, "users.json")); err != nil {
		t.Fatalf("expected roster file on disk: %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	settings := standup.DefaultSettings()
	settings.ReminderTime = "08:00"
	settings.SecondReminderTime = "10:15"
	settings.Timezone = "Europe/Berlin"
	settings.WeekdaysOnly = false

	if err := s.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	loaded, err := s.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if loaded != settings {
		t.Fatalf("round trip mismatch:\nsaved  %+v\nloaded %+v", settings, loaded)
	}
}

func TestPartialSettingsKeepDefaults(t *testing.T) {
	s, dir := newTestStore(t)

	// A data file from an older version that only knew the reminder time.
	partial := []byte(`{"reminder_time": "08:45"}`)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), partial, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	settings, err := s.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings.ReminderTime != "08:45" {
		t.Fatalf("expected stored reminder time, got %q", settings.ReminderTime)
	}
	defaults := standup.DefaultSettings()
	if settings.DeadlineTime != defaults.DeadlineTime {
		t.Fatalf("missing key must keep default, got %q", settings.DeadlineTime)
	}
	if settings.Timezone != defaults.Timezone {
		t.Fatalf("missing key must keep default, got %q", settings.Timezone)
	}
	if settings.WeekdaysOnly != defaults.WeekdaysOnly {
		t.Fatalf("missing key must keep default, got %v", settings.WeekdaysOnly)
	}
}

func TestRosterRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	want := []string{"111", "222", "333"}
	if err := s.SaveRoster(want); err != nil {
		t.Fatalf("SaveRoster: %v", err)
	}
	got, err := s.LoadRoster()
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("LoadRoster = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LoadRoster = %v, want %v (order must be preserved)", got, want)
		}
	}
}

func TestSaveRosterNil(t *testing.T) {
	s, dir := newTestStore(t)

	if err := s.SaveRoster(nil); err != nil {
		t.Fatalf("SaveRoster(nil): %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "users.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("expected empty JSON array on disk, got %q", data)
	}
}

func TestCorruptFilesSurfaceErrors(t *testing.T) {
	s, dir := newTestStore(t)

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := s.LoadSettings(); err == nil || !strings.Contains(err.Error(), "error parsing") {
		t.Fatalf("expected parse error, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "users.json"), []byte(`{"not":"a list"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := s.LoadRoster(); err == nil || !strings.Contains(err.Error(), "error parsing") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestNewCreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	if _, err := New(dir); err != nil {
		t.Fatalf("New: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected data directory created: %v", err)
	}
}
