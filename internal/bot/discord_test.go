package bot

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestSnowflakeAt(t *testing.T) {
	epoch := time.UnixMilli(discordEpoch)

	if got := snowflakeAt(epoch); got != "0" {
		t.Fatalf("snowflakeAt(epoch) = %q, want 0", got)
	}
	if got := snowflakeAt(epoch.Add(-time.Hour)); got != "0" {
		t.Fatalf("pre-epoch time must clamp to 0, got %q", got)
	}
	if got := snowflakeAt(epoch.Add(time.Second)); got != "4194304000" {
		t.Fatalf("snowflakeAt(epoch+1s) = %q, want 4194304000", got)
	}
}

func TestSnowflakeAtRoundTrip(t *testing.T) {
	moment := time.Date(2025, time.March, 4, 9, 30, 0, 0, time.UTC)

	parsed, err := discordgo.SnowflakeTimestamp(snowflakeAt(moment))
	if err != nil {
		t.Fatalf("SnowflakeTimestamp: %v", err)
	}
	if !parsed.Equal(moment) {
		t.Fatalf("round trip = %v, want %v", parsed, moment)
	}
}

func TestNewestID(t *testing.T) {
	messages := []*discordgo.Message{
		{ID: "300"},
		{ID: "1000"},
		{ID: "999"},
	}
	if got := newestID(messages); got != "1000" {
		t.Fatalf("newestID = %q, want 1000 (numeric, not lexicographic)", got)
	}
}

func TestThreadTarget(t *testing.T) {
	target := threadTarget(&discordgo.Channel{ID: "4194304000", Name: "03/04/2025 Standup"})

	if target.ID != "4194304000" || target.Name != "03/04/2025 Standup" {
		t.Fatalf("unexpected target: %+v", target)
	}
	want := time.UnixMilli(discordEpoch).Add(time.Second)
	if !target.CreatedAt.Equal(want) {
		t.Fatalf("CreatedAt = %v, want %v", target.CreatedAt, want)
	}
}
