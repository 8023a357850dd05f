package standup

import (
	"testing"
)

func newTestResolver(mode TargetMode) (*Resolver, *fakeTransport) {
	transport := newFakeTransport()
	r := NewResolver(transport, ResolverConfig{
		Mode:      mode,
		ChannelID: testChannel,
	})
	return r, transport
}

func TestResolveTodayCreatesThreadOnce(t *testing.T) {
	r, transport := newTestResolver(ModeThread)

	target, created, err := r.ResolveToday(testDay, "intro text")
	if err != nil {
		t.Fatalf("ResolveToday: %v", err)
	}
	if !created {
		t.Fatal("expected thread creation on first resolve")
	}
	if target.Name != testDay+" Standup" {
		t.Fatalf("expected thread name %q, got %q", testDay+" Standup", target.Name)
	}
	if got := transport.messages[target.ID]; len(got) != 1 || got[0] != "intro text" {
		t.Fatalf("expected intro posted to new thread, got %v", got)
	}

	again, created, err := r.ResolveToday(testDay, "intro text")
	if err != nil {
		t.Fatalf("ResolveToday: %v", err)
	}
	if created {
		t.Fatal("second resolve must not create")
	}
	if again.ID != target.ID {
		t.Fatalf("expected same target, got %q and %q", target.ID, again.ID)
	}
	if transport.createdCount != 1 {
		t.Fatalf("expected 1 create, got %d", transport.createdCount)
	}
}

func TestResolveTodayFindsExistingThreads(t *testing.T) {
	tests := []struct {
		name string
		seed func(*fakeTransport)
	}{
		{
			name: "active thread",
			seed: func(f *fakeTransport) {
				f.active = []Target{{ID: "t-active", Name: testDay + " Standup"}}
			},
		},
		{
			name: "archived thread",
			seed: func(f *fakeTransport) {
				f.archived = []Target{{ID: "t-archived", Name: testDay + " Standup"}}
			},
		},
		{
			name: "name merely contains the day",
			seed: func(f *fakeTransport) {
				f.active = []Target{{ID: "t-active", Name: "Team sync " + testDay}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, transport := newTestResolver(ModeThread)
			tt.seed(transport)

			target, created, err := r.ResolveToday(testDay, "intro")
			if err != nil {
				t.Fatalf("ResolveToday: %v", err)
			}
			if created || transport.createdCount != 0 {
				t.Fatal("existing thread must be reused, not recreated")
			}
			if len(transport.messages[target.ID]) != 0 {
				t.Fatal("intro must not be posted into an existing thread")
			}
		})
	}
}

func TestResolveTodayReplacesStaleCache(t *testing.T) {
	r, transport := newTestResolver(ModeThread)

	first, _, err := r.ResolveToday("03/04/2025", "")
	if err != nil {
		t.Fatalf("ResolveToday: %v", err)
	}
	second, created, err := r.ResolveToday("03/05/2025", "")
	if err != nil {
		t.Fatalf("ResolveToday: %v", err)
	}
	if !created {
		t.Fatal("expected a new thread for the new day")
	}
	if first.ID == second.ID {
		t.Fatal("each day must get its own thread")
	}
	if got := r.Cached("03/05/2025"); got == nil || got.ID != second.ID {
		t.Fatalf("expected cache pinned to new day, got %+v", got)
	}
	if r.Cached("03/04/2025") != nil {
		t.Fatal("stale day must not be cached")
	}
	if transport.createdCount != 2 {
		t.Fatalf("expected 2 creates, got %d", transport.createdCount)
	}
}

func TestLookupNeverCreates(t *testing.T) {
	r, transport := newTestResolver(ModeThread)

	target, err := r.Lookup(testDay)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if target != nil {
		t.Fatalf("expected no target for unknown day, got %+v", target)
	}
	if transport.createdCount != 0 {
		t.Fatalf("lookup must never create, got %d", transport.createdCount)
	}
}

func TestChannelModeResolvesToChannel(t *testing.T) {
	r, transport := newTestResolver(ModeChannel)

	target, created, err := r.ResolveToday(testDay, "intro")
	if err != nil {
		t.Fatalf("ResolveToday: %v", err)
	}
	if created || transport.createdCount != 0 {
		t.Fatal("channel mode must never create threads")
	}
	if target.ID != testChannel {
		t.Fatalf("expected channel target, got %q", target.ID)
	}

	lookup, err := r.Lookup(testDay)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if lookup == nil || lookup.ID != testChannel {
		t.Fatalf("expected channel target from lookup, got %+v", lookup)
	}
}

func TestInvalidateForcesSearch(t *testing.T) {
	r, transport := newTestResolver(ModeThread)

	if _, _, err := r.ResolveToday(testDay, ""); err != nil {
		t.Fatalf("ResolveToday: %v", err)
	}
	searches := transport.activeCalls

	// Cache hit, no search.
	if _, _, err := r.ResolveToday(testDay, ""); err != nil {
		t.Fatalf("ResolveToday: %v", err)
	}
	if transport.activeCalls != searches {
		t.Fatal("cached resolve must not search")
	}

	r.Invalidate()
	if _, _, err := r.ResolveToday(testDay, ""); err != nil {
		t.Fatalf("ResolveToday: %v", err)
	}
	if transport.activeCalls != searches+1 {
		t.Fatal("invalidated resolve must search again")
	}
	if transport.createdCount != 1 {
		t.Fatalf("re-search must find the created thread, got %d creates", transport.createdCount)
	}
}

func TestAdoptPinsCache(t *testing.T) {
	r, transport := newTestResolver(ModeThread)

	r.Adopt(testDay, &Target{ID: "t-live", Name: testDay + " Standup"})

	target, created, err := r.ResolveToday(testDay, "")
	if err != nil {
		t.Fatalf("ResolveToday: %v", err)
	}
	if created || target.ID != "t-live" {
		t.Fatalf("expected adopted target reused, got created=%v id=%q", created, target.ID)
	}
	if transport.activeCalls != 0 {
		t.Fatal("adopted target must satisfy resolution without a search")
	}
}

func TestParseTargetMode(t *testing.T) {
	tests := []struct {
		value   string
		want    TargetMode
		wantErr bool
	}{
		{value: "thread", want: ModeThread},
		{value: "channel", want: ModeChannel},
		{value: "Thread", wantErr: true},
		{value: "", wantErr: true},
		{value: "dm", wantErr: true},
	}

	for _, tt := range tests {
		mode, err := ParseTargetMode(tt.value)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseTargetMode(%q): expected error", tt.value)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTargetMode(%q): %v", tt.value, err)
		}
		if mode != tt.want {
			t.Fatalf("ParseTargetMode(%q) = %v, want %v", tt.value, mode, tt.want)
		}
	}
}
