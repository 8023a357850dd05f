package standup

import (
	"fmt"
	"log"
	"strings"
)

// TargetMode selects where a day's standup traffic lives.
type TargetMode int

const (
	// ModeChannel posts everything into the standup channel itself.
	ModeChannel TargetMode = iota
	// ModeThread keeps one thread per day under the standup channel.
	ModeThread
)

// ParseTargetMode parses the deployment config value.
func ParseTargetMode(value string) (TargetMode, error) {
	switch value {
	case "channel":
		return ModeChannel, nil
	case "thread":
		return ModeThread, nil
	default:
		return 0, fmt.Errorf("invalid target mode %q: expected \"channel\" or \"thread\"", value)
	}
}

func (m TargetMode) String() string {
	if m == ModeChannel {
		return "channel"
	}
	return "thread"
}

// ResolverConfig tunes target discovery.
type ResolverConfig struct {
	Mode      TargetMode
	ChannelID string
	// ArchiveLookback is how many recently archived threads to inspect
	// when searching for a day's thread.
	ArchiveLookback int
}

// Resolver finds or creates the target for a given day. Resolution is
// idempotent: repeated calls for the same day return the same target and
// create at most one thread. The cached target is trusted only while its
// day matches the requested day; a restart or a stale cache heals by
// searching the channel's threads again. The Resolver is not synchronized,
// the Service serializes access.
type Resolver struct {
	transport Transport
	mode      TargetMode
	channelID string
	lookback  int

	cachedDay string
	cached    *Target
}

// NewResolver builds a resolver over the given transport.
func NewResolver(transport Transport, cfg ResolverConfig) *Resolver {
	lookback := cfg.ArchiveLookback
	if lookback <= 0 {
		lookback = 20
	}
	return &Resolver{
		transport: transport,
		mode:      cfg.Mode,
		channelID: cfg.ChannelID,
		lookback:  lookback,
	}
}

// Mode returns the configured target mode.
func (r *Resolver) Mode() TargetMode {
	return r.mode
}

// ChannelID returns the standup channel.
func (r *Resolver) ChannelID() string {
	return r.channelID
}

// ResolveToday returns the target for the given day, creating the day's
// thread when none exists yet. intro is posted into a freshly created
// thread; pass "" to skip it. The returned bool reports whether a thread
// was created by this call.
func (r *Resolver) ResolveToday(day, intro string) (*Target, bool, error) {
	if r.mode == ModeChannel {
		return &Target{ID: r.channelID}, false, nil
	}

	if r.cached != nil && r.cachedDay == day {
		return r.cached, false, nil
	}

	target, err := r.search(day)
	if err != nil {
		return nil, false, err
	}
	if target != nil {
		r.adopt(day, target)
		return target, false, nil
	}

	target, err = r.transport.CreateThread(r.channelID, day+" Standup")
	if err != nil {
		return nil, false, fmt.Errorf("error creating standup thread: %w", err)
	}
	if intro != "" {
		if err := r.transport.SendMessage(target.ID, intro); err != nil {
			log.Printf("Error posting standup template to thread %s: %v", target.ID, err)
		}
	}
	r.adopt(day, target)
	return target, true, nil
}

// Lookup returns the target for a day without ever creating one. A nil
// target means no thread exists for that day.
func (r *Resolver) Lookup(day string) (*Target, error) {
	if r.mode == ModeChannel {
		return &Target{ID: r.channelID}, nil
	}
	if r.cached != nil && r.cachedDay == day {
		return r.cached, nil
	}
	return r.search(day)
}

// Adopt caches a target observed from live traffic, so a restarted process
// stops re-searching once the day's thread shows up in events.
func (r *Resolver) Adopt(day string, target *Target) {
	if r.mode == ModeChannel || target == nil {
		return
	}
	r.adopt(day, target)
}

// Cached returns the cached target when it is valid for the given day.
func (r *Resolver) Cached(day string) *Target {
	if r.cached != nil && r.cachedDay == day {
		return r.cached
	}
	return nil
}

// Invalidate drops the cached target, forcing the next resolution to
// search again.
func (r *Resolver) Invalidate() {
	r.cached = nil
	r.cachedDay = ""
}

func (r *Resolver) adopt(day string, target *Target) {
	r.cached = target
	r.cachedDay = day
}

// search scans open threads first, then the most recently archived ones,
// for a thread whose name carries the day label.
func (r *Resolver) search(day string) (*Target, error) {
	active, err := r.transport.ActiveThreads(r.channelID)
	if err != nil {
		return nil, fmt.Errorf("error listing active threads: %w", err)
	}
	if target := matchThread(active, day); target != nil {
		return target, nil
	}

	archived, err := r.transport.ArchivedThreads(r.channelID, r.lookback)
	if err != nil {
		return nil, fmt.Errorf("error listing archived threads: %w", err)
	}
	return matchThread(archived, day), nil
}

func matchThread(threads []Target, day string) *Target {
	for i := range threads {
		if strings.Contains(threads[i].Name, day) {
			return &threads[i]
		}
	}
	return nil
}
