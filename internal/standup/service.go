package standup

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

const templatePrefix = "**Standup Template:**"

const (
	followupFormat  = "⏰ **Reminder!** The following team members still need to submit their standups: %s"
	secondFormat    = "⏰ **Second Reminder!** The following team members still need to submit their standups (due by %s): %s"
	allClearMessage = "✅ Great job team! Everyone has submitted their standup for today!"
)

// Store persists runtime state across restarts. Implemented by
// internal/store.
type Store interface {
	SaveSettings(Settings) error
	SaveRoster([]string) error
}

// IncomingMessage is a channel or thread message observed on the gateway,
// already filtered to human authors.
type IncomingMessage struct {
	ChannelID  string
	ThreadName string // thread title when the message arrived in a thread
	ParentID   string // thread parent channel, "" for regular channels
	MessageID  string
	AuthorID   string
	AuthorName string
	Content    string
	CreatedAt  time.Time
}

// ServiceConfig wires a Service together.
type ServiceConfig struct {
	Transport Transport
	Store     Store
	Schedule  Schedule
	Settings  Settings
	Roster    []string
	Resolver  ResolverConfig
	// PrecreateEvery enables the thread pre-creation poll when non-zero.
	PrecreateEvery time.Duration
	// RosterOnlyRecaps drops recap entries from users outside the roster.
	RosterOnlyRecaps bool
	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// Service is the standup lifecycle engine: it owns the response tracker,
// the target resolver and the roster, and runs every scheduled and
// user-initiated operation against them. One mutex serializes all of it,
// so a day reset can never interleave with a response being recorded.
type Service struct {
	mu sync.Mutex

	transport Transport
	store     Store
	schedule  Schedule
	resolver  *Resolver

	settings Settings
	loc      *time.Location
	roster   *Roster
	tracker  *Tracker

	precreateEvery time.Duration
	rosterOnly     bool
	triggers       map[string]string
	now            func() time.Time
}

// NewService validates the loaded settings and builds the engine. Invalid
// persisted settings are rejected here rather than detonating inside a
// trigger later.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	loc, err := cfg.Settings.Location()
	if err != nil {
		return nil, err
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	s := &Service{
		transport:      cfg.Transport,
		store:          cfg.Store,
		schedule:       cfg.Schedule,
		resolver:       NewResolver(cfg.Transport, cfg.Resolver),
		settings:       cfg.Settings,
		loc:            loc,
		roster:         NewRoster(cfg.Roster),
		precreateEvery: cfg.PrecreateEvery,
		rosterOnly:     cfg.RosterOnlyRecaps,
		now:            nowFn,
	}
	s.tracker = NewTracker(DayLabel(nowFn().In(loc)))
	return s, nil
}

// ApplySchedule builds cron triggers from the current settings and swaps
// them in, replacing whatever was scheduled before.
func (s *Service) ApplySchedule() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyScheduleLocked()
}

func (s *Service) applyScheduleLocked() error {
	triggers, err := BuildTriggers(s.settings, s.precreateEvery)
	if err != nil {
		return err
	}
	if err := s.schedule.Apply(s.loc, triggers, s.RunTrigger); err != nil {
		return err
	}
	s.triggers = triggers
	log.Printf("Scheduled reminders at %s and follow-ups at %s %s",
		s.settings.ReminderTime, s.settings.DeadlineTime, s.settings.Timezone)
	return nil
}

// RunTrigger dispatches a fired cron trigger. Failures are logged and
// swallowed; a broken morning must not take the scheduler down with it.
func (s *Service) RunTrigger(trigger string) {
	var err error
	switch trigger {
	case TriggerDailyReset:
		s.ResetDay()
	case TriggerPrompt:
		err = s.SendPrompt()
	case TriggerSecondReminder:
		err = s.SendSecondReminder()
	case TriggerFollowup:
		err = s.SendFollowup()
	case TriggerPrecreate:
		err = s.Precreate()
	default:
		log.Printf("Unknown trigger: %s", trigger)
	}
	if err != nil {
		log.Printf("Error running %s trigger: %v", trigger, err)
	}
}

// SendPrompt resolves today's target, posts the standup prompt into the
// standup channel and starts a fresh tracking day. Members that cannot be
// resolved are left out of the mention list; an unresolvable target aborts
// the whole send.
func (s *Service) SendPrompt() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.todayLocked()
	_, created, err := s.resolver.ResolveToday(day, s.templateIntroLocked())
	if err != nil {
		return err
	}
	if created {
		log.Printf("Created standup thread for %s", day)
	}

	mentions := s.mentionRosterLocked()
	if err := s.transport.SendMessage(s.resolver.ChannelID(), s.promptMessageLocked(day, mentions)); err != nil {
		return fmt.Errorf("error sending standup prompt: %w", err)
	}

	s.tracker.Reset(day)
	log.Printf("Sent standup prompt for %s", day)
	return nil
}

// SendFollowup posts the deadline check into today's target: a mention
// list of everyone still missing, or the all-clear when nobody is. The
// target is resolved with full creation semantics, so a followup still
// works on a day whose prompt never fired.
func (s *Service) SendFollowup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.todayLocked()
	s.ensureDayLocked(day)

	target, created, err := s.resolver.ResolveToday(day, s.templateIntroLocked())
	if err != nil {
		return err
	}
	if created {
		log.Printf("Created standup thread for %s", day)
	}

	missing := s.missingMembersLocked()
	if len(missing) == 0 {
		if err := s.transport.SendMessage(target.ID, allClearMessage); err != nil {
			return fmt.Errorf("error sending follow-up: %w", err)
		}
		log.Println("All users have submitted their standups")
		return nil
	}

	msg := fmt.Sprintf(followupFormat, joinMentions(missing))
	if err := s.transport.SendMessage(target.ID, msg); err != nil {
		return fmt.Errorf("error sending follow-up: %w", err)
	}
	log.Printf("Sent follow-up notification to %d users", len(missing))
	return nil
}

// SendSecondReminder nudges everyone still missing ahead of the deadline.
// Unlike the followup it stays silent when nobody is missing.
func (s *Service) SendSecondReminder() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.todayLocked()
	s.ensureDayLocked(day)

	target, created, err := s.resolver.ResolveToday(day, s.templateIntroLocked())
	if err != nil {
		return err
	}
	if created {
		log.Printf("Created standup thread for %s", day)
	}

	missing := s.missingMembersLocked()
	if len(missing) == 0 {
		return nil
	}

	msg := fmt.Sprintf(secondFormat, s.settings.DeadlineTime, joinMentions(missing))
	if err := s.transport.SendMessage(target.ID, msg); err != nil {
		return fmt.Errorf("error sending second reminder: %w", err)
	}
	log.Printf("Sent second reminder to %d users", len(missing))
	return nil
}

// Precreate makes sure today's thread exists ahead of the prompt. A no-op
// in channel mode and on weekends when weekdays_only is set.
func (s *Service) Precreate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolver.Mode() != ModeThread {
		return nil
	}
	now := s.now().In(s.loc)
	if s.settings.WeekdaysOnly && isWeekend(now) {
		return nil
	}

	day := DayLabel(now)
	_, created, err := s.resolver.ResolveToday(day, s.templateIntroLocked())
	if err != nil {
		return err
	}
	if created {
		log.Printf("Pre-created standup thread for %s", day)
	}
	return nil
}

// ResetDay atomically starts a fresh tracking day.
func (s *Service) ResetDay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Reset(s.todayLocked())
	log.Println("Reset daily tracking of standup responses")
}

// HandleMessage records a standup update observed on the gateway. Channel
// mode records any message in the standup channel; thread mode records
// messages in today's standup thread and acknowledges them with a
// reaction. Messages from bots must be filtered out by the caller.
func (s *Service) HandleMessage(m IncomingMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.todayLocked()
	switch s.resolver.Mode() {
	case ModeChannel:
		if m.ChannelID != s.resolver.ChannelID() {
			return
		}
	case ModeThread:
		if m.ParentID != s.resolver.ChannelID() {
			return
		}
		if !strings.Contains(m.ThreadName, day) {
			return
		}
		// Traffic in today's thread pins the cache, which re-seeds it
		// for free after a restart.
		s.resolver.Adopt(day, &Target{ID: m.ChannelID, Name: m.ThreadName})
	}

	s.ensureDayLocked(day)
	s.tracker.Record(m.AuthorID, m.CreatedAt, m.Content)
	log.Printf("Recorded standup update from %s", m.AuthorName)

	if s.resolver.Mode() == ModeThread {
		if err := s.transport.AddReaction(m.ChannelID, m.MessageID, "✅"); err != nil {
			log.Printf("Error adding reaction: %v", err)
		}
	}
}

// ResyncTarget drops the cached target and resolves today's from scratch.
func (s *Service) ResyncTarget() (*Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolver.Invalidate()
	day := s.todayLocked()
	target, created, err := s.resolver.ResolveToday(day, s.templateIntroLocked())
	if err != nil {
		return nil, err
	}
	if created {
		log.Printf("Created standup thread for %s", day)
	}
	return target, nil
}

// AddUser puts a user on the roster. Returns false when they already were;
// the roster is persisted before success is reported.
func (s *Service) AddUser(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.roster.Add(id) {
		return false, nil
	}
	if err := s.store.SaveRoster(s.roster.IDs()); err != nil {
		return true, fmt.Errorf("error saving users: %w", err)
	}
	return true, nil
}

// RemoveUser takes a user off the roster. Returns false when they were not
// on it.
func (s *Service) RemoveUser(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.roster.Remove(id) {
		return false, nil
	}
	if err := s.store.SaveRoster(s.roster.IDs()); err != nil {
		return true, fmt.Errorf("error saving users: %w", err)
	}
	return true, nil
}

// Users returns the roster in order.
func (s *Service) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.IDs()
}

// SetReminderTime updates the prompt time and reschedules.
func (s *Service) SetReminderTime(value string) error {
	if _, _, err := ParseClock(value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.ReminderTime = value
	return s.saveAndRescheduleLocked()
}

// SetSecondReminderTime updates the optional second reminder. An empty
// value disables it.
func (s *Service) SetSecondReminderTime(value string) error {
	if value != "" {
		if _, _, err := ParseClock(value); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.SecondReminderTime = value
	return s.saveAndRescheduleLocked()
}

// SetDeadlineTime updates the followup time and reschedules.
func (s *Service) SetDeadlineTime(value string) error {
	if _, _, err := ParseClock(value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.DeadlineTime = value
	return s.saveAndRescheduleLocked()
}

// SetTimezone updates the scheduling timezone and reschedules.
func (s *Service) SetTimezone(zone string) error {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q", zone)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Timezone = zone
	s.loc = loc
	return s.saveAndRescheduleLocked()
}

// SetStandupFormat updates the template users are asked to follow.
func (s *Service) SetStandupFormat(format string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.StandupFormat = format
	if err := s.store.SaveSettings(s.settings); err != nil {
		return fmt.Errorf("error saving settings: %w", err)
	}
	return nil
}

// Settings returns a snapshot of the current settings.
func (s *Service) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Today returns the current day label in the configured timezone.
func (s *Service) Today() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.todayLocked()
}

// TriggerStatus describes one scheduled trigger for diagnostics.
type TriggerStatus struct {
	Name string
	Spec string
	Next time.Time
}

// Status is a diagnostic snapshot of the whole engine.
type Status struct {
	Settings  Settings
	Mode      TargetMode
	ChannelID string
	Day       string
	Roster    []string
	Responses map[string]Response
	Target    *Target
	Triggers  []TriggerStatus
	Now       time.Time
}

// Status snapshots the engine for the diagnostic command.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.todayLocked()
	s.ensureDayLocked(day)

	st := Status{
		Settings:  s.settings,
		Mode:      s.resolver.Mode(),
		ChannelID: s.resolver.ChannelID(),
		Day:       day,
		Roster:    s.roster.IDs(),
		Responses: s.tracker.Responses(),
		Target:    s.resolver.Cached(day),
		Now:       s.now().In(s.loc),
	}
	for _, name := range []string{TriggerPrompt, TriggerSecondReminder, TriggerFollowup, TriggerDailyReset, TriggerPrecreate} {
		spec, ok := s.triggers[name]
		if !ok {
			continue
		}
		ts := TriggerStatus{Name: name, Spec: spec}
		if next, ok := s.schedule.NextFire(name); ok {
			ts.Next = next
		}
		st.Triggers = append(st.Triggers, ts)
	}
	return st
}

func (s *Service) saveAndRescheduleLocked() error {
	if err := s.store.SaveSettings(s.settings); err != nil {
		return fmt.Errorf("error saving settings: %w", err)
	}
	return s.applyScheduleLocked()
}

func (s *Service) todayLocked() string {
	return DayLabel(s.now().In(s.loc))
}

// ensureDayLocked heals the tracker after missed midnight triggers: any
// operation that observes a stale tracker day starts the new day first.
func (s *Service) ensureDayLocked(day string) {
	if s.tracker.Day() != day {
		s.tracker.Reset(day)
	}
}

func (s *Service) templateIntroLocked() string {
	return fmt.Sprintf("%s\n\n%s\n\n*Reply in this thread with your update!*", templatePrefix, s.settings.StandupFormat)
}

func (s *Service) promptMessageLocked(day, mentions string) string {
	header := fmt.Sprintf("📝 **Daily Standup for %s**\n\n🔔 **Good morning %s!** Please fill in your standups before %s!",
		day, mentions, s.settings.DeadlineTime)
	if s.resolver.Mode() == ModeChannel {
		return header + fmt.Sprintf("\n\n%s\n\n%s\n\n*Reply with your update starting with \"Standup:\"*",
			templatePrefix, s.settings.StandupFormat)
	}
	return header
}

// mentionRosterLocked resolves every roster member to a mention,
// best-effort. Failed lookups are logged and skipped; an empty result
// falls back to addressing everyone.
func (s *Service) mentionRosterLocked() string {
	var mentions []string
	for _, id := range s.roster.IDs() {
		member, err := s.transport.Member(id)
		if err != nil {
			log.Printf("Error fetching member %s: %v", id, err)
			continue
		}
		mentions = append(mentions, member.Mention())
	}
	if len(mentions) == 0 {
		return "everyone"
	}
	return strings.Join(mentions, " ")
}

// missingMembersLocked resolves the roster entries without a response
// today. Entries that cannot be resolved are logged and dropped from the
// result.
func (s *Service) missingMembersLocked() []*Member {
	var missing []*Member
	for _, id := range s.tracker.Missing(s.roster.IDs()) {
		member, err := s.transport.Member(id)
		if err != nil {
			log.Printf("Error fetching member %s: %v", id, err)
			continue
		}
		missing = append(missing, member)
	}
	return missing
}

func joinMentions(members []*Member) string {
	mentions := make([]string, len(members))
	for i, m := range members {
		mentions[i] = m.Mention()
	}
	return strings.Join(mentions, " ")
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
