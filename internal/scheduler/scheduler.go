// Package scheduler wraps robfig/cron with atomic trigger replacement:
// reconfiguring swaps in a whole new cron instance, so triggers from the
// previous configuration never fire again.
package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	mu        sync.Mutex
	cron      *cron.Cron
	schedules map[string]cron.Schedule
	loc       *time.Location
}

func New() *Scheduler {
	return &Scheduler{}
}

// Apply replaces the running trigger set. Every spec is parsed up front;
// any parse failure rejects the whole batch and the previous triggers keep
// running. On success the new cron instance is started and the old one is
// told to stop. In-flight jobs from the old instance are not waited for
// here, they finish on their own and serialize against new jobs through
// the caller's locking.
func (s *Scheduler) Apply(loc *time.Location, triggers map[string]string, run func(trigger string)) error {
	schedules := make(map[string]cron.Schedule, len(triggers))
	for name, spec := range triggers {
		schedule, err := cron.ParseStandard(spec)
		if err != nil {
			return fmt.Errorf("invalid cron spec %q for trigger %s: %w", spec, name, err)
		}
		schedules[name] = schedule
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.PrintfLogger(log.Default()))),
	)
	for name, spec := range triggers {
		name := name
		if _, err := c.AddFunc(spec, func() { run(name) }); err != nil {
			return fmt.Errorf("error registering trigger %s: %w", name, err)
		}
	}

	s.mu.Lock()
	old := s.cron
	s.cron = c
	s.schedules = schedules
	s.loc = loc
	s.mu.Unlock()

	c.Start()
	if old != nil {
		old.Stop()
	}
	return nil
}

// NextFire reports when the named trigger fires next. Computed from the
// parsed schedule rather than the running entries, so it is valid
// immediately after Apply.
func (s *Scheduler) NextFire(trigger string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule, ok := s.schedules[trigger]
	if !ok {
		return time.Time{}, false
	}
	return schedule.Next(time.Now().In(s.loc)), true
}

// Stop shuts the scheduler down and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.schedules = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
