package standup

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

const (
	threadHistoryLimit  = 100
	channelHistoryLimit = 200
)

// DailyRecap builds the recap for one day. The day's target is looked up
// but never created: a day with no thread is reported, not fabricated.
func (s *Service) DailyRecap(day string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := ParseDayLabel(day, s.loc); err != nil {
		return "", err
	}

	messages, found, err := s.dayMessagesLocked(day)
	if err != nil {
		return "", err
	}
	if !found {
		return fmt.Sprintf("Could not find a standup thread for %s.", day), nil
	}
	if len(messages) == 0 {
		return fmt.Sprintf("No standup updates were found for %s.", day), nil
	}

	var recap strings.Builder
	recap.WriteString(fmt.Sprintf("# Standup Recap for %s\n\n", day))
	for _, m := range messages {
		recap.WriteString(fmt.Sprintf("## %s\n", m.Author))
		recap.WriteString(m.Content)
		recap.WriteString("\n\n---\n\n")
	}

	log.Printf("Generated daily recap with %d updates", len(messages))
	return recap.String(), nil
}

// WeeklyRecap builds the recap for the current week, Monday through today.
// Every day in the range gets a section even when nothing was posted, so
// quiet days are visible instead of silently skipped.
func (s *Service) WeeklyRecap() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().In(s.loc)
	monday := today.AddDate(0, 0, -int((today.Weekday()+6)%7))

	var body strings.Builder
	total := 0
	for d := monday; !d.After(today); d = d.AddDate(0, 0, 1) {
		day := DayLabel(d)
		messages, found, err := s.dayMessagesLocked(day)
		if err != nil {
			return "", err
		}
		if !found {
			body.WriteString(fmt.Sprintf("## %s\nNo standups found for this day.\n\n", day))
			continue
		}
		if len(messages) == 0 {
			body.WriteString(fmt.Sprintf("## %s\nNo standup updates were submitted.\n\n", day))
			continue
		}

		body.WriteString(fmt.Sprintf("## %s (%d updates)\n\n", day, len(messages)))
		total += len(messages)
		for _, m := range messages {
			body.WriteString(fmt.Sprintf("### %s\n", m.Author))
			body.WriteString(m.Content)
			body.WriteString("\n\n")
		}
		body.WriteString("---\n\n")
	}

	log.Printf("Generated weekly recap with %d updates", total)
	return fmt.Sprintf("# Weekly Standup Recap (%d total updates)\n\n", total) + body.String(), nil
}

// dayMessagesLocked fetches the standup updates for a day, oldest first.
// found is false when the day has no target at all. The bot's own messages
// and the posted template are excluded; with roster-only recaps, so is
// everyone not on the roster.
func (s *Service) dayMessagesLocked(day string) (messages []Message, found bool, err error) {
	target, err := s.resolver.Lookup(day)
	if err != nil {
		return nil, false, err
	}
	if target == nil {
		return nil, false, nil
	}

	q := HistoryQuery{Limit: threadHistoryLimit}
	if s.resolver.Mode() == ModeChannel {
		start, err := ParseDayLabel(day, s.loc)
		if err != nil {
			return nil, false, err
		}
		q = HistoryQuery{
			Limit:  channelHistoryLimit,
			After:  start,
			Before: start.AddDate(0, 0, 1),
		}
	}

	history, err := s.transport.Messages(target.ID, q)
	if err != nil {
		return nil, true, fmt.Errorf("error fetching standup messages: %w", err)
	}

	var updates []Message
	for _, m := range history {
		if m.FromSelf || strings.HasPrefix(m.Content, templatePrefix) {
			continue
		}
		if s.rosterOnly && !s.roster.Contains(m.AuthorID) {
			continue
		}
		updates = append(updates, m)
	}
	sort.SliceStable(updates, func(i, j int) bool {
		return updates[i].CreatedAt.Before(updates[j].CreatedAt)
	})
	return updates, true, nil
}
