package standup

import (
	"time"
)

// Response is one recorded standup update.
type Response struct {
	Timestamp time.Time
	Content   string
}

// Tracker holds who has responded on the current day. Exactly one day is
// live at a time; Reset replaces the whole mapping at the day boundary.
// The tracker itself is not synchronized, the Service serializes access.
type Tracker struct {
	day       string
	responses map[string]Response
}

// NewTracker returns an empty tracker for the given day label.
func NewTracker(day string) *Tracker {
	return &Tracker{
		day:       day,
		responses: make(map[string]Response),
	}
}

// Day returns the day label the tracker currently covers.
func (t *Tracker) Day() string {
	return t.day
}

// Record stores a response. A later update from the same user replaces the
// earlier one.
func (t *Tracker) Record(userID string, at time.Time, content string) {
	t.responses[userID] = Response{Timestamp: at, Content: content}
}

// HasResponded reports whether the user has posted an update today.
func (t *Tracker) HasResponded(userID string) bool {
	_, ok := t.responses[userID]
	return ok
}

// Response returns the recorded update for a user, if any.
func (t *Tracker) Response(userID string) (Response, bool) {
	r, ok := t.responses[userID]
	return r, ok
}

// Count returns the number of users who have responded today. Responses
// from users outside the roster are counted too.
func (t *Tracker) Count() int {
	return len(t.responses)
}

// Missing returns the roster entries with no response today, in roster
// order.
func (t *Tracker) Missing(roster []string) []string {
	var missing []string
	for _, id := range roster {
		if !t.HasResponded(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

// Responses returns a copy of the day's recorded updates.
func (t *Tracker) Responses() map[string]Response {
	out := make(map[string]Response, len(t.responses))
	for id, r := range t.responses {
		out[id] = r
	}
	return out
}

// Reset discards all recorded responses and starts the given day.
func (t *Tracker) Reset(day string) {
	t.day = day
	t.responses = make(map[string]Response)
}
