package standup

// Roster is the ordered set of user IDs expected to post a standup.
// Ordering is insertion order and is preserved across persistence, so
// missing-user lists always come out in a stable order.
type Roster struct {
	ids []string
}

// NewRoster builds a roster from persisted IDs, dropping duplicates while
// keeping the first occurrence of each.
func NewRoster(ids []string) *Roster {
	r := &Roster{}
	for _, id := range ids {
		r.Add(id)
	}
	return r
}

// Add appends a user. Returns false when the user is already present.
func (r *Roster) Add(id string) bool {
	if r.Contains(id) {
		return false
	}
	r.ids = append(r.ids, id)
	return true
}

// Remove deletes a user. Returns false when the user was not present.
func (r *Roster) Remove(id string) bool {
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports roster membership.
func (r *Roster) Contains(id string) bool {
	for _, existing := range r.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// IDs returns a copy of the roster in order.
func (r *Roster) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the roster size.
func (r *Roster) Len() int {
	return len(r.ids)
}
