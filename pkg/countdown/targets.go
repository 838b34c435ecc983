package countdown

import "time"

// Default role names used by the dashboard slots.
const (
	RolePast     = "past"
	RoleUpcoming = "upcoming"
	RoleNext     = "next"
)

// Target is a named instant, keyed by cohort (e.g. "2027" for the exam
// sitting of that academic year).
type Target struct {
	Key string
	At  time.Time
}

// TargetSet is an ordered, immutable mapping from cohort key to instant.
// The zero value is an empty set.
type TargetSet struct {
	keys []string
	at   map[string]time.Time
}

// NewTargetSet builds a set in the given order. A repeated key keeps its first
// position and takes the last instant supplied for it. Entries with an empty
// key are skipped.
func NewTargetSet(targets ...Target) TargetSet {
	set := TargetSet{at: make(map[string]time.Time, len(targets))}
	for _, t := range targets {
		if t.Key == "" {
			continue
		}
		if _, seen := set.at[t.Key]; !seen {
			set.keys = append(set.keys, t.Key)
		}
		set.at[t.Key] = t.At
	}
	return set
}

// Lookup returns the instant for key.
func (s TargetSet) Lookup(key string) (time.Time, bool) {
	at, ok := s.at[key]
	return at, ok
}

// Keys returns the keys in insertion order.
func (s TargetSet) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Targets returns the entries in insertion order.
func (s TargetSet) Targets() []Target {
	out := make([]Target, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, Target{Key: k, At: s.at[k]})
	}
	return out
}

// Len returns the number of entries.
func (s TargetSet) Len() int {
	return len(s.keys)
}

// Milestone is a labelled instant placed inside the anchor interval.
type Milestone struct {
	Label string
	At    time.Time
}

// Roles maps the three countdown slots onto target keys.
type Roles struct {
	Past     string
	Upcoming string
	Next     string
}

// Anchors names the two target keys that bound the progress interval.
type Anchors struct {
	From string
	To   string
}

// Config is everything the engine needs besides a clock.
type Config struct {
	Targets    TargetSet
	Roles      Roles
	Anchors    Anchors
	Milestones []Milestone
}

func (c Config) clone() Config {
	out := c
	out.Milestones = make([]Milestone, len(c.Milestones))
	copy(out.Milestones, c.Milestones)
	return out
}
