// Package concat combines values from multiple streams into tuples keyed
// by an index extracted from each value. Producers on any goroutine put
// values into their slot; once an entry satisfies the completion policy
// the assembled tuple is pushed to an output queue, and the eviction
// policy decides when the entry leaves the store.
//
// Heterogeneous tuples are expressed as fixed-arity structs: Concat2,
// Concat3 and Concat4 front a shared engine with typed Put and Get
// operations. Policies are plain callables configured through a builder.
package concat

import "time"

// Entry is the bookkeeping view of one keyed entry handed to policies.
// Counts holds the number of puts observed per slot; policies must treat
// it as read-only.
type Entry struct {
	CreatedAt time.Time
	Counts    []uint16
}

// Predicate decides a policy question about an entry.
type Predicate func(Entry) bool

// AllPresent is the default completion policy: every slot has been put at
// least once.
func AllPresent(e Entry) bool {
	for _, c := range e.Counts {
		if c == 0 {
			return false
		}
	}
	return true
}

// Occurrences returns a completion policy demanding a minimum number of
// puts per slot. The required slice is indexed like the tuple slots;
// missing positions default to one.
func Occurrences(required ...uint16) Predicate {
	return func(e Entry) bool {
		for i, c := range e.Counts {
			want := uint16(1)
			if i < len(required) {
				want = required[i]
			}
			if c < want {
				return false
			}
		}
		return true
	}
}

// OlderThan returns an eviction policy that drops entries created more
// than d ago. Combine with a completion policy when stale partial entries
// must not accumulate.
func OlderThan(d time.Duration) Predicate {
	return func(e Entry) bool {
		return time.Since(e.CreatedAt) > d
	}
}

// Never is an eviction policy that keeps entries in the store.
func Never(Entry) bool {
	return false
}

// Any combines predicates; the result fires when any of them does.
func Any(preds ...Predicate) Predicate {
	return func(e Entry) bool {
		for _, p := range preds {
			if p(e) {
				return true
			}
		}
		return false
	}
}
