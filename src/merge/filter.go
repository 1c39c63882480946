package merge

import "mxshs/livescores/src/domain"

// Accept applies the monotonic-minute policy for one fixture. Updates without
// a minute are always accepted; timed updates must not go back in time.
func Accept(key domain.MatchKey, u domain.UpdateRecord, states map[domain.MatchKey]*domain.MatchState) bool {
	state, ok := states[key]
	if !ok {
		state = domain.NewMatchState()
		states[key] = state
	}

	minute, timed := u.MinuteValue()
	if timed && minute < state.LastMinuteSeen {
		return false
	}

	state.Accepted = append(state.Accepted, u)
	if timed {
		state.LastMinuteSeen = minute
	}

	return true
}

// Filter owns the per-fixture state of one run and keeps fixtures in the
// order they were first seen.
type Filter struct {
	states map[domain.MatchKey]*domain.MatchState
	order  []domain.MatchKey
}

func NewFilter() *Filter {
	return &Filter{states: make(map[domain.MatchKey]*domain.MatchState)}
}

func (f *Filter) Accept(key domain.MatchKey, u domain.UpdateRecord) bool {
	if _, ok := f.states[key]; !ok {
		f.order = append(f.order, key)
	}
	return Accept(key, u, f.states)
}

func (f *Filter) Keys() []domain.MatchKey {
	return append([]domain.MatchKey(nil), f.order...)
}

func (f *Filter) Updates(key domain.MatchKey) []domain.UpdateRecord {
	state, ok := f.states[key]
	if !ok {
		return nil
	}
	return append([]domain.UpdateRecord(nil), state.Accepted...)
}

// Snapshot copies every fixture's accepted updates.
func (f *Filter) Snapshot() map[domain.MatchKey][]domain.UpdateRecord {
	out := make(map[domain.MatchKey][]domain.UpdateRecord, len(f.states))
	for key, state := range f.states {
		out[key] = append([]domain.UpdateRecord(nil), state.Accepted...)
	}
	return out
}

func (f *Filter) Len() int {
	n := 0
	for _, state := range f.states {
		n += len(state.Accepted)
	}
	return n
}
