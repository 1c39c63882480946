package merge

import (
	"sort"

	"mxshs/livescores/src/domain"
)

// compositeKey identifies an update for dedupe against stored state. Raw text
// is not part of it.
type compositeKey struct {
	minute    int
	timed     bool
	homeScore string
	awayScore string
}

func keyOf(u domain.UpdateRecord) compositeKey {
	minute, timed := u.MinuteValue()
	return compositeKey{
		minute:    minute,
		timed:     timed,
		homeScore: u.HomeScore,
		awayScore: u.AwayScore,
	}
}

// MergePersisted appends the run's updates into existing, skipping any update
// whose (minute, home score, away score) is already stored under the same
// fixture before the merge. Run updates are not checked against each other.
// It returns how many updates were added.
func MergePersisted(existing, run map[domain.MatchKey][]domain.UpdateRecord) int {
	keys := make([]domain.MatchKey, 0, len(run))
	for key := range run {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	added := 0
	for _, key := range keys {
		stored := existing[key]
		if stored == nil {
			stored = []domain.UpdateRecord{}
		}

		seen := make(map[compositeKey]struct{}, len(stored))
		for _, u := range stored {
			seen[keyOf(u)] = struct{}{}
		}

		for _, u := range run[key] {
			if _, dup := seen[keyOf(u)]; dup {
				continue
			}
			stored = append(stored, u)
			added++
		}

		existing[key] = stored
	}

	return added
}
