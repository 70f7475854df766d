package quota

import "time"

// Resolve picks the single effective quota for the given day out of a set of
// possibly overlapping quotas. Returns nil when no quota covers the day.
//
// Tie-break between multiple covering quotas, in order: a quota starting
// exactly on the day wins; otherwise the most recently started one; otherwise
// the one with the greatest external-source id.
func Resolve(quotas []*Quota, day time.Time) *Quota {
	var matches []*Quota
	for _, q := range quotas {
		if q.Covers(day) {
			matches = append(matches, q)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	if len(matches) == 1 {
		return matches[0]
	}

	var startingToday []*Quota
	for _, q := range matches {
		if q.DateFrom.Equal(day) {
			startingToday = append(startingToday, q)
		}
	}
	if len(startingToday) > 0 {
		matches = startingToday
	}

	winner := matches[0]
	for _, q := range matches[1:] {
		if q.DateFrom.After(winner.DateFrom) {
			winner = q
			continue
		}
		if q.DateFrom.Equal(winner.DateFrom) && q.ExternalID > winner.ExternalID {
			winner = q
		}
	}
	return winner
}
