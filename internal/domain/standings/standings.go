// Package standings computes the championship table.
//
// The table is a pure fold over a status snapshot, the event ratings, and a
// college lookup. It is never stored; callers recompute it on demand, which
// makes it safe to run concurrently with any mutation.
package standings

import (
	"sort"

	"github.com/okian/mela/internal/domain/model"
	"github.com/okian/mela/internal/domain/scoring"
)

// CollegeLookup resolves a registration number to its college name.
// An empty result means the college cannot be resolved and the entry is
// skipped rather than misattributed.
type CollegeLookup func(regNo string) string

// Calculate folds every ended, positioned status entry into per-college
// totals. Colleges are ordered by descending total; ties keep the order in
// which each college first earned points (sorted registration order makes
// that deterministic).
func Calculate(doc model.StatusDoc, ratings map[string]int, collegeOf CollegeLookup) []model.CollegeStanding {
	regNos := make([]string, 0, len(doc))
	for regNo := range doc {
		regNos = append(regNos, regNo)
	}
	sort.Strings(regNos)

	totals := make(map[string]*model.CollegeStanding)
	order := make([]string, 0)

	for _, regNo := range regNos {
		st := doc[regNo]
		if st == nil || !st.EventEnded || st.Position == nil {
			continue
		}

		college := collegeOf(regNo)
		if college == "" {
			continue
		}

		rating := scoring.DefaultRating
		if r, ok := ratings[st.Event]; ok {
			rating = scoring.ClampRating(r)
		}
		points := scoring.Points(rating, *st.Position)

		standing, ok := totals[college]
		if !ok {
			standing = &model.CollegeStanding{College: college}
			totals[college] = standing
			order = append(order, college)
		}
		standing.TotalPoints += points
		standing.Wins = append(standing.Wins, model.Win{
			Event:    st.Event,
			Position: *st.Position,
			Rating:   rating,
			Points:   points,
		})
	}

	out := make([]model.CollegeStanding, 0, len(order))
	for _, college := range order {
		out = append(out, *totals[college])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalPoints > out[j].TotalPoints
	})
	return out
}
