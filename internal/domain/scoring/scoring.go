// Package scoring maps event star ratings and finishing positions to
// championship points, and carries the per-event team size requirements.
package scoring

import (
	"strings"

	"github.com/okian/mela/internal/domain/model"
)

// Rating bounds. Events without a stored rating score as DefaultRating.
const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 3
)

// pointsTable maps star rating to points for 1st/2nd/3rd place.
var pointsTable = map[int][3]int{
	5: {80, 75, 70},
	4: {75, 70, 65},
	3: {70, 65, 60},
	2: {65, 60, 55},
	1: {60, 55, 50},
}

// ClampRating folds out-of-range ratings to the default. The stores validate
// on write, so this only matters for documents edited by hand.
func ClampRating(rating int) int {
	if rating < MinRating || rating > MaxRating {
		return DefaultRating
	}
	return rating
}

// ValidRating reports whether rating may be stored.
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// Points returns the points awarded for finishing at position in an event
// with the given star rating. Positions outside 1st..3rd award nothing.
func Points(rating int, position model.Position) int {
	if !position.Valid() {
		return 0
	}
	return pointsTable[ClampRating(rating)][position-1]
}

// TeamRequirement bounds the roster size for one event.
type TeamRequirement struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// TeamEvent reports whether the event admits more than one participant.
func (r TeamRequirement) TeamEvent() bool {
	return r.Max > 1
}

// defaultRequirement is returned for events without an explicit entry so
// registration forms always have bounds to render.
var defaultRequirement = TeamRequirement{Min: 1, Max: 20}

// teamRequirements is the static per-event roster size table.
var teamRequirements = map[string]TeamRequirement{
	// 5 star events
	"Fashion Walk":   {Min: 10, Max: 12},
	"Football - Men": {Min: 7, Max: 12},

	// 4 star events
	"Battle of Bands":   {Min: 8, Max: 10},
	"Group Dance":       {Min: 8, Max: 10},
	"Throw Ball - M&W":  {Min: 9, Max: 12},
	"Kabaddi - M&W":     {Min: 7, Max: 12},
	"Tug of War - M&W":  {Min: 8, Max: 10},
	"Volley Ball - Men": {Min: 6, Max: 9},
	"Group Singing":     {Min: 6, Max: 8},
	"Mime":              {Min: 6, Max: 8},

	// 2 star events
	"IPL Auction":    {Min: 3, Max: 3},
	"Synergy Squad":  {Min: 3, Max: 3},
	"Decrypt-X":      {Min: 2, Max: 2},
	"Treasure Hunt":  {Min: 3, Max: 3},
	"Murder Mystery": {Min: 4, Max: 4},
	"Film Quiz":      {Min: 3, Max: 3},
	"DANCE BATTLE":   {Min: 1, Max: 1},
	"Duet Dance":     {Min: 2, Max: 2},
	"Cosplay":        {Min: 1, Max: 1},
	"Reel Making":    {Min: 2, Max: 2},
	"BGMI":           {Min: 4, Max: 4},
	"COD Mobile":     {Min: 4, Max: 4},

	// 1 star events
	"Solo Singing":        {Min: 1, Max: 1},
	"Solo Instrumental":   {Min: 1, Max: 1},
	"Solo Dance":          {Min: 1, Max: 1},
	"Mono Act":            {Min: 1, Max: 1},
	"Mehendi":             {Min: 1, Max: 1},
	"Face Painting":       {Min: 1, Max: 1},
	"Pencil Sketching":    {Min: 1, Max: 1},
	"Photography":         {Min: 1, Max: 1},
	"SHORT FILM REVIEW":   {Min: 1, Max: 1},
	"JAM - JUST A MINUTE": {Min: 1, Max: 1},
	"Carrom -  M&W":       {Min: 1, Max: 1},
	"Chess - M&W":         {Min: 1, Max: 1},
	"FC26":                {Min: 1, Max: 1},
}

// Requirements returns the team size bounds for an event. Lookup is exact
// first, then case-insensitive; unknown events get the permissive default.
func Requirements(event string) TeamRequirement {
	event = strings.TrimSpace(event)
	if req, ok := teamRequirements[event]; ok {
		return req
	}
	lower := strings.ToLower(event)
	for name, req := range teamRequirements {
		if strings.ToLower(name) == lower {
			return req
		}
	}
	return defaultRequirement
}
