package standings_test

import (
	"testing"

	"github.com/okian/mela/internal/domain/model"
	"github.com/okian/mela/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

func pos(p model.Position) *model.Position { return &p }

func TestCalculate(t *testing.T) {
	Convey("Given a status snapshot with finished events", t, func() {
		doc := model.StatusDoc{
			"A1": {Event: "Chess - M&W", EventEnded: true, Position: pos(model.First)},
			"B1": {Event: "BGMI", EventEnded: true, Position: pos(model.First)},
			"C1": {Event: "Mime", EventEnded: true, Position: pos(model.Second)},
			"D1": {Event: "Mime", Reported: true},   // not ended, ignored
			"E1": {Event: "Mime", EventEnded: true}, // ended without position, ignored
		}
		ratings := map[string]int{
			"Chess - M&W": 4,
			"BGMI":        2,
		}
		colleges := map[string]string{
			"A1": "St. Aloysius",
			"B1": "St. Aloysius",
			"C1": "Crest Valley",
			"D1": "Crest Valley",
			"E1": "Crest Valley",
		}
		lookup := func(regNo string) string { return colleges[regNo] }

		Convey("When the table is calculated", func() {
			out := standings.Calculate(doc, ratings, lookup)

			Convey("Then rated wins accumulate per college", func() {
				So(out, ShouldHaveLength, 2)
				So(out[0].College, ShouldEqual, "St. Aloysius")
				So(out[0].TotalPoints, ShouldEqual, 140) // 4-star 1st (75) + 2-star 1st (65)
				So(out[0].Wins, ShouldHaveLength, 2)
			})

			Convey("Then unrated events use the default rating", func() {
				So(out[1].College, ShouldEqual, "Crest Valley")
				So(out[1].TotalPoints, ShouldEqual, 65) // 3-star 2nd
			})
		})

		Convey("When a winner's college cannot be resolved", func() {
			delete(colleges, "C1")
			out := standings.Calculate(doc, ratings, lookup)

			Convey("Then the entry is skipped, not misattributed", func() {
				So(out, ShouldHaveLength, 1)
				So(out[0].College, ShouldEqual, "St. Aloysius")
			})
		})

		Convey("When totals tie", func() {
			tied := model.StatusDoc{
				"A1": {Event: "Mime", EventEnded: true, Position: pos(model.First)},
				"B1": {Event: "Cosplay", EventEnded: true, Position: pos(model.First)},
			}
			out := standings.Calculate(tied, nil, lookup)

			Convey("Then first-appearance order breaks the tie", func() {
				So(out, ShouldHaveLength, 2)
				So(out[0].College, ShouldEqual, "St. Aloysius")
				So(out[1].College, ShouldEqual, "Crest Valley")
			})
		})

		Convey("When the snapshot is empty", func() {
			So(standings.Calculate(model.StatusDoc{}, nil, lookup), ShouldBeEmpty)
		})
	})
}
