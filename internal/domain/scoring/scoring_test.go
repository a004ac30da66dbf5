package scoring_test

import (
	"testing"

	"github.com/okian/mela/internal/domain/model"
	"github.com/okian/mela/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPoints(t *testing.T) {
	Convey("Given the points table", t, func() {
		Convey("When looking up every rating and position", func() {
			cases := []struct {
				rating   int
				position model.Position
				want     int
			}{
				{5, model.First, 80}, {5, model.Second, 75}, {5, model.Third, 70},
				{4, model.First, 75}, {4, model.Second, 70}, {4, model.Third, 65},
				{3, model.First, 70}, {3, model.Second, 65}, {3, model.Third, 60},
				{2, model.First, 65}, {2, model.Second, 60}, {2, model.Third, 55},
				{1, model.First, 60}, {1, model.Second, 55}, {1, model.Third, 50},
			}
			for _, c := range cases {
				So(scoring.Points(c.rating, c.position), ShouldEqual, c.want)
			}
		})

		Convey("When the rating is out of range", func() {
			Convey("Then it scores as the default rating", func() {
				So(scoring.Points(0, model.First), ShouldEqual, 70)
				So(scoring.Points(9, model.Second), ShouldEqual, 65)
			})
		})

		Convey("When the position is outside the podium", func() {
			So(scoring.Points(5, model.Position(0)), ShouldEqual, 0)
			So(scoring.Points(5, model.Position(4)), ShouldEqual, 0)
		})
	})
}

func TestRatings(t *testing.T) {
	Convey("Given rating validation", t, func() {
		So(scoring.ValidRating(1), ShouldBeTrue)
		So(scoring.ValidRating(5), ShouldBeTrue)
		So(scoring.ValidRating(0), ShouldBeFalse)
		So(scoring.ValidRating(6), ShouldBeFalse)

		So(scoring.ClampRating(7), ShouldEqual, scoring.DefaultRating)
		So(scoring.ClampRating(2), ShouldEqual, 2)
	})
}

func TestRequirements(t *testing.T) {
	Convey("Given the team requirements table", t, func() {
		Convey("When the event has an exact entry", func() {
			req := scoring.Requirements("BGMI")

			So(req.Min, ShouldEqual, 4)
			So(req.Max, ShouldEqual, 4)
			So(req.TeamEvent(), ShouldBeTrue)
		})

		Convey("When the event name differs only in case", func() {
			req := scoring.Requirements("fashion walk")

			So(req.Min, ShouldEqual, 10)
			So(req.Max, ShouldEqual, 12)
		})

		Convey("When the event is unknown", func() {
			req := scoring.Requirements("Underwater Basket Weaving")

			Convey("Then the permissive default applies", func() {
				So(req.Min, ShouldEqual, 1)
				So(req.Max, ShouldEqual, 20)
			})
		})

		Convey("When the event is a solo event", func() {
			So(scoring.Requirements("Chess - M&W").TeamEvent(), ShouldBeFalse)
		})
	})
}
