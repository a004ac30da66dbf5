package roster_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/mela/internal/domain/model"
	"github.com/okian/mela/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given a list of raw names", t, func() {
		Convey("When it contains blanks, whitespace, and case duplicates", func() {
			out := roster.Normalize([]string{"Alice", "alice", "Bob", "", "  ", " bob ", "Carol"})

			Convey("Then blanks and duplicates are dropped, first casing wins", func() {
				So(out, ShouldResemble, []string{"Alice", "Bob", "Carol"})
			})
		})

		Convey("When it is empty", func() {
			So(roster.Normalize(nil), ShouldBeEmpty)
			So(roster.Normalize([]string{"", " "}), ShouldBeEmpty)
		})

		Convey("When order matters", func() {
			out := roster.Normalize([]string{"zed", "Ada", "ZED"})

			Convey("Then first-seen order is preserved", func() {
				So(out, ShouldResemble, []string{"zed", "Ada"})
			})
		})
	})
}

func TestExtractSource(t *testing.T) {
	Convey("Given a registration with roster columns", t, func() {
		reg := model.Registration{
			RegNo:   "R-100",
			Leader:  "Lena",
			Members: []string{"Mark", "lena", "", "Nina"},
			Extra:   []string{"Omar", "nina"},
		}

		Convey("When the source roster is extracted", func() {
			out := roster.ExtractSource(reg)

			Convey("Then leader comes first and duplicates collapse", func() {
				So(out, ShouldResemble, []string{"Lena", "Mark", "Nina", "Omar"})
			})
		})

		Convey("When every column is blank", func() {
			So(roster.ExtractSource(model.Registration{}), ShouldBeEmpty)
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given a registration and a manual override", t, func() {
		reg := model.Registration{Leader: "Source Leader", Members: []string{"Source Member"}}

		Convey("When the override has non-blank entries", func() {
			out := roster.Resolve(reg, []string{"Alice", "alice", "Bob", ""})

			Convey("Then the override wins regardless of source content", func() {
				So(out, ShouldResemble, []string{"Alice", "Bob"})
			})
		})

		Convey("When the override is empty or all-blank", func() {
			So(roster.Resolve(reg, nil), ShouldResemble, []string{"Source Leader", "Source Member"})
			So(roster.Resolve(reg, []string{"", "  "}), ShouldResemble, []string{"Source Leader", "Source Member"})
		})
	})
}

func TestValidateOverride(t *testing.T) {
	Convey("Given proposed override rosters", t, func() {
		Convey("When the roster is within bounds", func() {
			out, err := roster.ValidateOverride([]string{" Alice ", "Bob"})

			So(err, ShouldBeNil)
			So(out, ShouldResemble, []string{"Alice", "Bob"})
		})

		Convey("When the roster is empty after normalization", func() {
			_, err := roster.ValidateOverride([]string{"", "  "})

			So(errors.Is(err, roster.ErrInvalidRosterSize), ShouldBeTrue)
		})

		Convey("When the roster exceeds the maximum", func() {
			names := make([]string, roster.MaxSize+1)
			for i := range names {
				names[i] = fmt.Sprintf("Member %d", i)
			}
			_, err := roster.ValidateOverride(names)

			So(errors.Is(err, roster.ErrInvalidRosterSize), ShouldBeTrue)
		})
	})
}
