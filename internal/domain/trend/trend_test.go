package trend_test

import (
	"testing"
	"time"

	trend "github.com/digilab/metalab/internal/domain/trend"
	. "github.com/smartystreets/goconvey/convey"
)

func day(offset int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

// window builds n tournament dates one day apart.
func window(n int) []time.Time {
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = day(i)
	}
	return dates
}

func TestDetect(t *testing.T) {
	Convey("Given fewer than ten tournaments", t, func() {
		dates := window(9)
		rows := []trend.Row{{EventDate: day(0), ArchetypeName: "Red Aggro"}}

		got := trend.Detect(dates, rows)

		Convey("Then the detector reports insufficient data with the count", func() {
			So(got.Status, ShouldEqual, trend.StatusInsufficientData)
			So(got.TournamentCount, ShouldEqual, 9)
		})
	})

	Convey("Given ten tournaments but rows only on the newer half", t, func() {
		dates := window(10)
		rows := []trend.Row{
			{EventDate: day(8), ArchetypeName: "Red Aggro"},
			{EventDate: day(9), ArchetypeName: "Red Aggro"},
		}

		got := trend.Detect(dates, rows)

		So(got.Status, ShouldEqual, trend.StatusInsufficientData)
	})

	Convey("Given an archetype gaining share across the median", t, func() {
		dates := window(10) // median between day 4 and 5
		rows := []trend.Row{
			// Older half: Red 75%, Blue 25%.
			{EventDate: day(0), ArchetypeName: "Red Aggro", DisplayCardID: "OP01-001"},
			{EventDate: day(1), ArchetypeName: "Red Aggro", DisplayCardID: "OP01-001"},
			{EventDate: day(2), ArchetypeName: "Red Aggro", DisplayCardID: "OP01-001"},
			{EventDate: day(3), ArchetypeName: "Blue Control", DisplayCardID: "OP01-077"},
			// Newer half: Red 25%, Blue 75%.
			{EventDate: day(6), ArchetypeName: "Blue Control", DisplayCardID: "OP01-077"},
			{EventDate: day(7), ArchetypeName: "Blue Control", DisplayCardID: "OP01-077"},
			{EventDate: day(8), ArchetypeName: "Blue Control", DisplayCardID: "OP01-077"},
			{EventDate: day(9), ArchetypeName: "Red Aggro", DisplayCardID: "OP01-001"},
		}

		got := trend.Detect(dates, rows)

		Convey("Then the gainer is reported with its delta in points", func() {
			So(got.Status, ShouldEqual, trend.StatusTrending)
			So(got.Archetype, ShouldEqual, "Blue Control")
			So(got.DisplayCardID, ShouldEqual, "OP01-077")
			So(got.Delta, ShouldEqual, 50.0)
		})
	})

	Convey("Given an archetype absent from the older half", t, func() {
		dates := window(10)
		rows := []trend.Row{
			{EventDate: day(0), ArchetypeName: "Red Aggro"},
			{EventDate: day(1), ArchetypeName: "Red Aggro"},
			{EventDate: day(6), ArchetypeName: "Red Aggro"},
			{EventDate: day(7), ArchetypeName: "Purple Combo"},
		}

		got := trend.Detect(dates, rows)

		Convey("Then its older share defaults to zero", func() {
			So(got.Status, ShouldEqual, trend.StatusTrending)
			So(got.Archetype, ShouldEqual, "Purple Combo")
			So(got.Delta, ShouldEqual, 50.0)
		})
	})

	Convey("Given a perfectly stable meta", t, func() {
		dates := window(10)
		rows := []trend.Row{
			{EventDate: day(0), ArchetypeName: "Red Aggro"},
			{EventDate: day(1), ArchetypeName: "Blue Control"},
			{EventDate: day(6), ArchetypeName: "Red Aggro"},
			{EventDate: day(7), ArchetypeName: "Blue Control"},
		}

		got := trend.Detect(dates, rows)

		Convey("Then no trending entity is reported", func() {
			So(got.Status, ShouldEqual, trend.StatusStable)
			So(got.Archetype, ShouldBeEmpty)
		})
	})

	Convey("Given UNKNOWN rows dominating one half", t, func() {
		dates := window(10)
		rows := []trend.Row{
			{EventDate: day(0), ArchetypeName: "Red Aggro"},
			{EventDate: day(1), ArchetypeName: "UNKNOWN"},
			{EventDate: day(2), ArchetypeName: "UNKNOWN"},
			{EventDate: day(6), ArchetypeName: "Red Aggro"},
			{EventDate: day(7), ArchetypeName: "Blue Control"},
		}

		got := trend.Detect(dates, rows)

		Convey("Then UNKNOWN is excluded from both halves", func() {
			So(got.Status, ShouldEqual, trend.StatusTrending)
			So(got.Archetype, ShouldEqual, "Blue Control")
			So(got.Delta, ShouldEqual, 50.0)
		})
	})
}
