package rating_test

import (
	"testing"
	"time"

	rating "github.com/digilab/metalab/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func fixedNow(t time.Time) rating.Option {
	return rating.WithNow(func() time.Time { return t })
}

func TestCalculator_Rate(t *testing.T) {
	day := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	Convey("Given a head-to-head event with two ranked players", t, func() {
		entries := []rating.Entry{
			{TournamentID: 1, PlayerID: 10, Placement: 1, EventDate: day, PlayerCount: 4, Rounds: 3},
			{TournamentID: 1, PlayerID: 20, Placement: 2, EventDate: day, PlayerCount: 4, Rounds: 3},
		}
		calc := rating.New(fixedNow(day))

		Convey("When ratings are computed with no decay or round boost", func() {
			got := calc.Rate(entries)

			Convey("Then the winner gains and the loser loses", func() {
				So(got[10], ShouldBeGreaterThan, 1500)
				So(got[20], ShouldBeLessThan, 1500)
			})

			Convey("And the changes are symmetric at equal K", func() {
				So(got[10]-1500, ShouldEqual, 1500-got[20])
			})

			Convey("And the first pass moves the winner by K x (1 - expected)", func() {
				// Equal starting ratings give expected = 0.5, so the
				// first pass is exactly 48 * 0.5 = 24 points. Later
				// passes shrink as expectations separate; the total
				// must stay between one pass and five full passes.
				So(got[10], ShouldBeGreaterThanOrEqualTo, 1500+24)
				So(got[10], ShouldBeLessThan, 1500+5*24)
			})
		})

		Convey("When the same input is rated twice", func() {
			first := calc.Rate(entries)
			second := calc.Rate(entries)

			Convey("Then the outputs are identical", func() {
				So(second, ShouldResemble, first)
			})
		})
	})

	Convey("Given three events where player A always beats player B", t, func() {
		var entries []rating.Entry
		for i := 0; i < 3; i++ {
			d := day.AddDate(0, 0, -7*(2-i))
			entries = append(entries,
				rating.Entry{TournamentID: int64(i + 1), PlayerID: 1, Placement: 1, EventDate: d, PlayerCount: 4, Rounds: 3},
				rating.Entry{TournamentID: int64(i + 1), PlayerID: 2, Placement: 2, EventDate: d, PlayerCount: 4, Rounds: 3},
			)
		}
		calc := rating.New(fixedNow(day))

		Convey("When ratings converge after five passes", func() {
			got := calc.Rate(entries)

			Convey("Then A ends above 1500 and B below", func() {
				So(got[1], ShouldBeGreaterThan, 1500)
				So(got[2], ShouldBeLessThan, 1500)
			})
		})
	})

	Convey("Given players tied on placement", t, func() {
		entries := []rating.Entry{
			{TournamentID: 1, PlayerID: 1, Placement: 1, EventDate: day, PlayerCount: 4, Rounds: 3},
			{TournamentID: 1, PlayerID: 2, Placement: 1, EventDate: day, PlayerCount: 4, Rounds: 3},
		}
		calc := rating.New(fixedNow(day))

		Convey("When ratings are computed", func() {
			got := calc.Rate(entries)

			Convey("Then both sides score zero and both drop", func() {
				// Reciprocal ties score 0/0, a double penalty that
				// favors neither player. Intentionally preserved.
				So(got[1], ShouldBeLessThan, 1500)
				So(got[2], ShouldBeLessThan, 1500)
				So(got[1], ShouldEqual, got[2])
			})
		})
	})

	Convey("Given ineligible inputs", t, func() {
		calc := rating.New(fixedNow(day))

		Convey("When there are no entries at all", func() {
			So(calc.Rate(nil), ShouldBeEmpty)
		})

		Convey("When the event has fewer than four known players", func() {
			got := calc.Rate([]rating.Entry{
				{TournamentID: 1, PlayerID: 1, Placement: 1, EventDate: day, PlayerCount: 3, Rounds: 3},
				{TournamentID: 1, PlayerID: 2, Placement: 2, EventDate: day, PlayerCount: 3, Rounds: 3},
			})
			So(got, ShouldBeEmpty)
		})

		Convey("When only one participant in an event is ranked", func() {
			got := calc.Rate([]rating.Entry{
				{TournamentID: 1, PlayerID: 1, Placement: 1, EventDate: day, PlayerCount: 8, Rounds: 3},
				{TournamentID: 1, PlayerID: 2, Placement: 0, EventDate: day, PlayerCount: 8, Rounds: 3},
			})
			So(got, ShouldBeEmpty)
		})
	})

	Convey("Given an old event and a recent one with the same outcome", t, func() {
		old := []rating.Entry{
			{TournamentID: 1, PlayerID: 1, Placement: 1, EventDate: day.AddDate(0, -8, 0), PlayerCount: 4, Rounds: 3},
			{TournamentID: 1, PlayerID: 2, Placement: 2, EventDate: day.AddDate(0, -8, 0), PlayerCount: 4, Rounds: 3},
		}
		recent := []rating.Entry{
			{TournamentID: 1, PlayerID: 1, Placement: 1, EventDate: day, PlayerCount: 4, Rounds: 3},
			{TournamentID: 1, PlayerID: 2, Placement: 2, EventDate: day, PlayerCount: 4, Rounds: 3},
		}
		calc := rating.New(fixedNow(day))

		Convey("When both are rated independently", func() {
			oldGot := calc.Rate(old)
			recentGot := calc.Rate(recent)

			Convey("Then the decayed event moves ratings less", func() {
				So(oldGot[1]-1500, ShouldBeLessThan, recentGot[1]-1500)
			})
		})
	})

	Convey("Given the same event with more declared rounds", t, func() {
		base := []rating.Entry{
			{TournamentID: 1, PlayerID: 1, Placement: 1, EventDate: day, PlayerCount: 4, Rounds: 3},
			{TournamentID: 1, PlayerID: 2, Placement: 2, EventDate: day, PlayerCount: 4, Rounds: 3},
		}
		boosted := []rating.Entry{
			{TournamentID: 1, PlayerID: 1, Placement: 1, EventDate: day, PlayerCount: 4, Rounds: 6},
			{TournamentID: 1, PlayerID: 2, Placement: 2, EventDate: day, PlayerCount: 4, Rounds: 6},
		}
		calc := rating.New(fixedNow(day))

		Convey("When both are rated independently", func() {
			baseGot := calc.Rate(base)
			boostedGot := calc.Rate(boosted)

			Convey("Then the longer event moves ratings more", func() {
				So(boostedGot[1], ShouldBeGreaterThan, baseGot[1])
			})
		})
	})
}
