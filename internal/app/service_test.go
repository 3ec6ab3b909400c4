package app_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	repository "github.com/digilab/metalab/internal/adapters/repository"
	"github.com/digilab/metalab/internal/app"
	"github.com/digilab/metalab/internal/domain/model"
	"github.com/digilab/metalab/internal/domain/trend"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// newFixtureService seeds an in-memory store with two January events at
// one brick-and-mortar store. Alice wins both on Red Aggro, Bob takes
// second both times on Blue Control. The clock is pinned to Feb 1 so
// both events fall inside every recency window.
func newFixtureService(t *testing.T) *app.Service {
	t.Helper()
	ctx := context.Background()

	repo, err := repository.Open(":memory:")
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	if err := repo.Init(ctx); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	seed := func(err error) {
		if err != nil {
			t.Fatalf("seed fixture: %v", err)
		}
	}

	seed(repo.InsertStore(ctx, model.Store{ID: 1, Name: "Local Game Haven", City: "Austin", State: "TX", IsActive: true}))
	seed(repo.InsertStore(ctx, model.Store{ID: 2, Name: "Webcam League", IsActive: true, IsOnline: true}))

	seed(repo.InsertPlayer(ctx, model.Player{ID: 1, DisplayName: "Alice", IsActive: true}))
	seed(repo.InsertPlayer(ctx, model.Player{ID: 2, DisplayName: "Bob", IsActive: true}))

	seed(repo.InsertFormat(ctx, model.Format{ID: "OP01", DisplayName: "Romance Dawn", SortOrder: 1, IsActive: true}))
	seed(repo.InsertFormat(ctx, model.Format{ID: "OP02", DisplayName: "Paramount War", SortOrder: 2, IsActive: true}))

	seed(repo.InsertArchetype(ctx, model.Archetype{ID: 1, Name: "Red Aggro", DisplayCardID: "OP01-001", PrimaryColor: "Red", IsActive: true}))
	seed(repo.InsertArchetype(ctx, model.Archetype{ID: 2, Name: "Blue Control", DisplayCardID: "OP01-077", PrimaryColor: "Blue", IsActive: true}))
	seed(repo.InsertArchetype(ctx, model.Archetype{ID: 3, Name: "UNKNOWN", PrimaryColor: "Other", IsActive: true}))

	seed(repo.InsertTournament(ctx, model.Tournament{ID: 1, StoreID: 1, EventDate: date("2026-01-05"), EventType: "locals", Format: "OP01", PlayerCount: 8, Rounds: 4}))
	seed(repo.InsertTournament(ctx, model.Tournament{ID: 2, StoreID: 1, EventDate: date("2026-01-12"), EventType: "locals", Format: "OP01", PlayerCount: 4}))

	seed(repo.InsertResult(ctx, model.Result{TournamentID: 1, PlayerID: 1, ArchetypeID: 1, Placement: 1, Wins: 4}))
	seed(repo.InsertResult(ctx, model.Result{TournamentID: 1, PlayerID: 2, ArchetypeID: 2, Placement: 2, Wins: 3, Losses: 1}))
	seed(repo.InsertResult(ctx, model.Result{TournamentID: 2, PlayerID: 1, ArchetypeID: 1, Placement: 1, Wins: 3}))
	seed(repo.InsertResult(ctx, model.Result{TournamentID: 2, PlayerID: 2, ArchetypeID: 2, Placement: 2, Wins: 2, Losses: 1}))

	return app.New(repo,
		app.WithNow(func() time.Time { return date("2026-02-01") }),
	)
}

func TestService_Stats(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	Convey("Given the seeded history", t, func() {
		Convey("When the headline stats are requested", func() {
			stats, err := svc.Stats(ctx, model.Filter{})

			Convey("Then every count reflects the fixture", func() {
				So(err, ShouldBeNil)
				So(stats.TotalTournaments, ShouldEqual, 2)
				So(stats.TotalPlayers, ShouldEqual, 2)
				So(stats.TotalStores, ShouldEqual, 2)
				So(stats.TotalDecks, ShouldEqual, 3)
			})
		})

		Convey("When a filter matches nothing", func() {
			stats, err := svc.Stats(ctx, model.Filter{Format: "OP02"})

			Convey("Then the filtered counts are zero", func() {
				So(err, ShouldBeNil)
				So(stats.TotalTournaments, ShouldEqual, 0)
				So(stats.TotalPlayers, ShouldEqual, 0)
			})
		})
	})
}

func TestService_TopPlayers(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	Convey("Given Alice beating Bob twice", t, func() {
		players, err := svc.TopPlayers(ctx, model.Filter{})

		Convey("Then Alice leads by rating with both scores attached", func() {
			So(err, ShouldBeNil)
			So(players, ShouldHaveLength, 2)
			So(players[0].Name, ShouldEqual, "Alice")
			So(players[0].Rating, ShouldBeGreaterThan, players[1].Rating)
			So(players[0].Wins, ShouldEqual, 2)
			So(players[0].Events, ShouldEqual, 2)
			So(players[0].AchievementScore, ShouldBeGreaterThan, 0)
			So(players[1].Rating, ShouldBeLessThan, 1500)
		})
	})
}

func TestService_TopDecks(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	Convey("Given Red Aggro winning every event", t, func() {
		decks, err := svc.TopDecks(ctx, model.Filter{})

		Convey("Then it leads with a 100 percent win rate", func() {
			So(err, ShouldBeNil)
			So(decks, ShouldHaveLength, 2)
			So(decks[0].Name, ShouldEqual, "Red Aggro")
			So(decks[0].FirstPlaces, ShouldEqual, 2)
			So(decks[0].WinRate, ShouldEqual, 100.0)
			So(decks[1].FirstPlaces, ShouldEqual, 0)
		})
	})

	Convey("Given an empty filtered view", t, func() {
		decks, err := svc.TopDecks(ctx, model.Filter{Format: "OP02"})

		Convey("Then the list is empty, not an error", func() {
			So(err, ShouldBeNil)
			So(decks, ShouldBeEmpty)
		})
	})
}

func TestService_MostPopularDeck(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	Convey("Given two archetypes with equal entries", t, func() {
		deck, err := svc.MostPopularDeck(ctx, model.Filter{})

		Convey("Then the tie breaks alphabetically with a 50 percent share", func() {
			So(err, ShouldBeNil)
			So(deck, ShouldNotBeNil)
			So(deck.Name, ShouldEqual, "Blue Control")
			So(deck.Entries, ShouldEqual, 2)
			So(deck.MetaShare, ShouldEqual, 50.0)
		})
	})

	Convey("Given no known-archetype entries in the view", t, func() {
		deck, err := svc.MostPopularDeck(ctx, model.Filter{Format: "OP02"})

		Convey("Then nothing is returned", func() {
			So(err, ShouldBeNil)
			So(deck, ShouldBeNil)
		})
	})
}

func TestService_HotDeck(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	Convey("Given fewer than ten tournaments", t, func() {
		got, err := svc.HotDeck(ctx, model.Filter{})

		Convey("Then the trend reports insufficient data with the count", func() {
			So(err, ShouldBeNil)
			So(got.Status, ShouldEqual, trend.StatusInsufficientData)
			So(got.TournamentCount, ShouldEqual, 2)
		})
	})
}

func TestService_MetaTimeline(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	Convey("Given entries across two ISO weeks", t, func() {
		series, err := svc.MetaTimeline(ctx, model.Filter{})

		Convey("Then both weeks appear with Red ordered before Blue", func() {
			So(err, ShouldBeNil)
			So(series.Weeks, ShouldHaveLength, 2)
			So(series.Series, ShouldHaveLength, 2)
			So(series.Series[0].Name, ShouldEqual, "Red Aggro")
			So(series.Series[0].Data, ShouldResemble, []float64{50.0, 50.0})
			So(series.Series[1].Name, ShouldEqual, "Blue Control")
		})
	})
}

func TestService_AttendanceTrend(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	Convey("Given two event dates a week apart", t, func() {
		got, err := svc.AttendanceTrend(ctx, model.Filter{})

		Convey("Then the rolling average folds in the trailing week", func() {
			So(err, ShouldBeNil)
			So(got.Points, ShouldHaveLength, 2)
			So(got.Points[0].AvgPlayers, ShouldEqual, 8.0)
			So(got.Points[0].RollingAvg, ShouldEqual, 8.0)
			So(got.Points[1].AvgPlayers, ShouldEqual, 4.0)
			// Jan 5 sits exactly seven days behind Jan 12, inside the
			// inclusive window.
			So(got.Points[1].RollingAvg, ShouldEqual, 6.0)
		})
	})
}

func TestService_RecentTournaments(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	Convey("Given the seeded history", t, func() {
		recents, err := svc.RecentTournaments(ctx, model.Filter{})

		Convey("Then the newest event leads with winner and store quality", func() {
			So(err, ShouldBeNil)
			So(recents, ShouldHaveLength, 2)
			So(recents[0].TournamentID, ShouldEqual, 2)
			So(recents[0].Date, ShouldEqual, "2026-01-12")
			So(recents[0].Winner, ShouldEqual, "Alice")
			So(recents[0].StoreQuality, ShouldBeGreaterThan, 0)
			So(recents[0].StoreQuality, ShouldBeLessThanOrEqualTo, 100)
		})
	})
}

func TestService_StoreQuality(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	Convey("Given one brick-and-mortar store and one online store", t, func() {
		scores, err := svc.StoreQuality(ctx)

		Convey("Then only the physical store is scored", func() {
			So(err, ShouldBeNil)
			So(scores, ShouldHaveLength, 1)
			So(scores[1], ShouldBeGreaterThan, 0)
			So(scores[1], ShouldBeLessThanOrEqualTo, 100)
		})
	})
}

func TestService_Conversion(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	Convey("Given every entry finishing in the top three", t, func() {
		rows, err := svc.Conversion(ctx, model.Filter{})

		Convey("Then both archetypes convert at 100 percent", func() {
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
			for _, row := range rows {
				So(row.Entries, ShouldEqual, 2)
				So(row.Conversion, ShouldEqual, 100.0)
			}
		})
	})
}

func TestService_ColorDistribution(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	Convey("Given two Red and two Blue entries", t, func() {
		dist, err := svc.ColorDistribution(ctx, model.Filter{})

		Convey("Then both colors count two entries", func() {
			So(err, ShouldBeNil)
			byColor := make(map[string]int)
			for _, c := range dist {
				byColor[c.Color] = c.Count
			}
			So(byColor["Red"], ShouldEqual, 2)
			So(byColor["Blue"], ShouldEqual, 2)
		})
	})
}

func TestService_Formats(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	Convey("Given two active formats", t, func() {
		formats, err := svc.Formats(ctx)

		Convey("Then both are listed in sort order", func() {
			So(err, ShouldBeNil)
			So(formats, ShouldHaveLength, 2)
			So(formats[0].FormatID, ShouldEqual, "OP01")
			So(formats[1].DisplayName, ShouldEqual, "Paramount War")
		})
	})
}
