// Package app wires the result repository to the domain calculators
// and exposes the dashboard read operations consumed by the HTTP API.
//
// Every operation recomputes its derived numbers from the current row
// set; nothing is cached between requests. Independent read sets behind
// one request are fetched concurrently, the scoring algorithms
// themselves run single-threaded.
package app

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	repository "github.com/digilab/metalab/internal/adapters/repository"
	"github.com/digilab/metalab/internal/domain/achievement"
	"github.com/digilab/metalab/internal/domain/model"
	"github.com/digilab/metalab/internal/domain/rating"
	"github.com/digilab/metalab/internal/domain/storequality"
	"github.com/digilab/metalab/internal/domain/timeline"
	"github.com/digilab/metalab/internal/domain/trend"
	"github.com/digilab/metalab/pkg/logger"
	"github.com/digilab/metalab/pkg/metrics"
)

// recentWindowDays is the trailing window for store quality scoring.
const recentWindowDays = 180

// Service implements the dashboard operations.
type Service struct {
	repo   *repository.Repository
	logger logger.Logger
	now    func() time.Time

	topPlayersLimit int
	topDecksLimit   int
	recentLimit     int
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNow overrides the wall clock used for decay and recency windows.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTopPlayersLimit caps the top-players leaderboard length.
func WithTopPlayersLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topPlayersLimit = n
		}
	}
}

// WithTopDecksLimit caps the top-decks list length.
func WithTopDecksLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topDecksLimit = n
		}
	}
}

// WithRecentTournamentsLimit caps the recent-tournaments list length.
func WithRecentTournamentsLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

// New constructs a Service over the given repository.
func New(repo *repository.Repository, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		now:             time.Now,
		topPlayersLimit: 10,
		topDecksLimit:   6,
		recentLimit:     10,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// fanOut runs the given fetches concurrently and returns the first
// error. Each fetch reads an immutable snapshot and performs no writes.
func fanOut(fns ...func() error) error {
	var wg sync.WaitGroup
	errs := make([]error, len(fns))
	for i, fn := range fns {
		wg.Add(1)
		go func(i int, fn func() error) {
			defer wg.Done()
			errs[i] = fn()
		}(i, fn)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the dashboard headline counts.
func (s *Service) Stats(ctx context.Context, f model.Filter) (Stats, error) {
	var st Stats
	err := fanOut(
		func() (err error) { st.TotalTournaments, err = s.repo.CountTournaments(ctx, f); return },
		func() (err error) { st.TotalPlayers, err = s.repo.CountPlayers(ctx, f); return },
		func() (err error) { st.TotalStores, err = s.repo.CountActiveStores(ctx); return },
		func() (err error) { st.TotalDecks, err = s.repo.CountActiveArchetypes(ctx); return },
	)
	if err != nil {
		metrics.RecordRepositoryError()
		return Stats{}, err
	}
	return st, nil
}

// Ratings recomputes the competitive rating map from the full history.
func (s *Service) Ratings(ctx context.Context) (map[int64]int, error) {
	rows, err := s.repo.RatingRows(ctx)
	if err != nil {
		metrics.RecordRepositoryError()
		return nil, err
	}
	metrics.SetSnapshotRows("rating_rows", len(rows))

	entries := make([]rating.Entry, len(rows))
	for i, r := range rows {
		entries[i] = rating.Entry{
			TournamentID: r.TournamentID,
			PlayerID:     r.PlayerID,
			Placement:    r.Placement,
			EventDate:    r.EventDate,
			PlayerCount:  r.PlayerCount,
			Rounds:       r.Rounds,
		}
	}

	start := time.Now()
	calc := rating.New(rating.WithNow(s.now))
	out := calc.Rate(entries)
	metrics.ObserveCompute("rating", time.Since(start))
	s.logger.Debug(ctx, "recomputed ratings",
		logger.Int("rows", len(rows)), logger.Int("players", len(out)))
	return out, nil
}

// AchievementScores recomputes every player's achievement score from
// the full history.
func (s *Service) AchievementScores(ctx context.Context) (map[int64]int, error) {
	rows, err := s.repo.AchievementRows(ctx)
	if err != nil {
		metrics.RecordRepositoryError()
		return nil, err
	}
	metrics.SetSnapshotRows("achievement_rows", len(rows))

	byPlayer := make(map[int64][]achievement.Entry)
	for _, r := range rows {
		byPlayer[r.PlayerID] = append(byPlayer[r.PlayerID], achievement.Entry{
			TournamentID:  r.TournamentID,
			Placement:     r.Placement,
			PlayerCount:   r.PlayerCount,
			StoreID:       r.StoreID,
			Format:        r.Format,
			ArchetypeID:   r.ArchetypeID,
			ArchetypeName: r.ArchetypeName,
		})
	}

	start := time.Now()
	out := achievement.ScoreAll(byPlayer)
	metrics.ObserveCompute("achievement", time.Since(start))
	return out, nil
}

// StoreQuality recomputes the 0-100 quality score per active,
// non-online store, blending recent attendance and activity with the
// ratings of players who competed there.
func (s *Service) StoreQuality(ctx context.Context) (map[int64]int, error) {
	since := s.now().AddDate(0, 0, -recentWindowDays)

	var (
		activity []repository.StoreActivity
		players  map[int64][]int64
		ratings  map[int64]int
	)
	err := fanOut(
		func() (err error) { activity, err = s.repo.StoreActivitySince(ctx, since); return },
		func() (err error) { players, err = s.repo.StorePlayersSince(ctx, since); return },
		func() (err error) { ratings, err = s.Ratings(ctx); return },
	)
	if err != nil {
		metrics.RecordRepositoryError()
		return nil, err
	}

	stats := make([]storequality.StoreStats, len(activity))
	for i, a := range activity {
		stats[i] = storequality.StoreStats{
			StoreID:       a.StoreID,
			EventCount:    a.EventCount,
			AvgAttendance: a.AvgAttendance,
		}
	}

	start := time.Now()
	out := storequality.Score(stats, players, ratings)
	metrics.ObserveCompute("storequality", time.Since(start))
	return out, nil
}

// TopPlayers joins raw event tallies with both derived scores, ordered
// by rating descending. Players missing from the rating map default to
// 1500 and missing achievement scores default to zero.
func (s *Service) TopPlayers(ctx context.Context, f model.Filter) ([]TopPlayer, error) {
	var (
		summaries    []repository.PlayerSummary
		ratings      map[int64]int
		achievements map[int64]int
	)
	err := fanOut(
		func() (err error) { summaries, err = s.repo.PlayerSummaries(ctx, f); return },
		func() (err error) { ratings, err = s.Ratings(ctx); return },
		func() (err error) { achievements, err = s.AchievementScores(ctx); return },
	)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return []TopPlayer{}, nil
	}

	out := make([]TopPlayer, len(summaries))
	for i, sum := range summaries {
		r, ok := ratings[sum.PlayerID]
		if !ok {
			r = 1500
		}
		out[i] = TopPlayer{
			PlayerID:         sum.PlayerID,
			Name:             sum.DisplayName,
			Events:           sum.Events,
			Wins:             sum.Wins,
			Top3:             sum.Top3,
			Rating:           r,
			AchievementScore: achievements[sum.PlayerID],
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	if len(out) > s.topPlayersLimit {
		out = out[:s.topPlayersLimit]
	}
	return out, nil
}

// TopDecks returns the archetypes with the most event wins, annotated
// with their per-tournament win rate.
func (s *Service) TopDecks(ctx context.Context, f model.Filter) ([]TopDeck, error) {
	var (
		total int
		decks []repository.DeckSummary
	)
	err := fanOut(
		func() (err error) { total, err = s.repo.CountTournaments(ctx, f); return },
		func() (err error) { decks, err = s.repo.DeckSummaries(ctx, f, s.topDecksLimit); return },
	)
	if err != nil {
		metrics.RecordRepositoryError()
		return nil, err
	}
	if total == 0 {
		return []TopDeck{}, nil
	}

	out := make([]TopDeck, len(decks))
	for i, d := range decks {
		out[i] = TopDeck{
			Name:          d.ArchetypeName,
			DisplayCardID: d.DisplayCardID,
			PrimaryColor:  d.PrimaryColor,
			TimesPlayed:   d.TimesPlayed,
			FirstPlaces:   d.FirstPlaces,
			WinRate:       roundTenth(float64(d.FirstPlaces) * 100 / float64(total)),
		}
	}
	return out, nil
}

// MostPopularDeck returns the most-entered archetype with its meta
// share, or nil when no known-archetype entries exist.
func (s *Service) MostPopularDeck(ctx context.Context, f model.Filter) (*PopularDeck, error) {
	counts, err := s.repo.ArchetypeCounts(ctx, f)
	if err != nil {
		metrics.RecordRepositoryError()
		return nil, err
	}
	if len(counts) == 0 {
		return nil, nil
	}

	total := 0
	for _, c := range counts {
		total += c.Entries
	}
	top := counts[0]
	return &PopularDeck{
		Name:          top.ArchetypeName,
		DisplayCardID: top.DisplayCardID,
		Entries:       top.Entries,
		MetaShare:     roundTenth(float64(top.Entries) * 100 / float64(total)),
	}, nil
}

// HotDeck detects the trending archetype over the filtered window.
func (s *Service) HotDeck(ctx context.Context, f model.Filter) (trend.Result, error) {
	var (
		dates   []time.Time
		entries []repository.ArchetypeEntry
	)
	err := fanOut(
		func() (err error) { dates, err = s.repo.TournamentDates(ctx, f); return },
		func() (err error) { entries, err = s.repo.ArchetypeEntries(ctx, f); return },
	)
	if err != nil {
		metrics.RecordRepositoryError()
		return trend.Result{}, err
	}

	rows := make([]trend.Row, len(entries))
	for i, e := range entries {
		rows[i] = trend.Row{
			EventDate:     e.EventDate,
			ArchetypeName: e.ArchetypeName,
			DisplayCardID: e.DisplayCardID,
		}
	}

	start := time.Now()
	out := trend.Detect(dates, rows)
	metrics.ObserveCompute("trend", time.Since(start))
	return out, nil
}

// MetaTimeline builds the weekly archetype share series.
func (s *Service) MetaTimeline(ctx context.Context, f model.Filter) (timeline.ShareSeries, error) {
	entries, err := s.repo.ArchetypeEntries(ctx, f)
	if err != nil {
		metrics.RecordRepositoryError()
		return timeline.ShareSeries{}, err
	}

	rows := make([]timeline.Row, len(entries))
	for i, e := range entries {
		rows[i] = timeline.Row{
			EventDate:     e.EventDate,
			ArchetypeName: e.ArchetypeName,
			PrimaryColor:  e.PrimaryColor,
		}
	}

	start := time.Now()
	out := timeline.BuildShareSeries(rows)
	metrics.ObserveCompute("timeline", time.Since(start))
	return out, nil
}

// AttendanceTrend returns per-date attendance with a trailing rolling
// average for smoothing.
func (s *Service) AttendanceTrend(ctx context.Context, f model.Filter) (AttendanceTrend, error) {
	raw, err := s.repo.AttendanceByDate(ctx, f)
	if err != nil {
		metrics.RecordRepositoryError()
		return AttendanceTrend{}, err
	}

	points := make([]timeline.DayPoint, len(raw))
	for i, p := range raw {
		points[i] = timeline.DayPoint{
			Date:        p.Date,
			Tournaments: p.Tournaments,
			AvgPlayers:  roundTenth(p.AvgPlayers),
		}
	}
	return AttendanceTrend{Points: timeline.RollingAttendance(points)}, nil
}

// RecentTournaments lists the latest events annotated with store
// quality scores. Stores without a score report zero.
func (s *Service) RecentTournaments(ctx context.Context, f model.Filter) ([]RecentTournament, error) {
	var (
		rows    []repository.RecentTournament
		quality map[int64]int
	)
	err := fanOut(
		func() (err error) { rows, err = s.repo.RecentTournaments(ctx, f, s.recentLimit); return },
		func() (err error) { quality, err = s.StoreQuality(ctx); return },
	)
	if err != nil {
		return nil, err
	}

	out := make([]RecentTournament, len(rows))
	for i, r := range rows {
		winner := r.Winner
		if winner == "" {
			winner = "-"
		}
		out[i] = RecentTournament{
			TournamentID: r.TournamentID,
			StoreID:      r.StoreID,
			Store:        r.StoreName,
			Date:         r.Date.Format("2006-01-02"),
			Players:      r.Players,
			Winner:       winner,
			StoreQuality: quality[r.StoreID],
		}
	}
	return out, nil
}

// Conversion returns the archetypes converting entries into top-3
// finishes best.
func (s *Service) Conversion(ctx context.Context, f model.Filter) ([]Conversion, error) {
	rows, err := s.repo.ConversionRows(ctx, f)
	if err != nil {
		metrics.RecordRepositoryError()
		return nil, err
	}

	out := make([]Conversion, len(rows))
	for i, r := range rows {
		out[i] = Conversion{
			Name:       r.Name,
			Color:      r.Color,
			Entries:    r.Entries,
			Top3:       r.Top3,
			Conversion: roundTenth(float64(r.Top3) * 100 / float64(r.Entries)),
		}
	}
	return out, nil
}

// ColorDistribution returns entry counts per primary color.
func (s *Service) ColorDistribution(ctx context.Context, f model.Filter) ([]ColorCount, error) {
	rows, err := s.repo.ColorDistribution(ctx, f)
	if err != nil {
		metrics.RecordRepositoryError()
		return nil, err
	}

	out := make([]ColorCount, len(rows))
	for i, r := range rows {
		out[i] = ColorCount{Color: r.Color, Count: r.Count}
	}
	return out, nil
}

// Formats returns the active formats for the filter dropdown.
func (s *Service) Formats(ctx context.Context) ([]FormatInfo, error) {
	rows, err := s.repo.Formats(ctx)
	if err != nil {
		metrics.RecordRepositoryError()
		return nil, err
	}

	out := make([]FormatInfo, len(rows))
	for i, r := range rows {
		out[i] = FormatInfo{FormatID: r.ID, DisplayName: r.DisplayName}
	}
	return out, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
