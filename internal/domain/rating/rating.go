// Package rating computes competitive player ratings from historical
// tournament results.
//
// The calculator runs a pairwise-comparison Elo over every eligible
// tournament: each participant is compared against every other
// participant in the same event, expectation uses the standard logistic
// form with divisor 400, and the accumulated change is normalized per
// opponent. A fixed number of full passes over the date-ordered event
// list is used instead of a convergence threshold so the cost stays
// bounded and the output stays reproducible. Older events are damped by
// a recency half-life and larger events are boosted by a round-count
// multiplier.
//
// Ratings are pure functions of the input entries and the supplied
// clock: identical inputs yield bit-identical integer outputs.
package rating

import (
	"math"
	"sort"
	"time"
)

// Algorithm constants. These are deliberately not configurable; see the
// design notes on fixed-pass convergence.
const (
	initialRating = 1500

	// passes is the fixed number of full replays of the event history.
	passes = 5

	// K-factor tiers: provisional players move faster.
	provisionalK      = 48.0
	establishedK      = 24.0
	provisionalEvents = 5

	// Recency decay: 4-month half-life, months measured at 30.44 days.
	decayHalfLifeMonths = 4.0
	daysPerMonth        = 30.44

	// Round-count multiplier: +0.1 per round past 3, capped at 1.4.
	defaultRounds  = 3
	roundMultStep  = 0.1
	roundMultCap   = 1.4
	logisticDiv    = 400.0
	minPlayerCount = 4
	minRanked      = 2
)

// Entry is one ranked participation in one tournament. Placement is
// 1-based; PlayerCount and Rounds carry the tournament's values (zero
// Rounds means unknown and defaults to 3).
type Entry struct {
	TournamentID int64
	PlayerID     int64
	Placement    int
	EventDate    time.Time
	PlayerCount  int
	Rounds       int
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithNow overrides the wall clock used for recency decay. Tests use
// this to pin decay weights.
func WithNow(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// Calculator derives converged ratings from full participation history.
type Calculator struct {
	now func() time.Time
}

// New creates a Calculator.
func New(opts ...Option) *Calculator {
	c := &Calculator{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tournament groups the ranked entries of one event.
type tournament struct {
	id      int64
	date    time.Time
	rounds  int
	entries []Entry
}

// Rate computes the final integer rating per player id. Players with no
// eligible entries are absent from the result; callers default missing
// ids to 1500. Entries with placement <= 0 or a player count below 4
// are discarded, as are tournaments with fewer than two ranked
// participants.
func (c *Calculator) Rate(entries []Entry) map[int64]int {
	byTournament := make(map[int64]*tournament)
	for _, e := range entries {
		if e.Placement <= 0 || e.PlayerCount < minPlayerCount {
			continue
		}
		t, ok := byTournament[e.TournamentID]
		if !ok {
			t = &tournament{id: e.TournamentID, date: e.EventDate, rounds: e.Rounds}
			byTournament[e.TournamentID] = t
		}
		t.entries = append(t.entries, e)
	}

	tournaments := make([]*tournament, 0, len(byTournament))
	for _, t := range byTournament {
		if len(t.entries) < minRanked {
			continue
		}
		sort.Slice(t.entries, func(i, j int) bool {
			return t.entries[i].Placement < t.entries[j].Placement
		})
		tournaments = append(tournaments, t)
	}
	if len(tournaments) == 0 {
		return map[int64]int{}
	}

	// Canonical processing order, replayed identically in every pass.
	sort.Slice(tournaments, func(i, j int) bool {
		if !tournaments[i].date.Equal(tournaments[j].date) {
			return tournaments[i].date.Before(tournaments[j].date)
		}
		return tournaments[i].id < tournaments[j].id
	})

	ratings := make(map[int64]float64)
	eventsPlayed := make(map[int64]int)
	for _, t := range tournaments {
		for _, e := range t.entries {
			if _, ok := ratings[e.PlayerID]; !ok {
				ratings[e.PlayerID] = initialRating
				eventsPlayed[e.PlayerID] = 0
			}
		}
	}

	now := c.now()
	for pass := 0; pass < passes; pass++ {
		for _, t := range tournaments {
			c.applyTournament(t, ratings, eventsPlayed, now)
			if pass == 0 {
				for _, e := range t.entries {
					eventsPlayed[e.PlayerID]++
				}
			}
		}
	}

	out := make(map[int64]int, len(ratings))
	for id, r := range ratings {
		out[id] = int(math.Round(r))
	}
	return out
}

// applyTournament accumulates every participant's delta against the
// pre-event ratings and applies them together, so ordering within one
// event cannot influence expectations.
func (c *Calculator) applyTournament(t *tournament, ratings map[int64]float64, eventsPlayed map[int64]int, now time.Time) {
	decay := decayWeight(t.date, now)
	roundMult := roundMultiplier(t.rounds)
	n := float64(len(t.entries) - 1)

	deltas := make([]float64, len(t.entries))
	for i, p := range t.entries {
		k := kFactor(eventsPlayed[p.PlayerID])
		var change float64
		for j, o := range t.entries {
			if i == j || p.PlayerID == o.PlayerID {
				continue
			}
			// Ties credit neither side: both reciprocal comparisons
			// score actual = 0.
			actual := 0.0
			if p.Placement < o.Placement {
				actual = 1.0
			}
			expected := expectedScore(ratings[p.PlayerID], ratings[o.PlayerID])
			change += k * (actual - expected)
		}
		deltas[i] = change * decay * roundMult / n
	}
	for i, p := range t.entries {
		ratings[p.PlayerID] += deltas[i]
	}
}

// expectedScore is the logistic win expectation of a against b.
func expectedScore(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/logisticDiv))
}

// kFactor returns the adjustment ceiling for a player who has the given
// number of events on record.
func kFactor(eventsPlayed int) float64 {
	if eventsPlayed < provisionalEvents {
		return provisionalK
	}
	return establishedK
}

// decayWeight halves an event's influence every four months of age.
func decayWeight(eventDate, now time.Time) float64 {
	monthsAgo := now.Sub(eventDate).Hours() / 24 / daysPerMonth
	return math.Pow(0.5, monthsAgo/decayHalfLifeMonths)
}

// roundMultiplier boosts events with more rounds than the default
// three, capped at 1.4. Zero rounds means the count was not declared.
func roundMultiplier(rounds int) float64 {
	if rounds <= 0 {
		rounds = defaultRounds
	}
	return math.Min(1.0+float64(rounds-defaultRounds)*roundMultStep, roundMultCap)
}
