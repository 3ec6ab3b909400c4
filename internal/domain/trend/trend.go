// Package trend detects the "hot" archetype: the one whose meta share
// grew the most between the older and newer halves of a date-sorted
// tournament window. The window is split at the interpolated median
// event date, shares are computed independently within each half, and
// the largest positive delta wins.
package trend

import (
	"math"
	"sort"
	"time"

	"github.com/digilab/metalab/internal/domain/model"
)

// minTournaments is the smallest event window a trend can be read from.
const minTournaments = 10

// Status classifies the detector outcome.
type Status string

const (
	// StatusInsufficientData means the window is too small or one half
	// holds no archetype rows.
	StatusInsufficientData Status = "insufficient_data"
	// StatusStable means no archetype gained share.
	StatusStable Status = "stable"
	// StatusTrending means a winning archetype was found.
	StatusTrending Status = "trending"
)

// Row is one deck entry attributed to an event date.
type Row struct {
	EventDate     time.Time
	ArchetypeName string
	DisplayCardID string
}

// Result reports the detector outcome. Archetype, DisplayCardID, and
// Delta are only set for StatusTrending; Delta is the share gain in
// percentage points rounded to one decimal. TournamentCount is set for
// StatusInsufficientData.
type Result struct {
	Status          Status  `json:"status"`
	TournamentCount int     `json:"tournament_count,omitempty"`
	Archetype       string  `json:"archetype,omitempty"`
	DisplayCardID   string  `json:"display_card_id,omitempty"`
	Delta           float64 `json:"delta,omitempty"`
}

// Detect splits the window at the median event date and reports the
// archetype with the largest positive share delta. Rows carrying the
// UNKNOWN archetype are ignored.
func Detect(eventDates []time.Time, rows []Row) Result {
	if len(eventDates) < minTournaments {
		return Result{Status: StatusInsufficientData, TournamentCount: len(eventDates)}
	}

	median := medianDate(eventDates)

	var older, newer []Row
	for _, r := range rows {
		if r.ArchetypeName == "" || r.ArchetypeName == model.UnknownArchetype {
			continue
		}
		if r.EventDate.Before(median) {
			older = append(older, r)
		} else {
			newer = append(newer, r)
		}
	}
	if len(older) == 0 || len(newer) == 0 {
		return Result{Status: StatusInsufficientData, TournamentCount: len(eventDates)}
	}

	olderShares := shares(older)
	newerShares := shares(newer)

	best := Result{Status: StatusStable}
	bestDelta := 0.0
	for _, r := range newer {
		delta := newerShares[r.ArchetypeName] - olderShares[r.ArchetypeName]
		if delta > bestDelta {
			bestDelta = delta
			best = Result{
				Status:        StatusTrending,
				Archetype:     r.ArchetypeName,
				DisplayCardID: r.DisplayCardID,
			}
		}
	}
	if best.Status != StatusTrending {
		return Result{Status: StatusStable}
	}

	best.Delta = roundTenth(bestDelta)
	return best
}

// shares computes each archetype's percentage of the given entries.
func shares(rows []Row) map[string]float64 {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.ArchetypeName]++
	}
	total := float64(len(rows))
	out := make(map[string]float64, len(counts))
	for name, n := range counts {
		out[name] = float64(n) * 100.0 / total
	}
	return out
}

// medianDate is the continuous (interpolated) median of the dates,
// truncated to the day.
func medianDate(dates []time.Time) time.Time {
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	n := len(sorted)
	var m time.Time
	if n%2 == 1 {
		m = sorted[n/2]
	} else {
		lo, hi := sorted[n/2-1], sorted[n/2]
		m = lo.Add(hi.Sub(lo) / 2)
	}
	return m.UTC().Truncate(24 * time.Hour)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
