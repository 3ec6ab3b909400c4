// Package storequality blends player strength, attendance, and event
// frequency into a 0-100 quality score per store. Player strength comes
// from the rating calculator's output, so this component always runs
// after ratings are available.
package storequality

import "math"

// Component weights and linear mappings. Strength maps average rating
// from [1200,2000] onto [0,100]; attendance maps average player count
// from 4 up to roughly 32; activity saturates at 24 recent events.
const (
	strengthWeight   = 0.5
	attendanceWeight = 0.3
	activityWeight   = 0.2

	defaultRating    = 1500
	strengthFloor    = 1200.0
	strengthDivisor  = 8.0
	attendanceFloor  = 4.0
	attendanceScale  = 0.28
	activityTarget   = 24.0
	componentCeiling = 100.0
)

// StoreStats holds one store's recent (trailing 180 days) event
// aggregates. AvgAttendance is zero when the store had no recent
// events.
type StoreStats struct {
	StoreID       int64
	EventCount    int
	AvgAttendance float64
}

// Score produces a 0-100 quality score per store. recentPlayers maps a
// store id to the distinct players who competed there recently; players
// missing from ratings default to 1500. Stores appear in the output iff
// they appear in stats; callers pre-filter to active, non-online
// stores.
func Score(stats []StoreStats, recentPlayers map[int64][]int64, ratings map[int64]int) map[int64]int {
	out := make(map[int64]int, len(stats))
	for _, s := range stats {
		strength := strengthScore(recentPlayers[s.StoreID], ratings)
		attendance := attendanceScore(s.AvgAttendance)
		activity := activityScore(s.EventCount)

		out[s.StoreID] = int(math.Round(
			strength*strengthWeight + attendance*attendanceWeight + activity*activityWeight,
		))
	}
	return out
}

// strengthScore maps the mean rating of the store's recent players onto
// [0,100]. A store with no recent players sits at the 1500 midpoint
// rather than zero.
func strengthScore(players []int64, ratings map[int64]int) float64 {
	avg := float64(defaultRating)
	if len(players) > 0 {
		sum := 0
		for _, id := range players {
			r, ok := ratings[id]
			if !ok {
				r = defaultRating
			}
			sum += r
		}
		avg = float64(sum) / float64(len(players))
	}
	return clamp((avg - strengthFloor) / strengthDivisor)
}

func attendanceScore(avgAttendance float64) float64 {
	if avgAttendance <= 0 {
		return 0
	}
	return clamp((avgAttendance - attendanceFloor) / attendanceScale)
}

func activityScore(eventCount int) float64 {
	return math.Min(float64(eventCount)/activityTarget*componentCeiling, componentCeiling)
}

func clamp(v float64) float64 {
	return math.Min(math.Max(v, 0), componentCeiling)
}
