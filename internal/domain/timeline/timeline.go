// Package timeline builds the chart-ready meta structures: a weekly
// per-archetype share series and a rolling attendance average.
package timeline

import (
	"math"
	"sort"
	"time"

	"github.com/digilab/metalab/internal/domain/model"
)

// Row is one deck entry attributed to an event date.
type Row struct {
	EventDate     time.Time
	ArchetypeName string
	PrimaryColor  string
}

// Series is one archetype's share-over-time line. Data holds one value
// per week label, gap-filled with zero for weeks the archetype missed.
type Series struct {
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Data  []float64 `json:"data"`
}

// ShareSeries is the full meta-timeline structure.
type ShareSeries struct {
	Weeks  []string `json:"weeks"`
	Series []Series `json:"series"`
}

// BuildShareSeries buckets rows by ISO week and archetype and converts
// entry counts to percentage shares of each week's total. Weeks with no
// entries at all are omitted entirely. Series are ordered by the
// canonical color order first, then by total entries descending, so
// related archetypes group together before popularity ordering. UNKNOWN
// rows are excluded.
func BuildShareSeries(rows []Row) ShareSeries {
	type key struct {
		week      time.Time
		archetype string
	}
	counts := make(map[key]int)
	weekTotals := make(map[time.Time]int)
	archTotals := make(map[string]int)
	archColors := make(map[string]string)

	for _, r := range rows {
		if r.ArchetypeName == "" || r.ArchetypeName == model.UnknownArchetype {
			continue
		}
		w := WeekStart(r.EventDate)
		counts[key{w, r.ArchetypeName}]++
		weekTotals[w]++
		archTotals[r.ArchetypeName]++
		archColors[r.ArchetypeName] = r.PrimaryColor
	}
	if len(weekTotals) == 0 {
		return ShareSeries{Weeks: []string{}, Series: []Series{}}
	}

	weeks := make([]time.Time, 0, len(weekTotals))
	for w := range weekTotals {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	names := make([]string, 0, len(archTotals))
	for name := range archTotals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := model.ColorRank(archColors[names[i]]), model.ColorRank(archColors[names[j]])
		if ri != rj {
			return ri < rj
		}
		if archTotals[names[i]] != archTotals[names[j]] {
			return archTotals[names[i]] > archTotals[names[j]]
		}
		return names[i] < names[j]
	})

	out := ShareSeries{Weeks: make([]string, len(weeks))}
	for i, w := range weeks {
		out.Weeks[i] = w.Format("Jan 2")
	}
	for _, name := range names {
		data := make([]float64, len(weeks))
		for i, w := range weeks {
			if n, ok := counts[key{w, name}]; ok {
				data[i] = math.Round(float64(n)/float64(weekTotals[w])*1000) / 10
			}
		}
		color, ok := model.ColorHex[archColors[name]]
		if !ok {
			color = model.FallbackColorHex
		}
		out.Series = append(out.Series, Series{Name: name, Color: color, Data: data})
	}
	return out
}

// WeekStart truncates a date to the Monday of its ISO week, in UTC.
func WeekStart(t time.Time) time.Time {
	t = t.UTC().Truncate(24 * time.Hour)
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset)
}

// DayPoint is one event date's attendance aggregate.
type DayPoint struct {
	Date        time.Time `json:"event_date"`
	Tournaments int       `json:"tournaments"`
	AvgPlayers  float64   `json:"avg_players"`
	RollingAvg  float64   `json:"rolling_avg"`
}

// RollingAttendance fills each point's RollingAvg with the mean of
// AvgPlayers over every point dated within the trailing seven days up
// to and including the point itself. The window is time-based and
// inclusive, not a fixed number of points. Input must be ordered by
// date ascending; output preserves order.
func RollingAttendance(points []DayPoint) []DayPoint {
	out := make([]DayPoint, len(points))
	for i, p := range points {
		weekAgo := p.Date.AddDate(0, 0, -7)
		sum, n := 0.0, 0
		for _, q := range points {
			if !q.Date.Before(weekAgo) && !q.Date.After(p.Date) {
				sum += q.AvgPlayers
				n++
			}
		}
		out[i] = p
		if n > 0 {
			out[i].RollingAvg = math.Round(sum/float64(n)*10) / 10
		}
	}
	return out
}
