// Package achievement computes per-player achievement scores: placement
// points scaled by event size, plus one-time bonuses for store, deck,
// and format diversity. Scoring is a stateless function of a player's
// full participation history.
package achievement

import (
	"math"

	"github.com/digilab/metalab/internal/domain/model"
)

// Diversity bonus thresholds.
const (
	storeBonusHigh = 50 // 6+ distinct stores
	storeBonusMid  = 25 // 4+
	storeBonusLow  = 10 // 2+

	deckBonus     = 15 // 3+ distinct known archetypes
	deckBonusMin  = 3
	formatBonus   = 10 // 2+ distinct formats
	formatBonusAt = 2
)

// Entry is one ranked participation attributed to a player.
// ArchetypeName is empty when no deck was recorded.
type Entry struct {
	TournamentID  int64
	Placement     int
	PlayerCount   int
	StoreID       int64
	Format        string
	ArchetypeID   int64
	ArchetypeName string
}

// Score computes the achievement score for one player's history.
// Unranked entries (placement <= 0) are ignored.
func Score(entries []Entry) int {
	points := 0
	stores := make(map[int64]struct{})
	decks := make(map[int64]struct{})
	formats := make(map[string]struct{})

	for _, e := range entries {
		if e.Placement <= 0 {
			continue
		}
		points += placementPoints(e.Placement, e.PlayerCount)
		stores[e.StoreID] = struct{}{}
		if e.ArchetypeName != "" && e.ArchetypeName != model.UnknownArchetype {
			decks[e.ArchetypeID] = struct{}{}
		}
		if e.Format != "" {
			formats[e.Format] = struct{}{}
		}
	}
	return points + storeDiversityBonus(len(stores)) + deckDiversityBonus(len(decks)) + formatDiversityBonus(len(formats))
}

// ScoreAll computes scores for every player in the map.
func ScoreAll(byPlayer map[int64][]Entry) map[int64]int {
	out := make(map[int64]int, len(byPlayer))
	for id, entries := range byPlayer {
		out[id] = Score(entries)
	}
	return out
}

// placementPoints returns the base points for a placement scaled by the
// event-size multiplier, rounded to the nearest integer.
func placementPoints(placement, playerCount int) int {
	return int(math.Round(float64(basePoints(placement)) * sizeMultiplier(playerCount)))
}

func basePoints(placement int) int {
	switch {
	case placement == 1:
		return 50
	case placement == 2:
		return 30
	case placement == 3:
		return 20
	case placement <= 4:
		return 15
	case placement <= 8:
		return 10
	default:
		return 5
	}
}

func sizeMultiplier(playerCount int) float64 {
	switch {
	case playerCount < 12:
		return 1.0
	case playerCount < 16:
		return 1.25
	case playerCount < 24:
		return 1.5
	case playerCount < 32:
		return 1.75
	default:
		return 2.0
	}
}

func storeDiversityBonus(n int) int {
	switch {
	case n >= 6:
		return storeBonusHigh
	case n >= 4:
		return storeBonusMid
	case n >= 2:
		return storeBonusLow
	default:
		return 0
	}
}

func deckDiversityBonus(n int) int {
	if n >= deckBonusMin {
		return deckBonus
	}
	return 0
}

func formatDiversityBonus(n int) int {
	if n >= formatBonusAt {
		return formatBonus
	}
	return 0
}
