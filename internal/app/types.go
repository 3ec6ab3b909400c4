package app

import (
	"github.com/digilab/metalab/internal/domain/timeline"
)

// Stats is the dashboard headline block.
type Stats struct {
	TotalTournaments int `json:"total_tournaments"`
	TotalPlayers     int `json:"total_players"`
	TotalStores      int `json:"total_stores"`
	TotalDecks       int `json:"total_decks"`
}

// TopPlayer is one leaderboard row: raw tallies joined with the two
// derived scores.
type TopPlayer struct {
	PlayerID         int64  `json:"player_id"`
	Name             string `json:"name"`
	Events           int    `json:"events"`
	Wins             int    `json:"wins"`
	Top3             int    `json:"top3"`
	Rating           int    `json:"rating"`
	AchievementScore int    `json:"achievement_score"`
}

// TopDeck is one archetype row with its event win rate.
type TopDeck struct {
	Name          string  `json:"name"`
	DisplayCardID string  `json:"display_card_id,omitempty"`
	PrimaryColor  string  `json:"primary_color"`
	TimesPlayed   int     `json:"times_played"`
	FirstPlaces   int     `json:"first_places"`
	WinRate       float64 `json:"win_rate"`
}

// PopularDeck is the most-entered archetype and its meta share.
type PopularDeck struct {
	Name          string  `json:"name"`
	DisplayCardID string  `json:"display_card_id,omitempty"`
	Entries       int     `json:"entries"`
	MetaShare     float64 `json:"meta_share"`
}

// RecentTournament is one row of the recent-events list, annotated with
// the store's quality score.
type RecentTournament struct {
	TournamentID int64  `json:"tournament_id"`
	StoreID      int64  `json:"store_id"`
	Store        string `json:"store"`
	Date         string `json:"date"`
	Players      int    `json:"players"`
	Winner       string `json:"winner"`
	StoreQuality int    `json:"store_quality"`
}

// Conversion is one archetype's top-3 conversion rate.
type Conversion struct {
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Entries    int     `json:"entries"`
	Top3       int     `json:"top3"`
	Conversion float64 `json:"conversion"`
}

// ColorCount is one slice of the color distribution.
type ColorCount struct {
	Color string `json:"color"`
	Count int    `json:"count"`
}

// FormatInfo is one selectable format.
type FormatInfo struct {
	FormatID    string `json:"format_id"`
	DisplayName string `json:"display_name"`
}

// AttendanceTrend is the chart payload for the attendance trend.
type AttendanceTrend struct {
	Points []timeline.DayPoint `json:"points"`
}
