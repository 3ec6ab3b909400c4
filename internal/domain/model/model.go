// Package model contains the row types passed between the repository
// and the domain calculators. Fields mirror the result-store schema.
package model

import "time"

// UnknownArchetype marks results whose deck could not be classified.
// Rows carrying it are excluded from every meta-share computation.
const UnknownArchetype = "UNKNOWN"

// Store is a tournament venue.
type Store struct {
	ID       int64
	Name     string
	City     string
	State    string
	IsActive bool
	IsOnline bool
}

// Player is a competitor identity. Rating and achievement score are
// derived per request, never stored here.
type Player struct {
	ID          int64
	DisplayName string
	IsActive    bool
}

// Format describes a playable format/set rotation.
type Format struct {
	ID          string
	SetName     string
	DisplayName string
	ReleaseDate time.Time
	SortOrder   int
	IsActive    bool
}

// Archetype is a deck category with a primary (and optional secondary)
// color tag used for meta grouping.
type Archetype struct {
	ID             int64
	Name           string
	DisplayCardID  string
	PrimaryColor   string
	SecondaryColor string
	IsActive       bool
}

// Tournament is one completed event. PlayerCount and Rounds are zero
// when the source row was null; Rounds defaults to 3 downstream.
type Tournament struct {
	ID          int64
	StoreID     int64
	EventDate   time.Time
	EventType   string
	Format      string
	PlayerCount int
	Rounds      int
}

// Result is one player's outcome within one tournament. Placement is
// 1-based; zero means unranked and such rows are excluded from rating
// and achievement scoring. ArchetypeID is zero when no deck was
// recorded.
type Result struct {
	ID           int64
	TournamentID int64
	PlayerID     int64
	ArchetypeID  int64
	Placement    int
	Wins         int
	Losses       int
	Ties         int
}

// Filter narrows the tournament set before any scoring begins. Empty
// fields match everything. The same filter applies uniformly to every
// downstream component within one invocation.
type Filter struct {
	Format    string
	EventType string
}
