package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/digilab/metalab/internal/domain/model"
)

// RatingRow is one ranked participation eligible for rating: placement
// known and tournament player count at least four.
type RatingRow struct {
	TournamentID int64
	PlayerID     int64
	Placement    int
	EventDate    time.Time
	PlayerCount  int
	Rounds       int
}

// RatingRows returns eligible participations for the rating calculator,
// ordered by event date. Ratings are always computed over the full
// history, never the filtered view.
func (r *Repository) RatingRows(ctx context.Context) ([]RatingRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.tournament_id, r.player_id, r.placement,
		       t.event_date, t.player_count, COALESCE(t.rounds, 0)
		FROM results r
		JOIN tournaments t ON r.tournament_id = t.tournament_id
		JOIN players p ON r.player_id = p.player_id
		WHERE r.placement IS NOT NULL
		  AND t.player_count IS NOT NULL
		  AND t.player_count >= 4
		ORDER BY t.event_date ASC, r.tournament_id, r.placement
	`)
	if err != nil {
		return nil, fmt.Errorf("query rating rows: %w", err)
	}
	defer rows.Close()

	var out []RatingRow
	for rows.Next() {
		var row RatingRow
		var date string
		if err := rows.Scan(&row.TournamentID, &row.PlayerID, &row.Placement, &date, &row.PlayerCount, &row.Rounds); err != nil {
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		if row.EventDate, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// AchievementRow is one ranked participation with the context needed
// for achievement scoring.
type AchievementRow struct {
	PlayerID      int64
	TournamentID  int64
	Placement     int
	ArchetypeID   int64
	ArchetypeName string
	PlayerCount   int
	StoreID       int64
	Format        string
}

// AchievementRows returns every ranked participation joined with its
// tournament and archetype context.
func (r *Repository) AchievementRows(ctx context.Context) ([]AchievementRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.player_id, r.tournament_id, r.placement,
		       COALESCE(r.archetype_id, 0), COALESCE(da.archetype_name, ''),
		       COALESCE(t.player_count, 0), t.store_id, COALESCE(t.format, '')
		FROM results r
		JOIN tournaments t ON r.tournament_id = t.tournament_id
		LEFT JOIN deck_archetypes da ON r.archetype_id = da.archetype_id
		WHERE r.placement IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("query achievement rows: %w", err)
	}
	defer rows.Close()

	var out []AchievementRow
	for rows.Next() {
		var row AchievementRow
		if err := rows.Scan(&row.PlayerID, &row.TournamentID, &row.Placement, &row.ArchetypeID,
			&row.ArchetypeName, &row.PlayerCount, &row.StoreID, &row.Format); err != nil {
			return nil, fmt.Errorf("scan achievement row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ArchetypeEntry is one known-archetype deck entry with its event date.
type ArchetypeEntry struct {
	EventDate     time.Time
	ArchetypeName string
	DisplayCardID string
	PrimaryColor  string
}

// ArchetypeEntries returns every deck entry of a known archetype within
// the filtered tournament set. UNKNOWN is excluded at the source.
func (r *Repository) ArchetypeEntries(ctx context.Context, f model.Filter) ([]ArchetypeEntry, error) {
	clause, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.event_date, da.archetype_name,
		       COALESCE(da.display_card_id, ''), da.primary_color
		FROM results r
		JOIN deck_archetypes da ON r.archetype_id = da.archetype_id
		JOIN tournaments t ON r.tournament_id = t.tournament_id
		WHERE da.archetype_name != 'UNKNOWN'`+clause+`
		ORDER BY t.event_date, r.result_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query archetype entries: %w", err)
	}
	defer rows.Close()

	var out []ArchetypeEntry
	for rows.Next() {
		var e ArchetypeEntry
		var date string
		if err := rows.Scan(&date, &e.ArchetypeName, &e.DisplayCardID, &e.PrimaryColor); err != nil {
			return nil, fmt.Errorf("scan archetype entry: %w", err)
		}
		if e.EventDate, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// TournamentDates returns the event dates of the filtered tournament
// set, ascending.
func (r *Repository) TournamentDates(ctx context.Context, f model.Filter) ([]time.Time, error) {
	clause, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.event_date FROM tournaments t
		WHERE 1=1`+clause+`
		ORDER BY t.event_date
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query tournament dates: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan tournament date: %w", err)
		}
		d, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// StoreActivity is one active, non-online store's recent aggregates.
type StoreActivity struct {
	StoreID       int64
	EventCount    int
	AvgAttendance float64
}

// StoreActivitySince returns recent event counts and attendance per
// active, non-online store. Stores with no recent events still appear
// with zero counts.
func (r *Repository) StoreActivitySince(ctx context.Context, since time.Time) ([]StoreActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.store_id,
		       COUNT(DISTINCT t.tournament_id),
		       COALESCE(AVG(t.player_count), 0)
		FROM stores s
		LEFT JOIN tournaments t ON s.store_id = t.store_id AND t.event_date >= ?
		WHERE s.is_active = 1 AND s.is_online = 0
		GROUP BY s.store_id
	`, since.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query store activity: %w", err)
	}
	defer rows.Close()

	var out []StoreActivity
	for rows.Next() {
		var a StoreActivity
		if err := rows.Scan(&a.StoreID, &a.EventCount, &a.AvgAttendance); err != nil {
			return nil, fmt.Errorf("scan store activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// StorePlayersSince returns the distinct players who competed at each
// store on or after the cutoff.
func (r *Repository) StorePlayersSince(ctx context.Context, since time.Time) (map[int64][]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT t.store_id, r.player_id
		FROM results r
		JOIN tournaments t ON r.tournament_id = t.tournament_id
		WHERE t.event_date >= ?
	`, since.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query store players: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]int64)
	for rows.Next() {
		var storeID, playerID int64
		if err := rows.Scan(&storeID, &playerID); err != nil {
			return nil, fmt.Errorf("scan store player: %w", err)
		}
		out[storeID] = append(out[storeID], playerID)
	}
	return out, rows.Err()
}

// PlayerSummary is one player's raw event tallies within the filtered
// tournament set.
type PlayerSummary struct {
	PlayerID    int64
	DisplayName string
	Events      int
	Wins        int
	Top3        int
}

// PlayerSummaries returns per-player event counts, wins, and top-3
// placements within the filtered tournament set.
func (r *Repository) PlayerSummaries(ctx context.Context, f model.Filter) ([]PlayerSummary, error) {
	clause, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.player_id, p.display_name,
		       COUNT(DISTINCT r.tournament_id),
		       COUNT(CASE WHEN r.placement = 1 THEN 1 END),
		       COUNT(CASE WHEN r.placement <= 3 THEN 1 END)
		FROM players p
		JOIN results r ON p.player_id = r.player_id
		JOIN tournaments t ON r.tournament_id = t.tournament_id
		WHERE 1=1`+clause+`
		GROUP BY p.player_id, p.display_name
		HAVING COUNT(DISTINCT r.tournament_id) > 0
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query player summaries: %w", err)
	}
	defer rows.Close()

	var out []PlayerSummary
	for rows.Next() {
		var s PlayerSummary
		if err := rows.Scan(&s.PlayerID, &s.DisplayName, &s.Events, &s.Wins, &s.Top3); err != nil {
			return nil, fmt.Errorf("scan player summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeckSummary is one archetype's played/won tallies.
type DeckSummary struct {
	ArchetypeName string
	DisplayCardID string
	PrimaryColor  string
	TimesPlayed   int
	FirstPlaces   int
}

// DeckSummaries returns the most successful archetypes ordered by first
// places then entries.
func (r *Repository) DeckSummaries(ctx context.Context, f model.Filter, limit int) ([]DeckSummary, error) {
	clause, args := filterClause(f)
	args = append(args, limit)
	rows, err := r.db.QueryContext(ctx, `
		SELECT da.archetype_name, COALESCE(da.display_card_id, ''), da.primary_color,
		       COUNT(r.result_id),
		       COUNT(CASE WHEN r.placement = 1 THEN 1 END)
		FROM deck_archetypes da
		JOIN results r ON da.archetype_id = r.archetype_id
		JOIN tournaments t ON r.tournament_id = t.tournament_id
		WHERE da.archetype_name != 'UNKNOWN'`+clause+`
		GROUP BY da.archetype_id, da.archetype_name, da.display_card_id, da.primary_color
		HAVING COUNT(r.result_id) >= 1
		ORDER BY COUNT(CASE WHEN r.placement = 1 THEN 1 END) DESC, COUNT(r.result_id) DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query deck summaries: %w", err)
	}
	defer rows.Close()

	var out []DeckSummary
	for rows.Next() {
		var s DeckSummary
		if err := rows.Scan(&s.ArchetypeName, &s.DisplayCardID, &s.PrimaryColor, &s.TimesPlayed, &s.FirstPlaces); err != nil {
			return nil, fmt.Errorf("scan deck summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ArchetypeCount is one archetype's total entries.
type ArchetypeCount struct {
	ArchetypeName string
	DisplayCardID string
	Entries       int
}

// ArchetypeCounts returns entry counts per known archetype, most played
// first.
func (r *Repository) ArchetypeCounts(ctx context.Context, f model.Filter) ([]ArchetypeCount, error) {
	clause, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT da.archetype_name, COALESCE(da.display_card_id, ''), COUNT(r.result_id)
		FROM deck_archetypes da
		JOIN results r ON da.archetype_id = r.archetype_id
		JOIN tournaments t ON r.tournament_id = t.tournament_id
		WHERE da.archetype_name != 'UNKNOWN'`+clause+`
		GROUP BY da.archetype_id, da.archetype_name, da.display_card_id
		ORDER BY COUNT(r.result_id) DESC, da.archetype_name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query archetype counts: %w", err)
	}
	defer rows.Close()

	var out []ArchetypeCount
	for rows.Next() {
		var c ArchetypeCount
		if err := rows.Scan(&c.ArchetypeName, &c.DisplayCardID, &c.Entries); err != nil {
			return nil, fmt.Errorf("scan archetype count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecentTournament is one tournament row for the recent list.
type RecentTournament struct {
	TournamentID int64
	StoreID      int64
	StoreName    string
	Date         time.Time
	Players      int
	Winner       string
}

// RecentTournaments returns the latest tournaments with store and
// winner names.
func (r *Repository) RecentTournaments(ctx context.Context, f model.Filter, limit int) ([]RecentTournament, error) {
	clause, args := filterClause(f)
	args = append(args, limit)
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.tournament_id, s.store_id, s.name, t.event_date,
		       COALESCE(t.player_count, 0),
		       COALESCE(MIN(p.display_name), '')
		FROM tournaments t
		JOIN stores s ON t.store_id = s.store_id
		LEFT JOIN results r ON t.tournament_id = r.tournament_id AND r.placement = 1
		LEFT JOIN players p ON r.player_id = p.player_id
		WHERE 1=1`+clause+`
		GROUP BY t.tournament_id, s.store_id, s.name, t.event_date, t.player_count
		ORDER BY t.event_date DESC, t.tournament_id DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent tournaments: %w", err)
	}
	defer rows.Close()

	var out []RecentTournament
	for rows.Next() {
		var rt RecentTournament
		var date string
		if err := rows.Scan(&rt.TournamentID, &rt.StoreID, &rt.StoreName, &date, &rt.Players, &rt.Winner); err != nil {
			return nil, fmt.Errorf("scan recent tournament: %w", err)
		}
		if rt.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// ConversionRow is one archetype's entries and top-3 finishes.
type ConversionRow struct {
	Name    string
	Color   string
	Entries int
	Top3    int
}

// ConversionRows returns the archetypes converting entries into top-3
// finishes best, minimum two entries, top five.
func (r *Repository) ConversionRows(ctx context.Context, f model.Filter) ([]ConversionRow, error) {
	clause, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT da.archetype_name, da.primary_color,
		       COUNT(r.result_id),
		       COUNT(CASE WHEN r.placement <= 3 THEN 1 END)
		FROM results r
		JOIN deck_archetypes da ON r.archetype_id = da.archetype_id
		JOIN tournaments t ON r.tournament_id = t.tournament_id
		WHERE da.archetype_name != 'UNKNOWN'`+clause+`
		GROUP BY da.archetype_id, da.archetype_name, da.primary_color
		HAVING COUNT(r.result_id) >= 2
		ORDER BY CAST(COUNT(CASE WHEN r.placement <= 3 THEN 1 END) AS REAL) / COUNT(r.result_id) DESC
		LIMIT 5
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query conversion rows: %w", err)
	}
	defer rows.Close()

	var out []ConversionRow
	for rows.Next() {
		var c ConversionRow
		if err := rows.Scan(&c.Name, &c.Color, &c.Entries, &c.Top3); err != nil {
			return nil, fmt.Errorf("scan conversion row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ColorCount is one primary color's entry count.
type ColorCount struct {
	Color string
	Count int
}

// ColorDistribution returns entry counts grouped by primary color;
// archetypes with a secondary color group under Multi.
func (r *Repository) ColorDistribution(ctx context.Context, f model.Filter) ([]ColorCount, error) {
	clause, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT CASE WHEN da.secondary_color IS NOT NULL AND da.secondary_color != ''
		            THEN 'Multi' ELSE da.primary_color END AS color,
		       COUNT(r.result_id)
		FROM results r
		JOIN deck_archetypes da ON r.archetype_id = da.archetype_id
		JOIN tournaments t ON r.tournament_id = t.tournament_id
		WHERE da.archetype_name != 'UNKNOWN'`+clause+`
		GROUP BY color
		ORDER BY COUNT(r.result_id) DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query color distribution: %w", err)
	}
	defer rows.Close()

	var out []ColorCount
	for rows.Next() {
		var c ColorCount
		if err := rows.Scan(&c.Color, &c.Count); err != nil {
			return nil, fmt.Errorf("scan color count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AttendancePoint is one event date's tournament count and average
// attendance.
type AttendancePoint struct {
	Date        time.Time
	Tournaments int
	AvgPlayers  float64
}

// AttendanceByDate returns per-date tournament counts and average
// player counts, ascending by date.
func (r *Repository) AttendanceByDate(ctx context.Context, f model.Filter) ([]AttendancePoint, error) {
	clause, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.event_date, COUNT(*), COALESCE(AVG(t.player_count), 0)
		FROM tournaments t
		WHERE 1=1`+clause+`
		GROUP BY t.event_date
		ORDER BY t.event_date
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	var out []AttendancePoint
	for rows.Next() {
		var p AttendancePoint
		var date string
		if err := rows.Scan(&date, &p.Tournaments, &p.AvgPlayers); err != nil {
			return nil, fmt.Errorf("scan attendance point: %w", err)
		}
		if p.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Formats returns active formats ordered for display.
func (r *Repository) Formats(ctx context.Context) ([]model.Format, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT format_id, display_name
		FROM formats
		WHERE is_active = 1
		ORDER BY sort_order ASC, release_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query formats: %w", err)
	}
	defer rows.Close()

	var out []model.Format
	for rows.Next() {
		var f model.Format
		if err := rows.Scan(&f.ID, &f.DisplayName); err != nil {
			return nil, fmt.Errorf("scan format: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CountTournaments returns the filtered tournament count.
func (r *Repository) CountTournaments(ctx context.Context, f model.Filter) (int, error) {
	clause, args := filterClause(f)
	return r.countQuery(ctx, `SELECT COUNT(*) FROM tournaments t WHERE 1=1`+clause, args...)
}

// CountPlayers returns the count of distinct players with results in
// the filtered tournament set.
func (r *Repository) CountPlayers(ctx context.Context, f model.Filter) (int, error) {
	clause, args := filterClause(f)
	return r.countQuery(ctx, `
		SELECT COUNT(DISTINCT r.player_id)
		FROM results r
		JOIN tournaments t ON r.tournament_id = t.tournament_id
		WHERE 1=1`+clause, args...)
}

// CountActiveStores returns the count of active stores.
func (r *Repository) CountActiveStores(ctx context.Context) (int, error) {
	return r.countQuery(ctx, `SELECT COUNT(*) FROM stores WHERE is_active = 1`)
}

// CountActiveArchetypes returns the count of active archetypes.
func (r *Repository) CountActiveArchetypes(ctx context.Context) (int, error) {
	return r.countQuery(ctx, `SELECT COUNT(*) FROM deck_archetypes WHERE is_active = 1`)
}

func (r *Repository) countQuery(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("count query: %w", err)
	}
	return n, nil
}
