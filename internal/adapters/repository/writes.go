package repository

import (
	"context"
	"fmt"

	"github.com/digilab/metalab/internal/domain/model"
)

// Write methods used by the seeder and tests. The analytics engine
// itself never writes.

// InsertStore adds one store row.
func (r *Repository) InsertStore(ctx context.Context, s model.Store) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stores (store_id, name, city, state, is_active, is_online)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.City, s.State, boolInt(s.IsActive), boolInt(s.IsOnline))
	if err != nil {
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

// InsertPlayer adds one player row.
func (r *Repository) InsertPlayer(ctx context.Context, p model.Player) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (player_id, display_name, is_active)
		VALUES (?, ?, ?)
	`, p.ID, p.DisplayName, boolInt(p.IsActive))
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// InsertFormat adds one format row.
func (r *Repository) InsertFormat(ctx context.Context, f model.Format) error {
	var release any
	if !f.ReleaseDate.IsZero() {
		release = f.ReleaseDate.Format(dateLayout)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO formats (format_id, set_name, display_name, release_date, sort_order, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.ID, f.SetName, f.DisplayName, release, f.SortOrder, boolInt(f.IsActive))
	if err != nil {
		return fmt.Errorf("insert format: %w", err)
	}
	return nil
}

// InsertArchetype adds one archetype row.
func (r *Repository) InsertArchetype(ctx context.Context, a model.Archetype) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deck_archetypes (archetype_id, archetype_name, display_card_id, primary_color, secondary_color, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.Name, nullStr(a.DisplayCardID), a.PrimaryColor, nullStr(a.SecondaryColor), boolInt(a.IsActive))
	if err != nil {
		return fmt.Errorf("insert archetype: %w", err)
	}
	return nil
}

// InsertTournament adds one tournament row. Zero PlayerCount and Rounds
// are stored as NULL.
func (r *Repository) InsertTournament(ctx context.Context, t model.Tournament) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tournaments (tournament_id, store_id, event_date, event_type, format, player_count, rounds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.StoreID, t.EventDate.Format(dateLayout), t.EventType, nullStr(t.Format), nullInt(t.PlayerCount), nullInt(t.Rounds))
	if err != nil {
		return fmt.Errorf("insert tournament: %w", err)
	}
	return nil
}

// InsertResult adds one result row. Zero Placement and ArchetypeID are
// stored as NULL.
func (r *Repository) InsertResult(ctx context.Context, res model.Result) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO results (tournament_id, player_id, archetype_id, placement, wins, losses, ties)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, res.TournamentID, res.PlayerID, nullInt64(res.ArchetypeID), nullInt(res.Placement), res.Wins, res.Losses, res.Ties)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullInt64(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
