package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rocketscienceinc/fourrow-backend/internal/entity"
)

type sqliteTally struct {
	conn *sql.DB
}

// NewSQLiteTallyRepository expects the tally table created by storage.Storage.Init.
func NewSQLiteTallyRepository(conn *sql.DB) TallyRepository {
	return &sqliteTally{
		conn: conn,
	}
}

func (that *sqliteTally) IncrementWins(ctx context.Context, player entity.Mark) error {
	if !player.IsPlayer() {
		return fmt.Errorf("%w: %q", ErrNotAPlayer, player)
	}

	query := `INSERT INTO tally (player, wins) VALUES (?, 1)
		ON CONFLICT(player) DO UPDATE SET wins = wins + 1`

	if _, err := that.conn.ExecContext(ctx, query, string(player)); err != nil {
		return fmt.Errorf("can't increment wins: %w", err)
	}

	return nil
}

func (that *sqliteTally) Get(ctx context.Context) (*entity.Tally, error) {
	query := `SELECT player, wins FROM tally`

	rows, err := that.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("can't get tally: %w", err)
	}
	defer rows.Close()

	var tally entity.Tally
	for rows.Next() {
		var (
			player string
			wins   int
		)
		if err = rows.Scan(&player, &wins); err != nil {
			return nil, fmt.Errorf("can't scan tally row: %w", err)
		}

		switch entity.Mark(player) {
		case entity.PlayerX:
			tally.X = wins
		case entity.PlayerO:
			tally.O = wins
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read tally: %w", err)
	}

	return &tally, nil
}

func (that *sqliteTally) Reset(ctx context.Context) error {
	query := `DELETE FROM tally`

	if _, err := that.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("can't reset tally: %w", err)
	}

	return nil
}
