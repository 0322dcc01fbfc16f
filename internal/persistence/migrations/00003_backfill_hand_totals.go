package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
)

func init() {
	goose.AddMigrationContext(Up00003, Down00003)
}

// Up00003 adds the denormalised player count and pot total used by list
// queries. Pot amounts are decimal text, so the total is summed here rather
// than with SQLite's floating point SUM.
func Up00003(ctx context.Context, tx *sql.Tx) error {
	for _, q := range []string{
		`ALTER TABLE hands ADD COLUMN num_players INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE hands ADD COLUMN total_pot TEXT NOT NULL DEFAULT '0'`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("add hand total columns: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE hands
		SET num_players = (
			SELECT COUNT(*) FROM hand_players WHERE hand_players.game_number = hands.game_number
		)`); err != nil {
		return fmt.Errorf("backfill num_players: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT game_number, amount FROM hand_pots ORDER BY game_number`)
	if err != nil {
		return fmt.Errorf("query pots: %w", err)
	}
	totals := make(map[string]decimal.Decimal)
	var order []string
	for rows.Next() {
		var key string
		var amount decimal.Decimal
		if err := rows.Scan(&key, &amount); err != nil {
			rows.Close()
			return fmt.Errorf("scan pot: %w", err)
		}
		if _, ok := totals[key]; !ok {
			order = append(order, key)
		}
		totals[key] = totals[key].Add(amount)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, key := range order {
		if _, err := tx.ExecContext(ctx, `UPDATE hands SET total_pot = ? WHERE game_number = ?`,
			totals[key].StringFixed(2), key); err != nil {
			return fmt.Errorf("backfill total_pot for %s: %w", key, err)
		}
	}
	return nil
}

func Down00003(ctx context.Context, tx *sql.Tx) error {
	for _, col := range []string{"total_pot", "num_players"} {
		if _, err := tx.ExecContext(ctx, `ALTER TABLE hands DROP COLUMN `+col); err != nil {
			return fmt.Errorf("drop %s: %w", col, err)
		}
	}
	return nil
}
