package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/AkatukiSora/pokernow-ohh/internal/parser"
)

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db    *sql.DB
	clock quartz.Clock
}

// NewSQLiteRepository opens (or creates) the database at dbPath and brings its
// schema up to date. A nil clock uses wall time.
func NewSQLiteRepository(dbPath string, clock quartz.Clock) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &SQLiteRepository{db: db, clock: clock}, nil
}

func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) UpsertHands(ctx context.Context, hands []PersistedHand) (UpsertResult, error) {
	var res UpsertResult
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = r.upsertHandsTx(ctx, tx, hands)
		return err
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return res, nil
}

func (r *SQLiteRepository) upsertHandsTx(ctx context.Context, tx *sql.Tx, hands []PersistedHand) (UpsertResult, error) {
	res := UpsertResult{}
	now := formatTime(r.clock.Now())

	for _, ph := range hands {
		h := ph.Hand
		if h == nil || h.Key() == "" {
			res.Skipped++
			continue
		}
		key := h.Key()

		exists, err := rowExists(ctx, tx, `SELECT 1 FROM hands WHERE game_number = ? LIMIT 1`, key)
		if err != nil {
			return UpsertResult{}, err
		}

		var betCap any
		if h.BetLimit.Cap != nil {
			betCap = h.BetLimit.Cap.String()
		}
		var hero any
		if h.HeroPlayerID != nil {
			hero = *h.HeroPlayerID
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO hands(
			game_number, hand_number, table_name, start_time, game_type, bet_type, bet_cap,
			table_size, currency, dealer_seat, small_blind, big_blind, ante, hero_player_id,
			flags, unprocessed, degraded, contributed, num_players, total_pot, updated_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_number) DO UPDATE SET
			hand_number=excluded.hand_number,
			table_name=excluded.table_name,
			start_time=excluded.start_time,
			game_type=excluded.game_type,
			bet_type=excluded.bet_type,
			bet_cap=excluded.bet_cap,
			table_size=excluded.table_size,
			currency=excluded.currency,
			dealer_seat=excluded.dealer_seat,
			small_blind=excluded.small_blind,
			big_blind=excluded.big_blind,
			ante=excluded.ante,
			hero_player_id=excluded.hero_player_id,
			flags=excluded.flags,
			unprocessed=excluded.unprocessed,
			degraded=excluded.degraded,
			contributed=excluded.contributed,
			num_players=excluded.num_players,
			total_pot=excluded.total_pot,
			updated_at=excluded.updated_at`,
			key,
			h.HandNumber,
			h.TableName,
			formatTime(h.StartTime),
			string(h.GameType),
			string(h.BetLimit.Type),
			betCap,
			h.TableSize,
			h.Currency,
			h.DealerSeat,
			h.SmallBlind.String(),
			h.BigBlind.String(),
			h.Ante.String(),
			hero,
			joinFlags(h.Flags),
			h.Unprocessed,
			boolToInt(h.Degraded),
			h.Contributed.String(),
			len(h.Players),
			h.TotalPot().StringFixed(2),
			now,
		); err != nil {
			return UpsertResult{}, fmt.Errorf("upsert hand %s: %w", key, err)
		}

		if err := clearHandChildrenTx(ctx, tx, key); err != nil {
			return UpsertResult{}, err
		}
		if err := insertHandChildrenTx(ctx, tx, key, h); err != nil {
			return UpsertResult{}, err
		}
		if ph.Source.SourcePath != "" {
			if _, err := tx.ExecContext(ctx, `INSERT INTO hand_sources(game_number, source_path, first_line, last_line, updated_at)
				VALUES(?, ?, ?, ?, ?)
				ON CONFLICT(game_number) DO UPDATE SET
					source_path=excluded.source_path,
					first_line=excluded.first_line,
					last_line=excluded.last_line,
					updated_at=excluded.updated_at`,
				key, ph.Source.SourcePath, ph.Source.FirstLine, ph.Source.LastLine, now); err != nil {
				return UpsertResult{}, fmt.Errorf("upsert source for %s: %w", key, err)
			}
		}

		if exists {
			res.Updated++
		} else {
			res.Inserted++
		}
	}
	return res, nil
}

func insertHandChildrenTx(ctx context.Context, tx *sql.Tx, key string, h *parser.Hand) error {
	for _, p := range h.Players {
		if _, err := tx.ExecContext(ctx, `INSERT INTO hand_players(
			game_number, player_id, seat, name, display, device, starting_stack, bounty
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			key, p.ID, p.Seat, p.Name, p.Display, p.Device, p.StartingStack.String(), p.Bounty.String()); err != nil {
			return fmt.Errorf("insert player %d of %s: %w", p.ID, key, err)
		}
	}

	for _, rd := range h.Rounds {
		if _, err := tx.ExecContext(ctx, `INSERT INTO hand_rounds(game_number, round_id, street, cards) VALUES(?, ?, ?, ?)`,
			key, rd.ID, int(rd.Street), joinCards(rd.Cards)); err != nil {
			return fmt.Errorf("insert round %d of %s: %w", rd.ID, key, err)
		}
		for _, a := range rd.Actions {
			if _, err := tx.ExecContext(ctx, `INSERT INTO hand_actions(
				game_number, round_id, action_number, player_id, kind, amount, all_in, cards
			) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
				key, rd.ID, a.Number, a.PlayerID, int(a.Kind), a.Amount.String(), boolToInt(a.AllIn), joinCards(a.Cards)); err != nil {
				return fmt.Errorf("insert action %d of %s: %w", a.Number, key, err)
			}
		}
	}

	for _, pot := range h.Pots {
		if _, err := tx.ExecContext(ctx, `INSERT INTO hand_pots(game_number, pot_number, amount, rake) VALUES(?, ?, ?, ?)`,
			key, pot.Number, pot.Amount.String(), pot.Rake.String()); err != nil {
			return fmt.Errorf("insert pot %d of %s: %w", pot.Number, key, err)
		}
		for i, w := range pot.Wins {
			if _, err := tx.ExecContext(ctx, `INSERT INTO hand_pot_wins(
				game_number, pot_number, win_index, player_id, amount, rake
			) VALUES(?, ?, ?, ?, ?, ?)`,
				key, pot.Number, i, w.PlayerID, w.Amount.String(), w.Rake.String()); err != nil {
				return fmt.Errorf("insert win in pot %d of %s: %w", pot.Number, key, err)
			}
		}
	}

	for i, rf := range h.Refunds {
		if _, err := tx.ExecContext(ctx, `INSERT INTO hand_refunds(game_number, refund_index, player_id, amount) VALUES(?, ?, ?, ?)`,
			key, i, rf.PlayerID, rf.Amount.String()); err != nil {
			return fmt.Errorf("insert refund of %s: %w", key, err)
		}
	}

	for i, an := range h.Anomalies {
		if _, err := tx.ExecContext(ctx, `INSERT INTO hand_anomalies(game_number, anomaly_index, code, severity, detail) VALUES(?, ?, ?, ?, ?)`,
			key, i, an.Code, an.Severity, an.Detail); err != nil {
			return fmt.Errorf("insert anomaly of %s: %w", key, err)
		}
	}
	return nil
}

func clearHandChildrenTx(ctx context.Context, tx *sql.Tx, key string) error {
	for _, table := range []string{"hand_players", "hand_rounds", "hand_actions", "hand_pots", "hand_pot_wins", "hand_refunds", "hand_anomalies"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE game_number = ?`, key); err != nil {
			return fmt.Errorf("clear %s for %s: %w", table, key, err)
		}
	}
	return nil
}

const handColumns = `game_number, hand_number, table_name, start_time, game_type, bet_type, bet_cap,
	table_size, currency, dealer_seat, small_blind, big_blind, ante, hero_player_id,
	flags, unprocessed, degraded, contributed`

func (r *SQLiteRepository) ListHands(ctx context.Context, f HandFilter) ([]*parser.Hand, error) {
	where, args := buildHandsFilterWhere(f)
	q := `SELECT ` + handColumns + ` FROM hands` + where + ` ORDER BY start_time ASC, game_number ASC`
	if f.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	} else if f.Offset > 0 {
		q += ` LIMIT -1 OFFSET ?`
		args = append(args, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list hands: %w", err)
	}
	defer rows.Close()

	var hands []*parser.Hand
	byKey := make(map[string]*parser.Hand)
	var keys []string
	for rows.Next() {
		h, err := scanHand(rows)
		if err != nil {
			return nil, err
		}
		hands = append(hands, h)
		byKey[h.GameNumber] = h
		keys = append(keys, h.GameNumber)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.loadAllHandChildren(ctx, keys, byKey); err != nil {
		return nil, err
	}
	return hands, nil
}

func (r *SQLiteRepository) GetHand(ctx context.Context, key string) (*parser.Hand, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+handColumns+` FROM hands WHERE game_number = ?`, key)
	h, err := scanHand(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadAllHandChildren(ctx, []string{key}, map[string]*parser.Hand{key: h}); err != nil {
		return nil, err
	}
	return h, nil
}

func (r *SQLiteRepository) CountHands(ctx context.Context, f HandFilter) (int, error) {
	where, args := buildHandsFilterWhere(f)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hands`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count hands: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) ListTables(ctx context.Context) ([]TableSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT h.table_name, COUNT(*), MAX(h.start_time),
		(SELECT h2.game_number FROM hands h2 WHERE h2.table_name = h.table_name
			ORDER BY h2.start_time DESC, h2.game_number DESC LIMIT 1)
		FROM hands h
		GROUP BY h.table_name
		ORDER BY h.table_name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var out []TableSummary
	for rows.Next() {
		var ts TableSummary
		var last string
		if err := rows.Scan(&ts.Table, &ts.Hands, &last, &ts.LastGameNumber); err != nil {
			return nil, err
		}
		if ts.LastStart, err = parseTime(last); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHand(s rowScanner) (*parser.Hand, error) {
	var (
		h                       parser.Hand
		start, game, bet, flags string
		betCap                  decimal.NullDecimal
		hero                    sql.NullInt64
		degraded                int
	)
	if err := s.Scan(&h.GameNumber, &h.HandNumber, &h.TableName, &start, &game, &bet, &betCap,
		&h.TableSize, &h.Currency, &h.DealerSeat, &h.SmallBlind, &h.BigBlind, &h.Ante, &hero,
		&flags, &h.Unprocessed, &degraded, &h.Contributed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan hand: %w", err)
	}
	var err error
	if h.StartTime, err = parseTime(start); err != nil {
		return nil, err
	}
	h.GameType = parser.GameType(game)
	h.BetLimit.Type = parser.BetType(bet)
	if betCap.Valid {
		c := betCap.Decimal
		h.BetLimit.Cap = &c
	}
	if hero.Valid {
		id := int(hero.Int64)
		h.HeroPlayerID = &id
	}
	h.Flags = splitFlags(flags)
	h.Degraded = degraded != 0
	return &h, nil
}

func inClause(keys []string) (string, []any) {
	placeholders := make([]byte, 0, len(keys)*2)
	args := make([]any, len(keys))
	for i, k := range keys {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = k
	}
	return "(" + string(placeholders) + ")", args
}

// sqliteMaxVars is the default SQLITE_MAX_VARIABLE_NUMBER.
const sqliteMaxVars = 999

// loadAllHandChildren fills the child rows (players through anomalies) of
// the given hands with one query per child table, chunked below the
// variable limit.
func (r *SQLiteRepository) loadAllHandChildren(ctx context.Context, keys []string, byKey map[string]*parser.Hand) error {
	for len(keys) > 0 {
		chunk := keys
		if len(chunk) > sqliteMaxVars {
			chunk = keys[:sqliteMaxVars]
		}
		keys = keys[len(chunk):]
		if err := r.loadHandChildrenChunk(ctx, chunk, byKey); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) loadHandChildrenChunk(ctx context.Context, keys []string, byKey map[string]*parser.Hand) error {
	in, args := inClause(keys)

	err := r.eachRow(ctx, `SELECT game_number, player_id, seat, name, display, device, starting_stack, bounty
		FROM hand_players WHERE game_number IN `+in+` ORDER BY game_number, player_id`, args,
		func(rows *sql.Rows) error {
			var key string
			var p parser.Player
			if err := rows.Scan(&key, &p.ID, &p.Seat, &p.Name, &p.Display, &p.Device, &p.StartingStack, &p.Bounty); err != nil {
				return fmt.Errorf("scan player: %w", err)
			}
			if h := byKey[key]; h != nil {
				h.Players = append(h.Players, p)
			}
			return nil
		})
	if err != nil {
		return err
	}

	err = r.eachRow(ctx, `SELECT game_number, round_id, street, cards
		FROM hand_rounds WHERE game_number IN `+in+` ORDER BY game_number, round_id`, args,
		func(rows *sql.Rows) error {
			var key, cards string
			var rd parser.Round
			var street int
			if err := rows.Scan(&key, &rd.ID, &street, &cards); err != nil {
				return fmt.Errorf("scan round: %w", err)
			}
			rd.Street = parser.Street(street)
			rd.Cards = splitCards(cards)
			if h := byKey[key]; h != nil {
				h.Rounds = append(h.Rounds, rd)
			}
			return nil
		})
	if err != nil {
		return err
	}

	err = r.eachRow(ctx, `SELECT game_number, round_id, action_number, player_id, kind, amount, all_in, cards
		FROM hand_actions WHERE game_number IN `+in+` ORDER BY game_number, round_id, action_number`, args,
		func(rows *sql.Rows) error {
			var key, cards string
			var roundID, kind, allIn int
			var a parser.Action
			if err := rows.Scan(&key, &roundID, &a.Number, &a.PlayerID, &kind, &a.Amount, &allIn, &cards); err != nil {
				return fmt.Errorf("scan action: %w", err)
			}
			a.Kind = parser.ActionKind(kind)
			a.AllIn = allIn != 0
			a.Cards = splitCards(cards)
			h := byKey[key]
			if h == nil {
				return nil
			}
			for i := range h.Rounds {
				if h.Rounds[i].ID == roundID {
					h.Rounds[i].Actions = append(h.Rounds[i].Actions, a)
					return nil
				}
			}
			return fmt.Errorf("action %d of %s references missing round %d", a.Number, key, roundID)
		})
	if err != nil {
		return err
	}

	err = r.eachRow(ctx, `SELECT game_number, pot_number, amount, rake
		FROM hand_pots WHERE game_number IN `+in+` ORDER BY game_number, pot_number`, args,
		func(rows *sql.Rows) error {
			var key string
			var pot parser.Pot
			if err := rows.Scan(&key, &pot.Number, &pot.Amount, &pot.Rake); err != nil {
				return fmt.Errorf("scan pot: %w", err)
			}
			if h := byKey[key]; h != nil {
				h.Pots = append(h.Pots, pot)
			}
			return nil
		})
	if err != nil {
		return err
	}

	err = r.eachRow(ctx, `SELECT game_number, pot_number, player_id, amount, rake
		FROM hand_pot_wins WHERE game_number IN `+in+` ORDER BY game_number, pot_number, win_index`, args,
		func(rows *sql.Rows) error {
			var key string
			var potNumber int
			var w parser.PlayerWin
			if err := rows.Scan(&key, &potNumber, &w.PlayerID, &w.Amount, &w.Rake); err != nil {
				return fmt.Errorf("scan win: %w", err)
			}
			h := byKey[key]
			if h == nil {
				return nil
			}
			for i := range h.Pots {
				if h.Pots[i].Number == potNumber {
					h.Pots[i].Wins = append(h.Pots[i].Wins, w)
					return nil
				}
			}
			return fmt.Errorf("win in %s references missing pot %d", key, potNumber)
		})
	if err != nil {
		return err
	}

	err = r.eachRow(ctx, `SELECT game_number, player_id, amount
		FROM hand_refunds WHERE game_number IN `+in+` ORDER BY game_number, refund_index`, args,
		func(rows *sql.Rows) error {
			var key string
			var rf parser.Refund
			if err := rows.Scan(&key, &rf.PlayerID, &rf.Amount); err != nil {
				return fmt.Errorf("scan refund: %w", err)
			}
			if h := byKey[key]; h != nil {
				h.Refunds = append(h.Refunds, rf)
			}
			return nil
		})
	if err != nil {
		return err
	}

	return r.eachRow(ctx, `SELECT game_number, code, severity, detail
		FROM hand_anomalies WHERE game_number IN `+in+` ORDER BY game_number, anomaly_index`, args,
		func(rows *sql.Rows) error {
			var key string
			var an parser.HandAnomaly
			if err := rows.Scan(&key, &an.Code, &an.Severity, &an.Detail); err != nil {
				return fmt.Errorf("scan anomaly: %w", err)
			}
			if h := byKey[key]; h != nil {
				h.Anomalies = append(h.Anomalies, an)
			}
			return nil
		})
}

func (r *SQLiteRepository) eachRow(ctx context.Context, q string, args []any, fn func(*sql.Rows) error) error {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *SQLiteRepository) GetCursor(ctx context.Context, sourcePath string) (*ImportCursor, error) {
	var c ImportCursor
	var mod, updated string
	err := r.db.QueryRowContext(ctx, `SELECT source_path, size, mod_time, hands, last_game_number, updated_at
		FROM import_cursors WHERE source_path = ?`, sourcePath).
		Scan(&c.SourcePath, &c.Size, &mod, &c.Hands, &c.LastGameNumber, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cursor: %w", err)
	}
	if c.ModTime, err = parseTime(mod); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteRepository) SaveCursor(ctx context.Context, c ImportCursor) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return r.saveCursorTx(ctx, tx, c)
	})
}

// SaveImportBatch stores the hands of one file together with its cursor so a
// crash never leaves a cursor pointing past hands that were not written.
func (r *SQLiteRepository) SaveImportBatch(ctx context.Context, hands []PersistedHand, c ImportCursor) (UpsertResult, error) {
	var res UpsertResult
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if res, err = r.upsertHandsTx(ctx, tx, hands); err != nil {
			return err
		}
		return r.saveCursorTx(ctx, tx, c)
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return res, nil
}

func (r *SQLiteRepository) saveCursorTx(ctx context.Context, tx *sql.Tx, c ImportCursor) error {
	if c.SourcePath == "" {
		return errNoCursorPath
	}
	updated := c.UpdatedAt
	if updated.IsZero() {
		updated = r.clock.Now()
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO import_cursors(
		source_path, size, mod_time, hands, last_game_number, updated_at
	) VALUES(?, ?, ?, ?, ?, ?)
	ON CONFLICT(source_path) DO UPDATE SET
		size=excluded.size,
		mod_time=excluded.mod_time,
		hands=excluded.hands,
		last_game_number=excluded.last_game_number,
		updated_at=excluded.updated_at`,
		c.SourcePath, c.Size, formatTime(c.ModTime), c.Hands, c.LastGameNumber, formatTime(updated)); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func buildHandsFilterWhere(f HandFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Table != "" {
		conds = append(conds, "table_name = ?")
		args = append(args, f.Table)
	}
	if f.FromTime != nil {
		conds = append(conds, "start_time >= ?")
		args = append(args, formatTime(*f.FromTime))
	}
	if f.ToTime != nil {
		conds = append(conds, "start_time <= ?")
		args = append(args, formatTime(*f.ToTime))
	}
	if f.Player != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM hand_players p WHERE p.game_number = hands.game_number AND p.name = ?)")
		args = append(args, f.Player)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func joinCards(cards []string) string {
	return strings.Join(cards, " ")
}

func splitCards(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

func joinFlags(flags []parser.Flag) string {
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = string(f)
	}
	return strings.Join(parts, ",")
}

func splitFlags(s string) []parser.Flag {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]parser.Flag, len(parts))
	for i, p := range parts {
		out[i] = parser.Flag(p)
	}
	return out
}
