package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// PostgresRepository archives finished games in Postgres. The table is
// created on first use so a fresh database works out of the box.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(databaseURL string) (*PostgresRepository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresRepository{db: db}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS finished_games (
		id TEXT PRIMARY KEY,
		game_id TEXT NOT NULL,
		username TEXT NOT NULL,
		my_color TEXT NOT NULL,
		result TEXT NOT NULL,
		reason TEXT NOT NULL,
		white_player TEXT NOT NULL,
		black_player TEXT NOT NULL,
		move_count INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		move_history TEXT NOT NULL,
		ended_at TIMESTAMPTZ NOT NULL
	)`)
	return err
}

func (r *PostgresRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts one finished game keyed by record id.
func (r *PostgresRepository) SaveResult(ctx context.Context, rec Record) error {
	movesRaw, _ := json.Marshal(rec.MoveHistory)
	q := `INSERT INTO finished_games (
	    id, game_id, username, my_color, result, reason,
	    white_player, black_player, move_count, duration_seconds,
	    move_history, ended_at
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
	  ) ON CONFLICT (id) DO UPDATE SET
	    result=EXCLUDED.result,
	    reason=EXCLUDED.reason,
	    move_count=EXCLUDED.move_count,
	    duration_seconds=EXCLUDED.duration_seconds,
	    move_history=EXCLUDED.move_history,
	    ended_at=EXCLUDED.ended_at`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.GameID, rec.Username, rec.MyColor, rec.Result, rec.Reason,
		rec.WhitePlayer, rec.BlackPlayer, rec.MoveCount, rec.DurationSeconds,
		string(movesRaw), rec.EndedAt,
	)
	return err
}

// Recent returns up to limit records, newest first.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
	    id, game_id, username, my_color, result, reason,
	    white_player, black_player, move_count, duration_seconds,
	    move_history, ended_at
	  FROM finished_games ORDER BY ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var movesRaw string
		if err := rows.Scan(
			&rec.ID, &rec.GameID, &rec.Username, &rec.MyColor, &rec.Result, &rec.Reason,
			&rec.WhitePlayer, &rec.BlackPlayer, &rec.MoveCount, &rec.DurationSeconds,
			&movesRaw, &rec.EndedAt,
		); err != nil {
			return nil, err
		}
		if movesRaw != "" {
			_ = json.Unmarshal([]byte(movesRaw), &rec.MoveHistory)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
