// Package database records finished-match summaries in Postgres. Only
// results are stored; live room state never touches the database and rooms
// do not survive a process restart.
package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchResult is the summary row written when a game ends.
type MatchResult struct {
	RoomCode   string
	WinnerSeat int
	WinnerName string
	Players    []string
	FinishedAt time.Time
}

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against dsn and verifies the connection.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the match_results table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS match_results (
			id           BIGSERIAL PRIMARY KEY,
			room_code    TEXT        NOT NULL,
			winner_seat  INT         NOT NULL,
			winner_name  TEXT        NOT NULL,
			players      TEXT[]      NOT NULL,
			finished_at  TIMESTAMPTZ NOT NULL
		)`)
	return err
}

// InsertMatchResult writes one finished-match row.
func (s *Store) InsertMatchResult(ctx context.Context, res MatchResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO match_results (room_code, winner_seat, winner_name, players, finished_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		res.RoomCode, res.WinnerSeat, res.WinnerName, res.Players, res.FinishedAt)
	return err
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}
