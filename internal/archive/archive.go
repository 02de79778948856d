// Package archive appends settled rounds to Postgres. The archive is an
// optional sink: the game never blocks on it and failures are logged, not
// returned to players.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mcdev12/awantura/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS round_archive (
	id             BIGSERIAL PRIMARY KEY,
	session_id     TEXT        NOT NULL,
	round_id       INT         NOT NULL,
	question_index INT         NOT NULL,
	player_id      TEXT,
	player_name    TEXT,
	answer         TEXT        NOT NULL,
	correct        TEXT        NOT NULL,
	score          INT         NOT NULL,
	accepted       BOOLEAN     NOT NULL,
	timed_out      BOOLEAN     NOT NULL,
	pot_won        INT         NOT NULL,
	carryover_out  INT         NOT NULL,
	settled_at     TIMESTAMPTZ NOT NULL
);`

// Archive records one row per settled round.
type Archive struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// New connects to Postgres and ensures the archive table exists.
func New(ctx context.Context, dsn string, logger zerolog.Logger) (*Archive, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure archive schema: %w", err)
	}
	return &Archive{
		pool:   pool,
		logger: logger.With().Str("component", "archive").Logger(),
	}, nil
}

// RecordRound appends a settled round. Errors are logged and swallowed so a
// dead database cannot stall the game.
func (a *Archive) RecordRound(ctx context.Context, sessionID string, v game.Verdict, settledAt time.Time) {
	const q = `
INSERT INTO round_archive
	(session_id, round_id, question_index, player_id, player_name, answer,
	 correct, score, accepted, timed_out, pot_won, carryover_out, settled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	var playerID string
	if v.PlayerID != uuid.Nil {
		playerID = v.PlayerID.String()
	}
	_, err := a.pool.Exec(ctx, q,
		sessionID, v.RoundID, v.QuestionIndex, playerID, v.PlayerName, v.Answer,
		v.Correct, v.Score, v.Accepted, v.TimedOut, v.PotWon, v.CarryoverOut, settledAt)
	if err != nil {
		a.logger.Error().Err(err).Int("round_id", v.RoundID).Msg("failed to archive round")
		return
	}
	a.logger.Debug().Int("round_id", v.RoundID).Bool("accepted", v.Accepted).Msg("round archived")
}

func (a *Archive) Close() {
	a.pool.Close()
}
