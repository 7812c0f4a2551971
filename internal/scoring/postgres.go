package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tashiscool/alovoa-sub007/internal/pair"
)

// PostgresCache is the pgx implementation of CacheStore, one row per
// canonical pair in compatibility_scores.
type PostgresCache struct {
	pool *pgxpool.Pool
}

// NewPostgresCache returns a CacheStore backed by the given pool.
func NewPostgresCache(pool *pgxpool.Pool) *PostgresCache {
	return &PostgresCache{pool: pool}
}

func (c *PostgresCache) Get(ctx context.Context, key pair.Key) (*Result, error) {
	var (
		r             Result
		dimensionJSON []byte
		conflictJSON  []byte
	)
	err := c.pool.QueryRow(ctx,
		`SELECT overall_score, enemy_score, dimension_scores, conflicts, stale, calculated_at
		 FROM compatibility_scores
		 WHERE user_lo = $1 AND user_hi = $2`,
		key.Lo, key.Hi,
	).Scan(&r.OverallScore, &r.EnemyScore, &dimensionJSON, &conflictJSON, &r.Stale, &r.CalculatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoResult
		}
		return nil, fmt.Errorf("compatibility_scores select: %w", err)
	}

	r.Pair = key
	if err := json.Unmarshal(dimensionJSON, &r.Dimensions); err != nil {
		return nil, fmt.Errorf("decode dimension scores: %w", err)
	}
	if err := json.Unmarshal(conflictJSON, &r.Conflicts); err != nil {
		return nil, fmt.Errorf("decode conflicts: %w", err)
	}
	return &r, nil
}

func (c *PostgresCache) Upsert(ctx context.Context, r Result) error {
	dimensionJSON, err := json.Marshal(r.Dimensions)
	if err != nil {
		return fmt.Errorf("encode dimension scores: %w", err)
	}
	conflicts := r.Conflicts
	if conflicts == nil {
		conflicts = []Conflict{}
	}
	conflictJSON, err := json.Marshal(conflicts)
	if err != nil {
		return fmt.Errorf("encode conflicts: %w", err)
	}

	_, err = c.pool.Exec(ctx,
		`INSERT INTO compatibility_scores
		   (user_lo, user_hi, overall_score, enemy_score, dimension_scores, conflicts, stale, calculated_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, false, $7)
		 ON CONFLICT (user_lo, user_hi) DO UPDATE SET
		   overall_score    = EXCLUDED.overall_score,
		   enemy_score      = EXCLUDED.enemy_score,
		   dimension_scores = EXCLUDED.dimension_scores,
		   conflicts        = EXCLUDED.conflicts,
		   stale            = false,
		   calculated_at    = EXCLUDED.calculated_at`,
		r.Pair.Lo, r.Pair.Hi, r.OverallScore, r.EnemyScore,
		string(dimensionJSON), string(conflictJSON), r.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("compatibility_scores upsert: %w", err)
	}
	return nil
}

func (c *PostgresCache) MarkStale(ctx context.Context, userID int64) (int64, error) {
	tag, err := c.pool.Exec(ctx,
		`UPDATE compatibility_scores
		 SET stale = true
		 WHERE (user_lo = $1 OR user_hi = $1) AND stale = false`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("compatibility_scores mark stale: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PostgresAnswers reads per-user assessment answers. The assessment
// store itself (question bank, response capture) belongs to another
// service; this is a read-only projection of its table.
type PostgresAnswers struct {
	pool *pgxpool.Pool
}

// NewPostgresAnswers returns an AnswerSource backed by the given pool.
func NewPostgresAnswers(pool *pgxpool.Pool) *PostgresAnswers {
	return &PostgresAnswers{pool: pool}
}

func (a *PostgresAnswers) Answers(ctx context.Context, userID int64) ([]Answer, error) {
	rows, err := a.pool.Query(ctx,
		`SELECT question_id, dimension, selected_option, acceptable_options, importance, dealbreaker
		 FROM assessment_answers
		 WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("assessment_answers select: %w", err)
	}
	defer rows.Close()

	answers := make([]Answer, 0)
	for rows.Next() {
		var (
			ans        Answer
			acceptable []int32
		)
		if err := rows.Scan(
			&ans.QuestionID, &ans.Dimension, &ans.Selected,
			&acceptable, &ans.Importance, &ans.Dealbreaker,
		); err != nil {
			return nil, fmt.Errorf("assessment_answers scan: %w", err)
		}
		for _, opt := range acceptable {
			ans.Acceptable = append(ans.Acceptable, int(opt))
		}
		answers = append(answers, ans)
	}
	return answers, rows.Err()
}
