package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tashiscool/alovoa-sub007/internal/pair"
)

// Config holds the injected scoring knobs. The per-dimension weight table
// is configuration, not derived at runtime, and must sum to 1.0.
type Config struct {
	// Weights maps every dimension to its share of the overall score.
	Weights map[Dimension]float64
	// EnemyDimensions is the curated subset of high-conflict dimensions
	// the enemy score is computed from.
	EnemyDimensions []Dimension
	// EnemyDealbreakerBoost multiplies the weight of dealbreaker-flagged
	// questions in the enemy pass.
	EnemyDealbreakerBoost float64
}

// DefaultConfig returns the production weight table and enemy dimensions.
func DefaultConfig() Config {
	return Config{
		Weights: map[Dimension]float64{
			DimensionPersonality:    0.20,
			DimensionValues:         0.20,
			DimensionLifestyle:      0.15,
			DimensionAttraction:     0.15,
			DimensionCircumstantial: 0.10,
			DimensionGrowth:         0.05,
			DimensionPolitical:      0.15,
		},
		EnemyDimensions:       []Dimension{DimensionPolitical, DimensionValues},
		EnemyDealbreakerBoost: 3,
	}
}

// Validate checks the weight table covers every dimension and sums to 1.0.
func (c Config) Validate() error {
	sum := 0.0
	for _, d := range Dimensions {
		w, ok := c.Weights[d]
		if !ok {
			return fmt.Errorf("missing weight for dimension %s", d)
		}
		if w < 0 {
			return fmt.Errorf("negative weight %f for dimension %s", w, d)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("dimension weights sum to %f, want 1.0", sum)
	}
	if c.EnemyDealbreakerBoost < 1 {
		return fmt.Errorf("enemy dealbreaker boost must be >= 1, got %f", c.EnemyDealbreakerBoost)
	}
	return nil
}

// ConflictKind distinguishes how a conflict disqualifies the pair.
type ConflictKind string

const (
	// ConflictDealbreaker is a non-acceptable mismatch on a question
	// flagged dealbreaker by either party.
	ConflictDealbreaker ConflictKind = "DEALBREAKER"
	// ConflictMandatory is a non-acceptable mismatch on a question rated
	// MANDATORY by either party.
	ConflictMandatory ConflictKind = "MANDATORY"
)

// Conflict describes one disqualifying mismatch.
type Conflict struct {
	QuestionID string       `json:"questionId"`
	Dimension  Dimension    `json:"dimension"`
	Kind       ConflictKind `json:"kind"`
}

// DimensionScore is one axis of the result. LowConfidence marks a
// dimension the pair shared no answers on: it scored the neutral 50
// default rather than being measured.
type DimensionScore struct {
	Score           float64 `json:"score"`
	LowConfidence   bool    `json:"lowConfidence"`
	SharedQuestions int     `json:"sharedQuestions"`
}

// Result is the cached compatibility outcome for a user pair.
//
// EnemyScore is a distinct axis from a low overall score: it measures
// active repulsion, so a high overall and a non-trivial enemy score can
// coexist. A non-empty Conflicts set blocks window creation regardless
// of OverallScore.
type Result struct {
	Pair         pair.Key
	OverallScore float64
	EnemyScore   float64
	Dimensions   map[Dimension]DimensionScore
	Conflicts    []Conflict
	Stale        bool
	CalculatedAt time.Time
}

// Eligible reports whether the result clears window creation: no
// conflicts and an overall score at or above the threshold.
func (r Result) Eligible(threshold float64) bool {
	return len(r.Conflicts) == 0 && r.OverallScore >= threshold
}

// Engine is the pure compatibility scorer. It is stateless and safe for
// concurrent use across pairs.
type Engine struct {
	cfg Config
}

// NewEngine returns an Engine with the given config. The config should
// be validated at startup.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// sideAccum tracks one user's importance-weighted satisfaction within a
// dimension (or the enemy pass).
type sideAccum struct {
	total float64
	hit   float64
}

func (s sideAccum) ratio(neutral float64) float64 {
	if s.total == 0 {
		return neutral
	}
	return s.hit / s.total
}

// Score computes the compatibility result for two users' answers. It is
// deterministic and symmetric: swapping the argument order yields the
// identical result. It never fails — a missing or empty profile scores
// every dimension as low-confidence neutral with no conflicts.
// Pair, Stale and CalculatedAt are left for the cache layer to fill.
func (e *Engine) Score(answersA, answersB []Answer) Result {
	byIDA := indexByQuestion(answersA)
	byIDB := indexByQuestion(answersB)

	shared := make([]string, 0, len(byIDA))
	for id := range byIDA {
		if _, ok := byIDB[id]; ok {
			shared = append(shared, id)
		}
	}
	sort.Strings(shared)

	enemyDims := make(map[Dimension]bool, len(e.cfg.EnemyDimensions))
	for _, d := range e.cfg.EnemyDimensions {
		enemyDims[d] = true
	}

	dimA := make(map[Dimension]*sideAccum)
	dimB := make(map[Dimension]*sideAccum)
	counted := make(map[Dimension]int)
	var enemyA, enemyB sideAccum
	var conflicts []Conflict

	for _, id := range shared {
		ansA, ansB := byIDA[id], byIDB[id]
		if ansA.Dimension != ansB.Dimension {
			// Inconsistent assessment data; skip rather than guess a side.
			continue
		}
		dim := ansA.Dimension

		aOK := ansA.accepts(ansB.Selected)
		bOK := ansB.accepts(ansA.Selected)
		mutual := aOK && bOK
		dealbreaker := ansA.Dealbreaker || ansB.Dealbreaker
		mandatory := ansA.Importance == ImportanceMandatory || ansB.Importance == ImportanceMandatory

		// Enemy pass sees every shared question in the enemy dimensions,
		// with dealbreaker questions weighted up.
		if enemyDims[dim] {
			boost := 1.0
			if dealbreaker {
				boost = e.cfg.EnemyDealbreakerBoost
			}
			wA, wB := ansA.Importance.Weight()*boost, ansB.Importance.Weight()*boost
			enemyA.total += wA
			enemyB.total += wB
			if !aOK {
				enemyA.hit += wA
			}
			if !bOK {
				enemyB.hit += wB
			}
		}

		if !mutual && dealbreaker {
			// Handled separately, not averaged away.
			conflicts = append(conflicts, Conflict{QuestionID: id, Dimension: dim, Kind: ConflictDealbreaker})
			continue
		}
		if !mutual && mandatory {
			// Recorded as a conflict, and kept in the average where the
			// MANDATORY weight forces the dimension toward zero.
			conflicts = append(conflicts, Conflict{QuestionID: id, Dimension: dim, Kind: ConflictMandatory})
		}

		accA := accum(dimA, dim)
		accB := accum(dimB, dim)
		wA, wB := ansA.Importance.Weight(), ansB.Importance.Weight()
		accA.total += wA
		accB.total += wB
		if aOK {
			accA.hit += wA
		}
		if bOK {
			accB.hit += wB
		}
		counted[dim]++
	}

	dims := make(map[Dimension]DimensionScore, len(Dimensions))
	overall := 0.0
	for _, d := range Dimensions {
		ds := DimensionScore{Score: 50, LowConfidence: true}
		if n := counted[d]; n > 0 {
			rA := accum(dimA, d).ratio(0.5)
			rB := accum(dimB, d).ratio(0.5)
			ds = DimensionScore{
				Score:           math.Sqrt(rA*rB) * 100,
				SharedQuestions: n,
			}
		}
		dims[d] = ds
		overall += e.cfg.Weights[d] * ds.Score
	}

	enemy := 0.0
	if enemyA.total > 0 && enemyB.total > 0 {
		enemy = math.Sqrt(enemyA.ratio(0)*enemyB.ratio(0)) * 100
	}

	return Result{
		OverallScore: overall,
		EnemyScore:   enemy,
		Dimensions:   dims,
		Conflicts:    conflicts,
	}
}

func indexByQuestion(answers []Answer) map[string]Answer {
	m := make(map[string]Answer, len(answers))
	for _, a := range answers {
		m[a.QuestionID] = a
	}
	return m
}

func accum(m map[Dimension]*sideAccum, d Dimension) *sideAccum {
	acc, ok := m[d]
	if !ok {
		acc = &sideAccum{}
		m[d] = acc
	}
	return acc
}
