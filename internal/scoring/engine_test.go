package scoring_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/tashiscool/alovoa-sub007/internal/scoring"
)

// agreeing returns a matching answer pair on the given question: same
// selected option, default acceptance rule, no dealbreaker.
func agreeing(questionID string, dim scoring.Dimension, imp scoring.Importance) (scoring.Answer, scoring.Answer) {
	a := scoring.Answer{QuestionID: questionID, Dimension: dim, Selected: 2, Importance: imp}
	return a, a
}

// fullAgreement builds one agreeing SOMEWHAT question per dimension for
// both users.
func fullAgreement() (answersA, answersB []scoring.Answer) {
	for i, d := range scoring.Dimensions {
		a, b := agreeing(string(rune('a'+i)), d, scoring.ImportanceSomewhat)
		answersA = append(answersA, a)
		answersB = append(answersB, b)
	}
	return answersA, answersB
}

func newEngine(t *testing.T) *scoring.Engine {
	t.Helper()
	cfg := scoring.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() unexpected error: %v", err)
	}
	return scoring.NewEngine(cfg)
}

// ── Core scoring ──────────────────────────────────────────────────────────

// Full agreement on every dimension must score a perfect 100 overall
// with a zero enemy score and no conflicts.
func TestScore_FullAgreement(t *testing.T) {
	engine := newEngine(t)
	answersA, answersB := fullAgreement()

	result := engine.Score(answersA, answersB)

	if math.Abs(result.OverallScore-100) > 1e-9 {
		t.Errorf("OverallScore = %f, want 100", result.OverallScore)
	}
	if result.EnemyScore != 0 {
		t.Errorf("EnemyScore = %f, want 0", result.EnemyScore)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("Conflicts = %v, want none", result.Conflicts)
	}
	for _, d := range scoring.Dimensions {
		ds := result.Dimensions[d]
		if ds.LowConfidence {
			t.Errorf("dimension %s marked low confidence with a shared answer", d)
		}
		if ds.SharedQuestions != 1 {
			t.Errorf("dimension %s SharedQuestions = %d, want 1", d, ds.SharedQuestions)
		}
	}
}

// Swapping the argument order must yield an identical result.
func TestScore_Symmetric(t *testing.T) {
	engine := newEngine(t)

	answersA := []scoring.Answer{
		{QuestionID: "q1", Dimension: scoring.DimensionValues, Selected: 1, Importance: scoring.ImportanceVery},
		{QuestionID: "q2", Dimension: scoring.DimensionLifestyle, Selected: 4, Importance: scoring.ImportanceALittle, Acceptable: []int{0, 1}},
		{QuestionID: "q3", Dimension: scoring.DimensionPolitical, Selected: 0, Importance: scoring.ImportanceMandatory},
		{QuestionID: "q5", Dimension: scoring.DimensionGrowth, Selected: 2, Importance: scoring.ImportanceSomewhat},
	}
	answersB := []scoring.Answer{
		{QuestionID: "q1", Dimension: scoring.DimensionValues, Selected: 3, Importance: scoring.ImportanceSomewhat},
		{QuestionID: "q2", Dimension: scoring.DimensionLifestyle, Selected: 1, Importance: scoring.ImportanceVery, Dealbreaker: true},
		{QuestionID: "q3", Dimension: scoring.DimensionPolitical, Selected: 4, Importance: scoring.ImportanceSomewhat},
		{QuestionID: "q4", Dimension: scoring.DimensionAttraction, Selected: 2, Importance: scoring.ImportanceVery},
	}

	ab := engine.Score(answersA, answersB)
	ba := engine.Score(answersB, answersA)

	if ab.OverallScore != ba.OverallScore {
		t.Errorf("OverallScore differs on swap: %f vs %f", ab.OverallScore, ba.OverallScore)
	}
	if ab.EnemyScore != ba.EnemyScore {
		t.Errorf("EnemyScore differs on swap: %f vs %f", ab.EnemyScore, ba.EnemyScore)
	}
	if !reflect.DeepEqual(ab.Dimensions, ba.Dimensions) {
		t.Errorf("Dimensions differ on swap:\n  A,B: %v\n  B,A: %v", ab.Dimensions, ba.Dimensions)
	}
	if !reflect.DeepEqual(ab.Conflicts, ba.Conflicts) {
		t.Errorf("Conflicts differ on swap:\n  A,B: %v\n  B,A: %v", ab.Conflicts, ba.Conflicts)
	}
}

// Two users with no shared questions must score neutral 50 everywhere,
// low confidence, with no conflicts and no enemy score.
func TestScore_NoSharedQuestions(t *testing.T) {
	engine := newEngine(t)

	answersA := []scoring.Answer{
		{QuestionID: "only-a", Dimension: scoring.DimensionValues, Selected: 1, Importance: scoring.ImportanceVery},
	}
	result := engine.Score(answersA, nil)

	if math.Abs(result.OverallScore-50) > 1e-9 {
		t.Errorf("OverallScore = %f, want neutral 50", result.OverallScore)
	}
	if result.EnemyScore != 0 {
		t.Errorf("EnemyScore = %f, want 0", result.EnemyScore)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("Conflicts = %v, want none", result.Conflicts)
	}
	for _, d := range scoring.Dimensions {
		ds := result.Dimensions[d]
		if !ds.LowConfidence {
			t.Errorf("dimension %s not marked low confidence with zero shared answers", d)
		}
		if ds.Score != 50 {
			t.Errorf("dimension %s Score = %f, want 50", d, ds.Score)
		}
	}
}

// An explicit Acceptable set must override the default within-one rule.
func TestScore_ExplicitAcceptableSet(t *testing.T) {
	engine := newEngine(t)

	answersA := []scoring.Answer{{
		QuestionID: "q1", Dimension: scoring.DimensionLifestyle,
		Selected: 2, Acceptable: []int{0}, Importance: scoring.ImportanceALittle,
	}}
	answersB := []scoring.Answer{{
		QuestionID: "q1", Dimension: scoring.DimensionLifestyle,
		Selected: 3, Importance: scoring.ImportanceALittle,
	}}

	result := engine.Score(answersA, answersB)

	// B's answer 3 is within one of A's 2, but A only accepts 0, so A's
	// side scores zero and the geometric mean collapses the dimension.
	if got := result.Dimensions[scoring.DimensionLifestyle].Score; got != 0 {
		t.Errorf("lifestyle Score = %f, want 0", got)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("Conflicts = %v, want none for a plain mismatch", result.Conflicts)
	}
}

// ── Dealbreakers and mandatory questions ──────────────────────────────────

// A dealbreaker mismatch must surface as a conflict and block
// eligibility even when every other answer agrees perfectly.
func TestScore_DealbreakerMismatchBlocksEligibility(t *testing.T) {
	engine := newEngine(t)
	answersA, answersB := fullAgreement()

	answersA = append(answersA, scoring.Answer{
		QuestionID: "smoking", Dimension: scoring.DimensionLifestyle,
		Selected: 0, Importance: scoring.ImportanceVery, Dealbreaker: true,
	})
	answersB = append(answersB, scoring.Answer{
		QuestionID: "smoking", Dimension: scoring.DimensionLifestyle,
		Selected: 4, Importance: scoring.ImportanceALittle,
	})

	result := engine.Score(answersA, answersB)

	if len(result.Conflicts) != 1 {
		t.Fatalf("Conflicts = %v, want exactly one", result.Conflicts)
	}
	conflict := result.Conflicts[0]
	if conflict.Kind != scoring.ConflictDealbreaker || conflict.QuestionID != "smoking" {
		t.Errorf("conflict = %+v, want DEALBREAKER on smoking", conflict)
	}
	// The dealbreaker question is excluded from averaging, so the overall
	// score stays perfect; eligibility is still denied.
	if math.Abs(result.OverallScore-100) > 1e-9 {
		t.Errorf("OverallScore = %f, want 100 with dealbreaker excluded from averaging", result.OverallScore)
	}
	if result.Eligible(70) {
		t.Error("Eligible(70) = true, want false while a conflict exists")
	}
}

// A dealbreaker held by either party must trigger the conflict; the
// flag is not limited to the first argument's answers.
func TestScore_DealbreakerOnEitherSide(t *testing.T) {
	engine := newEngine(t)

	answersA := []scoring.Answer{{
		QuestionID: "kids", Dimension: scoring.DimensionCircumstantial,
		Selected: 0, Importance: scoring.ImportanceSomewhat,
	}}
	answersB := []scoring.Answer{{
		QuestionID: "kids", Dimension: scoring.DimensionCircumstantial,
		Selected: 4, Importance: scoring.ImportanceSomewhat, Dealbreaker: true,
	}}

	result := engine.Score(answersA, answersB)
	if len(result.Conflicts) != 1 || result.Conflicts[0].Kind != scoring.ConflictDealbreaker {
		t.Errorf("Conflicts = %v, want one DEALBREAKER", result.Conflicts)
	}
}

// A MANDATORY mismatch is recorded as a conflict and its 250x weight
// must crush the dimension score.
func TestScore_MandatoryMismatchCrushesDimension(t *testing.T) {
	engine := newEngine(t)

	answersA := []scoring.Answer{
		{QuestionID: "q1", Dimension: scoring.DimensionPersonality, Selected: 2, Importance: scoring.ImportanceSomewhat},
		{QuestionID: "q2", Dimension: scoring.DimensionPersonality, Selected: 0, Importance: scoring.ImportanceMandatory},
	}
	answersB := []scoring.Answer{
		{QuestionID: "q1", Dimension: scoring.DimensionPersonality, Selected: 2, Importance: scoring.ImportanceSomewhat},
		{QuestionID: "q2", Dimension: scoring.DimensionPersonality, Selected: 4, Importance: scoring.ImportanceSomewhat},
	}

	result := engine.Score(answersA, answersB)

	if len(result.Conflicts) != 1 || result.Conflicts[0].Kind != scoring.ConflictMandatory {
		t.Fatalf("Conflicts = %v, want one MANDATORY", result.Conflicts)
	}
	if got := result.Dimensions[scoring.DimensionPersonality].Score; got > 20 {
		t.Errorf("personality Score = %f, want < 20 under a MANDATORY mismatch", got)
	}
	if result.Eligible(70) {
		t.Error("Eligible(70) = true, want false while a conflict exists")
	}
}

// A MANDATORY question that both parties satisfy must not produce a
// conflict.
func TestScore_MandatoryAgreementIsNotAConflict(t *testing.T) {
	engine := newEngine(t)

	a, b := agreeing("q1", scoring.DimensionValues, scoring.ImportanceMandatory)
	result := engine.Score([]scoring.Answer{a}, []scoring.Answer{b})

	if len(result.Conflicts) != 0 {
		t.Errorf("Conflicts = %v, want none for a satisfied MANDATORY question", result.Conflicts)
	}
	if got := result.Dimensions[scoring.DimensionValues].Score; math.Abs(got-100) > 1e-9 {
		t.Errorf("values Score = %f, want 100", got)
	}
}

// ── Enemy score ───────────────────────────────────────────────────────────

// Mutual rejection on an enemy dimension must drive the enemy score to
// its maximum, with the dealbreaker boost applied.
func TestScore_EnemyScoreFromPoliticalConflict(t *testing.T) {
	engine := newEngine(t)

	answersA := []scoring.Answer{{
		QuestionID: "politics", Dimension: scoring.DimensionPolitical,
		Selected: 0, Importance: scoring.ImportanceVery, Dealbreaker: true,
	}}
	answersB := []scoring.Answer{{
		QuestionID: "politics", Dimension: scoring.DimensionPolitical,
		Selected: 4, Importance: scoring.ImportanceVery,
	}}

	result := engine.Score(answersA, answersB)

	if math.Abs(result.EnemyScore-100) > 1e-9 {
		t.Errorf("EnemyScore = %f, want 100 for mutual rejection", result.EnemyScore)
	}
}

// Mismatches outside the enemy dimensions must not move the enemy score.
func TestScore_EnemyScoreIgnoresNonEnemyDimensions(t *testing.T) {
	engine := newEngine(t)

	answersA := []scoring.Answer{{
		QuestionID: "q1", Dimension: scoring.DimensionLifestyle,
		Selected: 0, Importance: scoring.ImportanceVery,
	}}
	answersB := []scoring.Answer{{
		QuestionID: "q1", Dimension: scoring.DimensionLifestyle,
		Selected: 4, Importance: scoring.ImportanceVery,
	}}

	result := engine.Score(answersA, answersB)
	if result.EnemyScore != 0 {
		t.Errorf("EnemyScore = %f, want 0 for a lifestyle-only mismatch", result.EnemyScore)
	}
}

// Agreement on enemy dimensions must keep the enemy score at zero even
// when the questions carry high importance.
func TestScore_EnemyScoreZeroOnAgreement(t *testing.T) {
	engine := newEngine(t)

	a1, b1 := agreeing("q1", scoring.DimensionPolitical, scoring.ImportanceVery)
	a2, b2 := agreeing("q2", scoring.DimensionValues, scoring.ImportanceMandatory)
	result := engine.Score([]scoring.Answer{a1, a2}, []scoring.Answer{b1, b2})

	if result.EnemyScore != 0 {
		t.Errorf("EnemyScore = %f, want 0 on full agreement", result.EnemyScore)
	}
}

// ── Eligibility and config ────────────────────────────────────────────────

func TestResult_Eligible(t *testing.T) {
	tests := []struct {
		name      string
		result    scoring.Result
		threshold float64
		want      bool
	}{
		{"above threshold no conflicts", scoring.Result{OverallScore: 85}, 70, true},
		{"exactly at threshold", scoring.Result{OverallScore: 70}, 70, true},
		{"below threshold", scoring.Result{OverallScore: 69.9}, 70, false},
		{"high score with conflict", scoring.Result{OverallScore: 90, Conflicts: []scoring.Conflict{{QuestionID: "q1"}}}, 70, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Eligible(tt.threshold); got != tt.want {
				t.Errorf("Eligible(%v) = %v, want %v", tt.threshold, got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("missing dimension weight", func(t *testing.T) {
		cfg := scoring.DefaultConfig()
		delete(cfg.Weights, scoring.DimensionGrowth)
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() = nil, want error for missing weight")
		}
	})

	t.Run("weights not summing to one", func(t *testing.T) {
		cfg := scoring.DefaultConfig()
		cfg.Weights[scoring.DimensionGrowth] = 0.5
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() = nil, want error for bad weight sum")
		}
	})

	t.Run("boost below one", func(t *testing.T) {
		cfg := scoring.DefaultConfig()
		cfg.EnemyDealbreakerBoost = 0.5
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() = nil, want error for boost below 1")
		}
	})
}
