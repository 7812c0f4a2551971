// Package scoring computes multi-dimensional compatibility between two
// users from their assessment answers, and caches the persisted result
// per canonical user pair.
package scoring

import "context"

// Dimension is one named axis of compatibility.
type Dimension string

const (
	DimensionPersonality    Dimension = "PERSONALITY"
	DimensionValues         Dimension = "VALUES"
	DimensionLifestyle      Dimension = "LIFESTYLE"
	DimensionAttraction     Dimension = "ATTRACTION"
	DimensionCircumstantial Dimension = "CIRCUMSTANTIAL"
	DimensionGrowth         Dimension = "GROWTH"
	DimensionPolitical      Dimension = "POLITICAL"
)

// Dimensions lists every axis, in display order.
var Dimensions = []Dimension{
	DimensionPersonality,
	DimensionValues,
	DimensionLifestyle,
	DimensionAttraction,
	DimensionCircumstantial,
	DimensionGrowth,
	DimensionPolitical,
}

// Importance is the weight a user assigns to a question. A MANDATORY
// mismatch is recorded as a conflict, and its weight crushes the
// dimension score toward zero.
type Importance string

const (
	ImportanceIrrelevant Importance = "IRRELEVANT"
	ImportanceALittle    Importance = "A_LITTLE"
	ImportanceSomewhat   Importance = "SOMEWHAT"
	ImportanceVery       Importance = "VERY"
	ImportanceMandatory  Importance = "MANDATORY"
)

// importanceWeights mirrors the OkCupid-style multiplicative weights.
var importanceWeights = map[Importance]float64{
	ImportanceIrrelevant: 0,
	ImportanceALittle:    1,
	ImportanceSomewhat:   10,
	ImportanceVery:       50,
	ImportanceMandatory:  250,
}

// Weight returns the multiplicative weight for the importance level.
// Unknown values fall back to SOMEWHAT.
func (i Importance) Weight() float64 {
	if w, ok := importanceWeights[i]; ok {
		return w
	}
	return importanceWeights[ImportanceSomewhat]
}

// Answer is one answered assessment question for one user, as provided
// by the assessment store.
type Answer struct {
	QuestionID string
	Dimension  Dimension
	// Selected is the option the user chose.
	Selected int
	// Acceptable lists partner options this user accepts. An empty set
	// means the default rule: same answer or within one point.
	Acceptable []int
	Importance Importance
	// Dealbreaker marks a question whose non-acceptable mismatch
	// disqualifies the pair outright, independent of averaging.
	Dealbreaker bool
}

// accepts reports whether the partner's selected option satisfies this
// user's answer.
func (a Answer) accepts(theirSelected int) bool {
	if len(a.Acceptable) == 0 {
		diff := a.Selected - theirSelected
		return diff >= -1 && diff <= 1
	}
	for _, opt := range a.Acceptable {
		if opt == theirSelected {
			return true
		}
	}
	return false
}

// AnswerSource provides each user's assessment answers. It is the
// read-only boundary to the assessment store.
type AnswerSource interface {
	Answers(ctx context.Context, userID int64) ([]Answer, error)
}
