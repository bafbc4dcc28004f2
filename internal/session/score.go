package session

import (
	"math"

	"github.com/traitview/traitview/internal/model"
)

// ComputeScore returns the share of question weight that has a non-empty
// answer, as an integer percentage. Correctness is not graded.
func ComputeScore(questions []model.Question, answers map[uint]string) int {
	var total, answered float64
	for _, q := range questions {
		total += q.Weight
		if answers[q.ID] != "" {
			answered += q.Weight
		}
	}
	if total <= 0 {
		return 0
	}

	score := int(math.Round(100 * answered / total))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
