package services

import (
	"math"

	"github.com/yukikurage/stepflow-api/internal/models"
)

// CalculateProgress returns a completion percentage in [0, 100] rounded to two decimals.
// Whenever any subtask exists the ratio of completed subtasks is used on its own;
// otherwise the ratio of completed steps.
func CalculateProgress(steps []models.Step, subtasksByStep map[string][]models.Subtask) float64 {
	var totalSubtasks, completedSubtasks int
	for _, subtasks := range subtasksByStep {
		for _, subtask := range subtasks {
			totalSubtasks++
			if subtask.IsCompleted {
				completedSubtasks++
			}
		}
	}

	if totalSubtasks > 0 {
		return roundPercent(completedSubtasks, totalSubtasks)
	}

	if len(steps) == 0 {
		return 0
	}

	completedSteps := 0
	for _, step := range steps {
		if step.IsCompleted {
			completedSteps++
		}
	}
	return roundPercent(completedSteps, len(steps))
}

func roundPercent(done, total int) float64 {
	p := float64(done) / float64(total) * 100
	return math.Round(p*100) / 100
}
