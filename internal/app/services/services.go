package services

import (
	"github.com/rs/zerolog"
	"github.com/yigit/curriculum/internal/app/repositories"
	"github.com/yigit/curriculum/internal/config"
	"github.com/yigit/curriculum/internal/engine"
)

// Services defined in this package:
// - CurriculumService: Loads, caches and imports curriculum graphs
// - ProgressService: Records course states and derives stats and recommendations
// - GoalService: Manages academic goals and evaluates them against stats
type Services struct {
	Curriculum CurriculumService
	Progress   ProgressService
	Goals      GoalService
}

// OptionsFromConfig builds progress options from the curriculum config section
func OptionsFromConfig(cfg *config.Config) ProgressOptions {
	return ProgressOptions{
		Recommend: engine.RecommendOptions{
			AdvancedThreshold: cfg.Curriculum.AdvancedSemesterThreshold,
			ElectiveMarkers:   cfg.Curriculum.ElectiveMarkers,
		},
		BackfillGrade: cfg.Curriculum.BackfillGrade,
	}
}

// NewServices wires every service on top of repos
func NewServices(repos *repositories.Repositories, opts ProgressOptions, logger zerolog.Logger) *Services {
	curriculum := NewCurriculumService(repos.Curricula, logger.With().Str("service", "curriculum").Logger())
	progress := NewProgressService(curriculum, repos.Records, opts, logger.With().Str("service", "progress").Logger())
	goals := NewGoalService(repos.Goals, progress, logger.With().Str("service", "goals").Logger())

	return &Services{
		Curriculum: curriculum,
		Progress:   progress,
		Goals:      goals,
	}
}
