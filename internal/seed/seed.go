package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/curriculum/internal/app/services"
	"github.com/yigit/curriculum/internal/pkg/curriculumfile"
)

// LoadCurricula imports every curriculum file into the store. Re-importing a
// file updates courses by code, so running the seed twice is harmless.
// Every file is attempted; failures are joined into the returned error.
func LoadCurricula(ctx context.Context, files []string, curricula services.CurriculumService, lgr zerolog.Logger) error {
	if len(files) == 0 {
		lgr.Info().Msg("No curriculum seed files configured")
		return nil
	}

	var finalErr error
	for _, path := range files {
		file, err := curriculumfile.Load(path)
		if err != nil {
			lgr.Error().Err(err).Str("file", path).Msg("Error reading curriculum file")
			finalErr = errors.Join(finalErr, fmt.Errorf("%s: %w", path, err))
			continue
		}

		g, err := curricula.Import(ctx, file)
		if err != nil {
			lgr.Error().Err(err).Str("file", path).Msg("Error importing curriculum")
			finalErr = errors.Join(finalErr, fmt.Errorf("%s: %w", path, err))
			continue
		}

		lgr.Info().
			Str("file", path).
			Int64("degreeID", g.Curriculum().DegreeID).
			Int("courses", g.Len()).
			Msg("Curriculum seeded")
	}

	return finalErr
}
