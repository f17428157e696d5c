package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/yigit/curriculum/internal/app/migrations"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/models/dto"
	"github.com/yigit/curriculum/internal/app/services"
	"github.com/yigit/curriculum/internal/bootstrap"
	"github.com/yigit/curriculum/internal/engine"
	"github.com/yigit/curriculum/internal/pkg/curriculumfile"
	"github.com/yigit/curriculum/internal/seed"
)

// Exit code for a negative answer, distinct from failures
const exitRejected = 2

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadGraph reads and checks a curriculum file; course ids follow file order
func loadGraph(path string) (*engine.Graph, error) {
	file, err := curriculumfile.Load(path)
	if err != nil {
		return nil, err
	}
	curriculum, err := file.ToModel(1)
	if err != nil {
		return nil, err
	}
	return engine.NewGraph(curriculum)
}

// loadRecords reads an optional record sheet against g
func loadRecords(path string, g *engine.Graph) (engine.RecordSet, error) {
	if path == "" {
		return engine.NewRecordSet(nil), nil
	}
	sheet, err := curriculumfile.LoadRecords(path)
	if err != nil {
		return nil, err
	}
	records, err := sheet.ToModels(g)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if err := engine.CheckRecord(&records[i]); err != nil {
			return nil, err
		}
	}
	return engine.NewRecordSet(records), nil
}

func loadOffline(c *cli.Context) (*engine.Graph, engine.RecordSet, error) {
	g, err := loadGraph(c.Path("curriculum"))
	if err != nil {
		return nil, nil, err
	}
	set, err := loadRecords(c.Path("records"), g)
	if err != nil {
		return nil, nil, err
	}
	return g, set, nil
}

// splitCodes accepts repeated flags as well as comma separated lists
func splitCodes(values []string) []string {
	var codes []string
	for _, v := range values {
		for _, code := range strings.Split(v, ",") {
			if code = strings.TrimSpace(code); code != "" {
				codes = append(codes, code)
			}
		}
	}
	return codes
}

func checkBatchAction(c *cli.Context) error {
	g, err := loadGraph(c.Path("curriculum"))
	if err != nil {
		return err
	}

	var ids []int64
	for _, code := range splitCodes(c.StringSlice("courses")) {
		course, err := g.CourseByCode(code)
		if err != nil {
			return err
		}
		ids = append(ids, course.ID)
	}

	result, err := engine.CheckBatch(g, ids)
	if err != nil {
		return err
	}
	backfill, err := engine.BackfillPlan(g, ids)
	if err != nil {
		return err
	}

	if err := printJSON(c, dto.NewCheckBatchResponse(result, backfill)); err != nil {
		return err
	}
	if !result.Valid {
		return cli.Exit("", exitRejected)
	}
	return nil
}

func validateAction(c *cli.Context) error {
	g, set, err := loadOffline(c)
	if err != nil {
		return err
	}
	course, err := g.CourseByCode(c.String("course"))
	if err != nil {
		return err
	}
	state, ok := models.ParseCourseState(c.String("state"))
	if !ok {
		return fmt.Errorf("unknown state %q", c.String("state"))
	}

	result, err := engine.Validate(g, set, course.ID, state)
	if err != nil {
		return err
	}
	if err := printJSON(c, dto.NewValidateCourseResponse(result)); err != nil {
		return err
	}
	if !result.OK {
		return cli.Exit("", exitRejected)
	}
	return nil
}

func statsAction(c *cli.Context) error {
	g, set, err := loadOffline(c)
	if err != nil {
		return err
	}
	return printJSON(c, engine.ComputeStats(g, set))
}

func recommendAction(c *cli.Context) error {
	g, set, err := loadOffline(c)
	if err != nil {
		return err
	}
	rec := engine.Recommend(g, set, engine.RecommendOptions{
		AdvancedThreshold: c.Int("advanced-threshold"),
		ElectiveMarkers:   splitCodes(c.StringSlice("elective-marker")),
	})
	return printJSON(c, dto.NewRecommendationResponse(rec))
}

func migrateAction(c *cli.Context) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}
	if cfg.UsesMemoryStore() {
		return cli.Exit("migrations need the postgres driver", 1)
	}

	database, err := bootstrap.ConnectDatabase(c.Context, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	if c.Bool("status") {
		applied, err := migrations.NewMigrator(database.Pool, lgr).Applied(c.Context)
		if err != nil {
			return err
		}
		return printJSON(c, map[string]interface{}{"applied": applied})
	}
	return bootstrap.RunMigrations(c.Context, cfg, database, lgr)
}

func seedAction(c *cli.Context) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}

	storage, err := bootstrap.SetupStorage(c.Context, cfg, lgr)
	if err != nil {
		return err
	}
	defer storage.Close()

	files := c.StringSlice("file")
	if len(files) == 0 {
		files = cfg.Curriculum.SeedFiles
	}

	svc := services.NewServices(storage.Repos, services.OptionsFromConfig(cfg), lgr)
	return seed.LoadCurricula(c.Context, files, svc.Curriculum, lgr)
}

func tokenAction(c *cli.Context) error {
	cfg, _, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}

	role := models.RoleType(strings.ToUpper(c.String("role")))
	token, expiresIn, err := bootstrap.NewJWTService(cfg).GenerateAccessToken(c.Int64("user"), role)
	if err != nil {
		return err
	}

	return printJSON(c, map[string]interface{}{
		"accessToken": token,
		"tokenType":   "Bearer",
		"expiresIn":   expiresIn,
	})
}
