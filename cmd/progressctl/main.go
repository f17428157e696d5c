// Command progressctl administers the curriculum store and answers progress
// questions offline from curriculum and record YAML files.
package main

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/yigit/curriculum/internal/bootstrap"
	"github.com/yigit/curriculum/internal/pkg/logger"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("progressctl failed")
		os.Exit(1)
	}
}

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   bootstrap.DefaultConfigPath,
		Usage:   "path to the YAML config file",
		EnvVars: []string{"CURRICULUM_CONFIG"},
	}
	curriculumFlag = &cli.PathFlag{
		Name:     "curriculum",
		Usage:    "curriculum definition YAML",
		Required: true,
	}
	recordsFlag = &cli.PathFlag{
		Name:  "records",
		Usage: "student record sheet YAML",
	}
)

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "progressctl",
		Usage:     "curriculum and student progress tooling",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply database migrations",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{Name: "status", Usage: "list applied versions without migrating"},
				},
				Action: migrateAction,
			},
			{
				Name:  "seed",
				Usage: "import curriculum files into the configured store",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringSliceFlag{Name: "file", Aliases: []string{"f"}, Usage: "curriculum file; defaults to the configured seed files"},
				},
				Action: seedAction,
			},
			{
				Name:  "check-batch",
				Usage: "check a completed-course selection against the curriculum order",
				Flags: []cli.Flag{
					curriculumFlag,
					&cli.StringSliceFlag{Name: "courses", Usage: "selected course codes", Required: true},
				},
				Action: checkBatchAction,
			},
			{
				Name:  "validate",
				Usage: "check whether a course may move to a state",
				Flags: []cli.Flag{
					curriculumFlag,
					recordsFlag,
					&cli.StringFlag{Name: "course", Usage: "course code", Required: true},
					&cli.StringFlag{Name: "state", Value: "PASSED", Usage: "target state"},
				},
				Action: validateAction,
			},
			{
				Name:   "stats",
				Usage:  "compute GPA, credits and progress",
				Flags:  []cli.Flag{curriculumFlag, recordsFlag},
				Action: statsAction,
			},
			{
				Name:  "recommend",
				Usage: "list the courses a student may take next",
				Flags: []cli.Flag{
					curriculumFlag,
					recordsFlag,
					&cli.IntFlag{Name: "advanced-threshold", Value: 6, Usage: "semesters above this count as advanced"},
					&cli.StringSliceFlag{Name: "elective-marker", Usage: "name fragment marking electives"},
				},
				Action: recommendAction,
			},
			{
				Name:  "token",
				Usage: "sign a development access token",
				Flags: []cli.Flag{
					configFlag,
					&cli.Int64Flag{Name: "user", Usage: "student or instructor id", Required: true},
					&cli.StringFlag{Name: "role", Value: "STUDENT", Usage: "STUDENT or INSTRUCTOR"},
				},
				Action: tokenAction,
			},
		},
	}
}
