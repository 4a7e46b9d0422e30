package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lernmar/lernmar/internal/executor"
	"github.com/lernmar/lernmar/internal/manifest"
	"github.com/lernmar/lernmar/internal/render"
	"github.com/lernmar/lernmar/internal/store"
	"github.com/lernmar/lernmar/internal/wrapper"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <course-dir>",
	Short: "Play a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir := args[0]

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		m, err := manifest.Load(filepath.Join(dir, manifest.FileName))
		if err != nil {
			return err
		}
		if err := manifest.CheckPlayerVersion(m, version); err != nil {
			return err
		}

		target := render.NewTerminal(os.Stdout, os.Stdin)
		crs, err := manifest.Build(m, dir, target, logger)
		if err != nil {
			return fmt.Errorf("build course: %w", err)
		}

		learner := wrapper.Learner{ID: cfg.Learner.ID, Name: cfg.Learner.Name}
		var w wrapper.CourseWrapper
		if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
			w = wrapper.NewStandalone(learner)
		} else {
			dbPath, err := resolveDBPath(cmd, cfg)
			if err != nil {
				return fmt.Errorf("resolve DB path: %w", err)
			}
			st, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()
			w = wrapper.NewStoreWrapper(st.SessionRepo(), m.Name, learner, logger)
		}

		exec := executor.New(executor.Options{
			Course:        crs,
			Wrapper:       w,
			Logger:        logger,
			MaxExecutions: cfg.MaxExecutions,
		})
		if err := exec.Execute(ctx); err != nil {
			return fmt.Errorf("execute course: %w", err)
		}

		state, err := w.GetCourseState(ctx)
		if err != nil {
			return nil
		}
		summary := state.Summary()
		fmt.Printf("\nCourse %q finished: progress %.0f%%, success %v", m.Name, summary.Progress*100, summary.Success)
		if state.Score != nil {
			fmt.Printf(", score %.0f/%.0f", *state.Score, *state.MaxScore)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	playCmd.Flags().Bool("ephemeral", false, "Do not persist progress to the database")
}
