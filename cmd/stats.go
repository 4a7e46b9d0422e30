package cmd

import (
	"fmt"

	"github.com/lernmar/lernmar/internal/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show course progress for the local learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		sessions, err := st.SessionRepo().List(ctx, cfg.Learner.ID)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No course sessions recorded yet.")
			return nil
		}

		fmt.Printf("Courses of %s:\n", cfg.Learner.Name)
		for _, s := range sessions {
			line := fmt.Sprintf("  %-24s progress %3.0f%%  success %-5v", s.CourseID, s.Progress*100, s.Success)
			if s.Score != nil && s.MaxScore != nil {
				line += fmt.Sprintf("  score %.0f/%.0f", *s.Score, *s.MaxScore)
			}
			if s.CurrentActivity != "" && s.Progress < 1 {
				line += fmt.Sprintf("  (at %s)", s.CurrentActivity)
			}
			fmt.Println(line)
		}
		return nil
	},
}
