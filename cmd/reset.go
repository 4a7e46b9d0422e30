package cmd

import (
	"fmt"

	"github.com/lernmar/lernmar/internal/store"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <course-name>",
	Short: "Delete the persisted progress of a course",
	Args:  cobra.ExactArgs(1),
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

		if err := st.SessionRepo().Delete(ctx, args[0], cfg.Learner.ID); err != nil {
			return err
		}
		fmt.Printf("Progress for course %q reset.\n", args[0])
		return nil
	},
}
