package commands

import (
	"github.com/spf13/cobra"
)

func newRequirementsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requirements",
		Aliases: []string{"req"},
		Short:   "Sync and list project requirements",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "sync <project-id>",
			Short: "Create, update and remove requirement rows from the project tree",
			RunE: func(cmd *cobra.Command, args []string) error {
				projectID, err := requireProjectID(args)
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				if err := app.Open(ctx, cmd.OutOrStdout(), false); err != nil {
					return err
				}
				result, err := app.engine.SyncRequirementsFromProject(ctx, projectID)
				if err != nil {
					return err
				}
				return app.printer.Sync(result)
			},
		},
		&cobra.Command{
			Use:   "list <project-id>",
			Short: "List the live requirements of a project",
			RunE: func(cmd *cobra.Command, args []string) error {
				projectID, err := requireProjectID(args)
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				if err := app.Open(ctx, cmd.OutOrStdout(), false); err != nil {
					return err
				}
				reqs, err := app.engine.ListProjectRequirements(ctx, projectID)
				if err != nil {
					return err
				}
				return app.printer.Requirements(reqs)
			},
		},
	)
	return cmd
}
