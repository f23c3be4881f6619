package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProjectCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create and inspect projects",
	}
	cmd.AddCommand(newProjectCreateCommand(app), newProjectTreeCommand(app), newProjectListCommand(app))
	return cmd
}

func newProjectCreateCommand(app *App) *cobra.Command {
	var (
		name     string
		rootItem string
		quantity string
		due      string
		sync     bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project and expand its tree from the active BOM",
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(quantity)
			if err != nil {
				return err
			}
			dueDate, err := parseDate(due)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := app.Open(ctx, cmd.OutOrStdout(), false); err != nil {
				return err
			}
			tree, err := app.engine.CreateProject(ctx, name, rootItem, qty, dueDate)
			if err != nil {
				return err
			}
			if err := app.printer.Tree(tree); err != nil {
				return err
			}
			if !sync {
				return nil
			}
			result, err := app.engine.SyncRequirementsFromProject(ctx, tree.Project.ID)
			if err != nil {
				return err
			}
			if err := app.printer.Sync(result); err != nil {
				return err
			}
			reqs, err := app.engine.ListProjectRequirements(ctx, tree.Project.ID)
			if err != nil {
				return err
			}
			return app.printer.Requirements(reqs)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&rootItem, "root", "", "root nomenclature ID")
	cmd.Flags().StringVar(&quantity, "qty", "1", "quantity of the root item")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&sync, "sync", false, "sync requirements after creation")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("root")
	return cmd
}

func newProjectTreeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <project-id>",
		Short: "Print the node tree of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.Open(ctx, cmd.OutOrStdout(), false); err != nil {
				return err
			}
			tree, err := app.engine.GetProjectTree(ctx, args[0])
			if err != nil {
				return err
			}
			return app.printer.Tree(tree)
		},
	}
}

func newProjectListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.Open(ctx, cmd.OutOrStdout(), false); err != nil {
				return err
			}
			projects, err := app.engine.ListProjects(ctx)
			if err != nil {
				return err
			}
			for _, p := range projects {
				if err := app.printer.Message("%s\t%s\t%s", p.ID, p.Name, p.Status); err != nil {
					return err
				}
			}
			if len(projects) == 0 {
				return app.printer.Message("no projects")
			}
			return nil
		},
	}
}

func requireProjectID(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("expected exactly one project ID")
	}
	return args[0], nil
}
