package commands

import (
	"github.com/spf13/cobra"
)

func newWorkspacesCommand(rt *Runtime) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "workspaces",
		Short: "List the configured workspaces in declared order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := rt.catalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, map[string]any{"workspaces": catalog.All()})
			}
			rows := make([][]string, 0, len(catalog.All()))
			for i, ws := range catalog.All() {
				mark := ""
				if i == 0 {
					mark = "default"
				}
				rows = append(rows, []string{ws.ID, ws.Name, mark})
			}
			return table(out, []string{"ID", "NAME", ""}, rows)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
