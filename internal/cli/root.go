package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level "tripplanner" command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tripplanner",
		Short:         "Pakistan trip planner: routes, safety, budget and itineraries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newPlanCmd(),
		newValidateCatalogCmd(),
	)
	return root
}
