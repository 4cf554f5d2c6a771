package cli

import (
	"fmt"

	"tripplanner/internal/app"
	intconfig "tripplanner/internal/config"

	"github.com/spf13/cobra"
)

func newValidateCatalogCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate-catalog",
		Short: "Check the catalog and its fallback route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := intconfig.LoadEnv()
			if path != "" {
				env.CatalogPath = path
			}
			cat, err := app.LoadCatalog(env)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "catalog OK: %d places, %d destinations, %d fallback legs\n",
				len(cat.Places), len(cat.Destinations), len(cat.Fallback))
			for _, p := range cat.SupportedDestinations() {
				fmt.Fprintf(out, "  %-16s %s (%s, %d m)\n", p.ID, p.Name, p.Region, p.AltitudeM)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "catalog", "", "Catalog YAML path (overrides CATALOG_PATH)")
	return cmd
}
