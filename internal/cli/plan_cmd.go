package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"tripplanner/internal/app"
	intconfig "tripplanner/internal/config"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/services"
	"tripplanner/internal/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type planOptions struct {
	req       models.TripRequest
	budget    string
	narrative bool
	pdfPath   string
	noDB      bool
}

func newPlanCmd() *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Assemble a trip plan and print it as JSON",
		Example: `  tripplanner plan --destination hunza --days 6 --people 4 --type family --budget 180000
  tripplanner plan --destination murree --days 2 --people 2 --budget 60000 --no-db --pdf murree.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := utils.ParsePKR(opts.budget)
			if err != nil {
				return fmt.Errorf("--budget: %w", err)
			}
			opts.req.BudgetPKR = amount
			ctx := cmd.Context()
			a, err := app.Build(ctx, intconfig.LoadEnv(), app.Options{WithoutDB: opts.noDB})
			if err != nil {
				return err
			}
			defer a.Close()
			return runPlan(ctx, a, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.req.Destination, "destination", "", "Destination id (see validate-catalog)")
	f.StringVar(&opts.req.Origin, "origin", "", "Origin city id (default islamabad)")
	f.IntVar(&opts.req.DurationDays, "days", 0, "Trip length in days")
	f.IntVar(&opts.req.NumPeople, "people", 1, "Number of travelers")
	f.StringVar(&opts.req.TravelType, "type", "", "solo, couple, family or group")
	f.StringVar(&opts.budget, "budget", "", `Total budget in PKR ("180000" or "PKR 180,000")`)
	f.StringVar(&opts.req.Style, "style", "comfort", "budget, comfort, adventure or luxury")
	f.StringVar(&opts.req.TravelerGender, "gender", "", "Traveler gender for profile advice (female, male, other)")
	f.BoolVar(&opts.narrative, "narrative", false, "Attach a generated narrative")
	f.StringVar(&opts.pdfPath, "pdf", "", "Also write the plan as PDF to this path")
	f.BoolVar(&opts.noDB, "no-db", false, "Skip the database (live and fallback routing only)")
	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("budget")
	return cmd
}

func runPlan(ctx context.Context, a *app.App, opts planOptions, out io.Writer) error {
	reqID := uuid.NewString()
	ctx = utils.WithRequestID(ctx, reqID)

	assembler := a.Services.Assembler
	assembler.RequestID = reqID
	plan, err := assembler.Assemble(ctx, opts.req)
	if err != nil {
		return err
	}
	if opts.narrative {
		narrative := a.Services.Narrative
		narrative.RequestID = reqID
		plan = narrative.Enrich(ctx, plan)
	}

	if opts.pdfPath != "" {
		pdf, filename, err := services.DocsService{RequestID: reqID}.GeneratePlanPDF(plan)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.pdfPath, pdf, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", filename, err)
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}
