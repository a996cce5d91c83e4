package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appscoring "github.com/dealsense/icp-engine/internal/application/scoring"
	"github.com/dealsense/icp-engine/internal/domain/features"
	"github.com/dealsense/icp-engine/internal/domain/scoring"
	"github.com/dealsense/icp-engine/internal/infrastructure/database/postgres/repositories"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score every open deal and contact in a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			rt, err := bootstrap(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			builder := features.NewBuilder(rt.crm, rt.crm, rt.crm, rt.crm, rt.crm, rt.logger,
				features.WithFetchConcurrency(rt.cfg.Engine.FeatureFetchConcurrency))

			svc := appscoring.NewService(
				builder,
				repositories.NewProfileRepository(rt.conn.Pool(), rt.logger),
				repositories.NewScoreRepository(rt.conn.Pool(), rt.logger),
				scoring.Config{
					InactivityPenaltyPerWeek: rt.cfg.Engine.InactivityPenaltyPerWeek,
					NoCallsLateStagePenalty:  rt.cfg.Engine.NoCallsLateStagePenalty,
				},
				nil,
				rt.logger,
			)

			summary, err := svc.Run(ctx, common.WorkspaceID(workspace))
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "scoring complete for workspace %s\n", summary.WorkspaceID)
			fmt.Fprintf(os.Stdout, "  weights:         %s (profile version %d)\n", summary.WeightsMethod, summary.ProfileVersion)
			fmt.Fprintf(os.Stdout, "  deals scored:    %d\n", summary.DealsScored)
			fmt.Fprintf(os.Stdout, "  contacts scored: %d\n", summary.ContactsScored)
			if summary.Degraded {
				fmt.Fprintln(os.Stdout, "  degraded:        no discovery profile yet, default weights used")
			}
			fmt.Fprintf(os.Stdout, "  duration:        %s\n", summary.Duration.Round(summaryDurationPrecision))
			return nil
		},
	}
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace identifier (required)")
	_ = cmd.MarkFlagRequired("workspace")
	return cmd
}

//Personal.AI order the ending
