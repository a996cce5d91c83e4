package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appdiscovery "github.com/dealsense/icp-engine/internal/application/discovery"
	"github.com/dealsense/icp-engine/internal/domain/features"
	"github.com/dealsense/icp-engine/internal/domain/readiness"
	"github.com/dealsense/icp-engine/internal/infrastructure/database/postgres/repositories"
	"github.com/dealsense/icp-engine/internal/infrastructure/database/redis"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

func newDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run ICP discovery for a workspace and persist a draft profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			rt, err := bootstrap(ctx, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			builder := features.NewBuilder(rt.crm, rt.crm, rt.crm, rt.crm, rt.crm, rt.logger,
				features.WithFetchConcurrency(rt.cfg.Engine.FeatureFetchConcurrency))
			locker := redis.NewWorkspaceLocker(rt.redis, rt.cfg.Engine.DiscoveryLockTTL, rt.logger)

			svc := appdiscovery.NewService(
				lockerAdapter{locker: locker},
				readiness.NewClassifier(rt.crm),
				builder,
				rt.crm,
				repositories.NewProfileRepository(rt.conn.Pool(), rt.logger),
				nil,
				rt.logger,
			)

			summary, err := svc.Run(ctx, common.WorkspaceID(workspace))
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "discovery complete for workspace %s\n", summary.WorkspaceID)
			fmt.Fprintf(os.Stdout, "  mode:            %s\n", summary.Mode)
			fmt.Fprintf(os.Stdout, "  profile:         %s (version %d)\n", summary.ProfileID, summary.ProfileVersion)
			fmt.Fprintf(os.Stdout, "  deals analyzed:  %d (%d won / %d lost)\n", summary.DealsAnalyzed, summary.WonDeals, summary.LostDeals)
			fmt.Fprintf(os.Stdout, "  personas:        %d\n", summary.Personas)
			fmt.Fprintf(os.Stdout, "  committees:      %d\n", summary.Committees)
			fmt.Fprintf(os.Stdout, "  sweet spots:     %d\n", summary.SweetSpots)
			if summary.Degraded {
				fmt.Fprintln(os.Stdout, "  degraded:        custom-field discovery was unavailable")
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
