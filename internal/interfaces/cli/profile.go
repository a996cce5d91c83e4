package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dealsense/icp-engine/internal/infrastructure/database/postgres/repositories"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect ICP profiles for a workspace",
	}
	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileListCmd())
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the latest ICP profile as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			rt, err := bootstrap(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			repo := repositories.NewProfileRepository(rt.conn.Pool(), rt.logger)
			p, err := repo.GetLatest(ctx, common.WorkspaceID(workspace))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace identifier (required)")
	_ = cmd.MarkFlagRequired("workspace")
	return cmd
}

func newProfileListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profile versions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			rt, err := bootstrap(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			repo := repositories.NewProfileRepository(rt.conn.Pool(), rt.logger)
			versions, err := repo.ListVersions(ctx, common.WorkspaceID(workspace), limit)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "%-38s %8s %-11s %-12s %6s %6s %6s\n",
				"ID", "VERSION", "STATUS", "MODE", "DEALS", "WON", "LOST")
			for _, p := range versions {
				fmt.Fprintf(os.Stdout, "%-38s %8d %-11s %-12s %6d %6d %6d  %s\n",
					p.ID, p.Version, p.Status, p.Metadata.Mode,
					p.Metadata.DealsAnalyzed, p.Metadata.WonDeals, p.Metadata.LostDeals,
					p.CreatedAt.Time().Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace identifier (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum versions to list")
	_ = cmd.MarkFlagRequired("workspace")
	return cmd
}

//Personal.AI order the ending
