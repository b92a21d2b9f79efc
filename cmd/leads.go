package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-api/internal/export"
	"github.com/sells-group/valuation-api/internal/model"
	"github.com/sells-group/valuation-api/internal/store"
)

var leadsFlags struct {
	status string
	limit  int
	output string
}

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and export captured leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "leads")
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := env.Store.ListLeads(cmd.Context(), store.LeadFilter{
			Status: model.LeadStatus(leadsFlags.status),
			Limit:  leadsFlags.limit,
		})
		if err != nil {
			return err
		}

		if len(leads) == 0 {
			fmt.Println("no leads found")
			return nil
		}

		fmt.Printf("%-36s  %-30s  %-8s  %s\n", "ID", "EMAIL", "STATUS", "CREATED")
		for _, l := range leads {
			fmt.Printf("%-36s  %-30s  %-8s  %s\n",
				l.ID, l.Email, l.Status, l.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "leads")
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := env.Store.ListLeads(cmd.Context(), store.LeadFilter{
			Status: model.LeadStatus(leadsFlags.status),
			Limit:  leadsFlags.limit,
		})
		if err != nil {
			return err
		}

		if err := export.WriteLeadsXLSX(leadsFlags.output, leads); err != nil {
			return err
		}

		zap.L().Info("leads exported",
			zap.Int("count", len(leads)),
			zap.String("path", leadsFlags.output),
		)
		return nil
	},
}

func init() {
	leadsCmd.PersistentFlags().StringVar(&leadsFlags.status, "status", "", "filter by status (new, synced, failed)")
	leadsCmd.PersistentFlags().IntVar(&leadsFlags.limit, "limit", 100, "max leads to fetch")
	leadsExportCmd.Flags().StringVar(&leadsFlags.output, "output", "leads.xlsx", "output file path")
	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsExportCmd)
	rootCmd.AddCommand(leadsCmd)
}
