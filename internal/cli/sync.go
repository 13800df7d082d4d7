package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openclinic-tools/dhisync/internal/config"
	"github.com/openclinic-tools/dhisync/internal/output"
)

var syncCmd = &cobra.Command{
	Use:   "sync <question>...",
	Short: "Run a question and push its rows to DHIS2",
	Long: "sync routes and executes the question like ask, maps the rows to\n" +
		"dataValueSets records using the configured report mapping, and pushes\n" +
		"them. Successful pushes are recorded in the sync ledger.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		question := strings.Join(args, " ")

		period, _ := cmd.Flags().GetString("period")
		reportFlag, _ := cmd.Flags().GetString("report")
		startDate, _ := cmd.Flags().GetString("start")
		endDate, _ := cmd.Flags().GetString("end")

		creds := config.LoadCredentials()
		if creds.DHIS2BaseURL == "" {
			return cmdErr(fmt.Errorf("DHIS2_BASE_URL is not set"), output.ErrValidation)
		}

		p, cleanup, err := buildPipeline(cmd, true)
		if err != nil {
			return err
		}
		defer cleanup()

		askRes, err := p.Ask(cmd.Context(), question, startDate, endDate, true)
		if err != nil {
			return pipelineErr(err)
		}

		reportName := askRes.ReportName
		if reportFlag != "" {
			reportName = reportFlag
		}

		res, err := p.Sync(cmd.Context(), askRes.Rows, period, reportName)
		if err != nil {
			return pipelineErr(err)
		}

		if res.Warning {
			w.Warn("DHIS2 accepted the request but 0 records were changed (likely duplicate data)")
			w.Success(res, fmt.Sprintf("Pushed %d records for %s, none changed", res.RecordCount, res.ReportName))
			return nil
		}

		w.Success(res, fmt.Sprintf("Successfully synced %d records for %s (period %s)",
			res.Changed, res.ReportName, res.Period))
		return nil
	},
}

func init() {
	syncCmd.Flags().String("period", "", "DHIS2 period, e.g. 202501 (required)")
	syncCmd.Flags().String("report", "", "Override the resolved report name")
	syncCmd.Flags().String("start", "", "Start date (YYYY-MM-DD) for date-ranged queries")
	syncCmd.Flags().String("end", "", "End date (YYYY-MM-DD) for date-ranged queries")
	syncCmd.MarkFlagRequired("period")
	rootCmd.AddCommand(syncCmd)
}
