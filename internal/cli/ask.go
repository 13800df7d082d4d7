package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/openclinic-tools/dhisync/internal/render"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>...",
	Short: "Route a question to a query, run it, and show the rows",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		question := strings.Join(args, " ")

		startDate, _ := cmd.Flags().GetString("start")
		endDate, _ := cmd.Flags().GetString("end")
		execute, _ := cmd.Flags().GetBool("execute")

		p, cleanup, err := buildPipeline(cmd, execute)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := p.Ask(cmd.Context(), question, startDate, endDate, execute)
		if err != nil {
			return pipelineErr(err)
		}

		if !execute {
			w.Success(res, res.SQL)
			return nil
		}

		var b strings.Builder
		dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		fmt.Fprintf(&b, "%s\n\n", render.StyledText(res.SQL, dim))
		b.WriteString(render.RenderRows(res.Rows))
		fmt.Fprintf(&b, "\nReport: %s (routed via %s)", res.ReportName, res.Mode)
		if res.LastSync != nil {
			fmt.Fprintf(&b, "\nLast synced %s (period %s, %d records)",
				humanize.Time(res.LastSync.Timestamp), res.LastSync.Period, res.LastSync.RecordCount)
		}

		w.Success(res, b.String())
		return nil
	},
}

func init() {
	askCmd.Flags().String("start", "", "Start date (YYYY-MM-DD) for date-ranged queries")
	askCmd.Flags().String("end", "", "End date (YYYY-MM-DD) for date-ranged queries")
	askCmd.Flags().Bool("execute", true, "Run the query (use --execute=false to only print it)")
	rootCmd.AddCommand(askCmd)
}
