package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openclinic-tools/dhisync/internal/db"
	"github.com/openclinic-tools/dhisync/internal/model"
	"github.com/openclinic-tools/dhisync/internal/output"
	"github.com/openclinic-tools/dhisync/internal/render"
)

type logsResult struct {
	Entries []model.SyncLogEntry `json:"entries"`
	Total   int                  `json:"total"`
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the sync ledger, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		report, _ := cmd.Flags().GetString("report")

		entries, err := db.ListSyncLog(conn, report)
		if err != nil {
			return cmdErr(fmt.Errorf("reading sync ledger: %w", err), output.ErrGeneral)
		}

		w.Success(logsResult{Entries: entries, Total: len(entries)}, render.RenderSyncLog(entries))
		return nil
	},
}

func init() {
	logsCmd.Flags().String("report", "", "Only show entries for this report")
	rootCmd.AddCommand(logsCmd)
}
