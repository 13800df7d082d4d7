package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openclinic-tools/dhisync/internal/model"
	"github.com/openclinic-tools/dhisync/internal/output"
	"github.com/openclinic-tools/dhisync/internal/render"
)

var manualCmd = &cobra.Command{
	Use:         "manual",
	Short:       "Show the catalog of manual report codes",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		var b strings.Builder
		b.WriteString("# Manual report catalog\n\n")
		b.WriteString("Ask with a bare code (or `sql <code>`) to run the matching\n")
		b.WriteString("template from the queries directory, e.g. `dhisync ask 101`.\n\n")
		b.WriteString("| Code | Report |\n|------|--------|\n")
		for _, r := range model.ManualReports {
			fmt.Fprintf(&b, "| %s | %s |\n", r.Code, r.Title)
		}
		b.WriteString("\nTemplates may use `{start_date}` and `{end_date}` placeholders,\n")
		b.WriteString("filled from `--start` and `--end`.\n")

		rendered, err := render.RenderMarkdown(b.String())
		if err != nil {
			return cmdErr(fmt.Errorf("rendering manual: %w", err), output.ErrGeneral)
		}

		w.Success(model.ManualReports, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manualCmd)
}
