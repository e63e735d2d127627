package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mgpai22/ass2srt/internal/workflow"
)

// renders rows with rounded borders; columns listed in numeric are
// right-aligned
func renderTable(headers []string, rows [][]string, numeric ...int) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(numeric))
	for _, col := range numeric {
		configs = append(configs, table.ColumnConfig{
			Number:      col + 1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func summaryTable(reports []workflow.Report) string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		detail := r.Reason
		if r.Status == workflow.StatusConverted && len(r.Outputs) > 0 {
			detail = r.Outputs[0]
			if len(r.Outputs) > 1 {
				detail += fmt.Sprintf(" (+%d)", len(r.Outputs)-1)
			}
		}
		rows = append(rows, []string{
			r.Path,
			string(r.Status),
			strconv.Itoa(r.Blocks),
			strconv.Itoa(r.Skipped),
			r.Duration.Round(time.Millisecond).String(),
			detail,
		})
	}
	return renderTable([]string{"Input", "Status", "Blocks", "Skipped", "Time", "Detail"}, rows, 2, 3, 4)
}

func summaryLine(reports []workflow.Report) string {
	counts := workflow.Tally(reports)
	return fmt.Sprintf("%d converted, %d skipped, %d unchanged, %d failed",
		counts[workflow.StatusConverted],
		counts[workflow.StatusSkipped],
		counts[workflow.StatusUnchanged],
		counts[workflow.StatusFailed],
	)
}
