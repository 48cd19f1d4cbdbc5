// Package export renders reports for people: terminal tables and XLSX
// workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/alimgiray/glscope/internal/models"
)

const bytesPerKiB = 1024

// RenderTable writes one row per author total to w
func RenderTable(w io.Writer, report *models.Report) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	tbl.AppendHeader(table.Row{"Author", "Email", "Commits", "Additions", "Deletions", "Lines", "Files", "Size"})

	for _, cs := range report.CodeStats {
		tbl.AppendRow(table.Row{
			cs.Author,
			cs.Email,
			humanize.Comma(int64(cs.Commits)),
			humanize.Comma(int64(cs.Additions)),
			humanize.Comma(int64(cs.Deletions)),
			humanize.Comma(int64(cs.Lines)),
			humanize.Comma(int64(cs.Files)),
			FormatKiB(cs.Size),
		})
	}

	commits, size := report.Totals()
	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d authors", len(report.CodeStats)),
		fmt.Sprintf("%d failures", len(report.FailureStats)),
		humanize.Comma(int64(commits)),
		"", "", "", "",
		FormatKiB(size),
	})

	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

// FormatKiB renders a KiB count as a human readable size
func FormatKiB(kib int64) string {
	if kib <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(kib) * bytesPerKiB)
}
