package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/alimgiray/glscope/internal/models"
)

// Sheet names of the workbook
const (
	SheetCode     = "Code"
	SheetCommits  = "Commits"
	SheetFailures = "Failures"
)

var (
	codeHeader    = []any{"Author", "Email", "Project", "Commits", "Additions", "Deletions", "Lines", "Files", "Size (KiB)"}
	commitsHeader = []any{"Author", "Email", "Project", "Branch", "Tag", "Committed", "Message"}
	failureHeader = []any{"Operation", "Project", "Author", "URL", "Error"}
)

// WriteXLSX writes the report as a workbook. The failures sheet is only
// present when the report has failures.
func WriteXLSX(w io.Writer, report *models.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCode); err != nil {
		return err
	}
	if err := writeCodeSheet(f, report.CodeStats); err != nil {
		return fmt.Errorf("write %s sheet: %w", SheetCode, err)
	}

	if _, err := f.NewSheet(SheetCommits); err != nil {
		return err
	}
	if err := writeCommitsSheet(f, report.CommitStats); err != nil {
		return fmt.Errorf("write %s sheet: %w", SheetCommits, err)
	}

	if len(report.FailureStats) > 0 {
		if _, err := f.NewSheet(SheetFailures); err != nil {
			return err
		}
		if err := writeFailuresSheet(f, report.FailureStats); err != nil {
			return fmt.Errorf("write %s sheet: %w", SheetFailures, err)
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeCodeSheet(f *excelize.File, stats []models.CodeStat) error {
	if err := setRow(f, SheetCode, 1, codeHeader); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 2
	for _, total := range stats {
		if err := setRow(f, SheetCode, row, codeRow(total)); err != nil {
			return err
		}
		if err := f.SetRowStyle(SheetCode, row, row, bold); err != nil {
			return err
		}
		row++

		for _, child := range total.Children {
			if err := setRow(f, SheetCode, row, codeRow(child)); err != nil {
				return err
			}
			if err := f.SetRowOutlineLevel(SheetCode, row, 1); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func codeRow(cs models.CodeStat) []any {
	return []any{cs.Author, cs.Email, cs.Project, cs.Commits, cs.Additions, cs.Deletions, cs.Lines, cs.Files, cs.Size}
}

func writeCommitsSheet(f *excelize.File, commits []models.CommitStat) error {
	if err := setRow(f, SheetCommits, 1, commitsHeader); err != nil {
		return err
	}
	for i, c := range commits {
		values := []any{c.Author, c.Email, c.Project, c.Branch, c.Tag, c.CommittedDate, c.Message}
		if err := setRow(f, SheetCommits, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeFailuresSheet(f *excelize.File, failures []models.FailureRecord) error {
	if err := setRow(f, SheetFailures, 1, failureHeader); err != nil {
		return err
	}
	for i, r := range failures {
		values := []any{r.Operation, deref(r.ProjectName), deref(r.Author), r.URL, r.Error}
		if err := setRow(f, SheetFailures, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
