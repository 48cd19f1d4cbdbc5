package services

import (
	"math"
	"sort"

	"github.com/alimgiray/glscope/internal/models"
)

// TotalProjectLabel is the project column of an author's total row
const TotalProjectLabel = "Total"

const bytesPerKiB = 1024

// KiB converts a byte count to kibibytes, rounding half away from zero
func KiB(bytes int64) int64 {
	return int64(math.Round(float64(bytes) / bytesPerKiB))
}

// BuildReport shapes the final author records and failure log into a
// report. Code rows are sorted by size, descending, ties broken by key so the
// output is stable for a given input.
func BuildReport(authors map[string]*models.AuthorStats, failures []models.FailureRecord) *models.Report {
	names := make([]string, 0, len(authors))
	for name := range authors {
		names = append(names, name)
	}
	sort.Strings(names)

	report := &models.Report{
		CodeStats:   make([]models.CodeStat, 0, len(authors)),
		CommitStats: []models.CommitStat{},
	}

	for _, name := range names {
		author := authors[name]
		isTotal := true

		total := models.CodeStat{
			Key:       name + "-total",
			Author:    name,
			Email:     author.AuthorEmail,
			Project:   TotalProjectLabel,
			Commits:   author.TotalCommits,
			Additions: author.Total.Additions,
			Deletions: author.Total.Deletions,
			Lines:     author.Total.Lines,
			Files:     author.Total.Files,
			Size:      KiB(author.Total.Size),
			IsTotal:   &isTotal,
			Children:  make([]models.CodeStat, 0, len(author.Projects)),
		}

		for project, ps := range author.Projects {
			total.Children = append(total.Children, models.CodeStat{
				Key:       name + "-" + project,
				Author:    name,
				Email:     author.AuthorEmail,
				Project:   project,
				Commits:   ps.Commits,
				Additions: ps.Additions,
				Deletions: ps.Deletions,
				Lines:     ps.Lines,
				Files:     ps.Files,
				Size:      KiB(ps.Size),
			})
		}
		sortBySize(total.Children)
		report.CodeStats = append(report.CodeStats, total)

		for _, detail := range author.CommitDetails {
			report.CommitStats = append(report.CommitStats, models.CommitStat{
				Author:        author.AuthorName,
				Email:         author.AuthorEmail,
				Project:       detail.Project,
				Branch:        detail.Branch,
				Tag:           detail.Tag,
				CommittedDate: detail.CommittedDate,
				Message:       detail.Message,
			})
		}
	}
	sortBySize(report.CodeStats)

	if len(failures) > 0 {
		report.FailureStats = append([]models.FailureRecord(nil), failures...)
	}

	return report
}

func sortBySize(stats []models.CodeStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Size != stats[j].Size {
			return stats[i].Size > stats[j].Size
		}
		return stats[i].Key < stats[j].Key
	})
}
