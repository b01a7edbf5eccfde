package excel

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/mathquiz/pkg/models"
	"github.com/xuri/excelize/v2"
)

const (
	// LeaderboardSheet holds the ranked players
	LeaderboardSheet = "Leaderboard"
	// HistorySheet holds the quiz results the report was built from
	HistorySheet = "History"
)

// Report is the data written into a workbook
type Report struct {
	Leaderboard []models.LeaderboardEntry
	History     []models.QuizResult
}

// Build creates a workbook with a leaderboard sheet and, when the report has
// history rows, a history sheet. The caller must close the file.
func Build(report Report) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", LeaderboardSheet)

	sw, err := f.NewStreamWriter(LeaderboardSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create stream writer: %w", err)
	}

	headers := []interface{}{"Rank", "Username", "Highest Score", "Total Games"}
	if err := sw.SetRow("A1", headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write leaderboard header: %w", err)
	}
	for i, e := range report.Leaderboard {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{e.Rank, sanitizeForExcel(e.Username), e.HighestScore, e.TotalGames}
		if err := sw.SetRow(cell, row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write leaderboard row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to flush leaderboard sheet: %w", err)
	}

	if len(report.History) > 0 {
		if err := writeHistory(f, report.History); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func writeHistory(f *excelize.File, history []models.QuizResult) error {
	f.NewSheet(HistorySheet)

	headers := []interface{}{"Date", "Username", "Difficulty", "Score", "Total Questions", "Percentage"}
	if err := f.SetSheetRow(HistorySheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write history header: %w", err)
	}

	for i, r := range history {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.QuizDate.UTC().Format("2006-01-02 15:04:05"),
			sanitizeForExcel(r.Username),
			r.Difficulty,
			r.Score,
			r.TotalQuestions,
			fmt.Sprintf("%.2f%%", r.Percentage()),
		}
		if err := f.SetSheetRow(HistorySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write history row %d: %w", i+2, err)
		}
	}
	return nil
}

// Write builds the workbook and writes it to w
func Write(w io.Writer, report Report) error {
	f, err := Build(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Save writes the workbook into dir under a timestamped name and returns the path
func Save(dir string, report Report, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %v", err)
	}

	f, err := Build(report)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, FileName(now))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

// FileName returns the export file name for a point in time
func FileName(now time.Time) string {
	return "leaderboard-" + now.UTC().Format("20060102-150405") + ".xlsx"
}

// sanitizeForExcel keeps player names from being read as formulas
func sanitizeForExcel(s string) string {
	if s == "" {
		return s
	}
	if strings.ContainsAny(s[:1], "=+-@") {
		return "'" + s
	}
	return s
}
