package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/agrosafe/farmguard/middleware"
	"github.com/agrosafe/farmguard/pkg/risk"
)

// ExportRegister renders the current risk register as an Excel download:
// one sheet for the entries, one for the score and grouped counts.
func (h *RiskHandler) ExportRegister(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	equipment, checklists, tasks, _ := h.loadFeeds(userID)
	entries, _ := risk.Aggregate(equipment, checklists, tasks, time.Now().UTC())
	summary := risk.Score(entries)

	f, err := buildRegisterWorkbook(entries, summary)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate Excel file")
		return
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to write Excel file")
		return
	}

	filename := fmt.Sprintf("risk_register_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func buildRegisterWorkbook(entries []risk.Entry, summary risk.Summary) (*excelize.File, error) {
	f := excelize.NewFile()

	const register = "Risk Register"
	f.SetSheetName("Sheet1", register)
	headers := []string{"ID", "Category", "Title", "Type", "Severity", "Status", "Date", "Notes"}
	for i, hname := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(register, cell, hname)
	}
	for row, e := range entries {
		date := ""
		if !e.Date.IsZero() {
			date = e.Date.Format("2006-01-02")
		}
		values := []interface{}{e.ID, e.Category, e.Title, e.Type, e.Severity, e.Status, date, e.Notes}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(register, cell, v)
		}
	}

	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}
	f.SetCellValue(sheet, "A1", "Safety Score")
	f.SetCellValue(sheet, "B1", summary.SafetyScore)
	row := 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "By Severity")
	row++
	for _, b := range summary.BySeverity {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.Count)
		row++
	}
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "By Category")
	row++
	for _, b := range summary.ByCategory {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.Count)
		row++
	}

	return f, nil
}
