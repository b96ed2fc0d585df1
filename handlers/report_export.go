package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"p4b.in/bodyshop/config"
	"p4b.in/bodyshop/models"
)

var exportHeader = []string{
	"Stage", "Customer", "Phone", "Year", "Make/Model", "Plate", "VIN",
	"Start Date", "End Date", "Items", "Notes", "Created",
}

func exportRow(job *models.Job) []string {
	var items []string
	for _, it := range job.Items.SortedForDisplay() {
		items = append(items, fmt.Sprintf("%s: %s", it.Type, it.Desc))
	}
	return []string{
		job.Stage.Info().Label,
		job.CustomerName,
		job.CustomerPhone,
		job.VehicleYear,
		job.VehicleMakeModel,
		job.VehiclePlate,
		job.VehicleVIN,
		job.StartDate,
		job.EndDate,
		strings.Join(items, "; "),
		job.Notes,
		job.CreatedAt.Format("2006-01-02"),
	}
}

// exportJobs loads the board in listing order, honoring the same q/stage
// filters as the listing endpoint. Writes the error response itself and
// returns false when the export cannot proceed.
func exportJobs(w http.ResponseWriter, r *http.Request) ([]models.Job, bool) {
	stage := models.Stage(r.URL.Query().Get("stage"))
	if stage != "" && !stage.Valid() {
		http.Error(w, "invalid stage filter", http.StatusBadRequest)
		return nil, false
	}

	var jobs []models.Job
	if err := config.DB.Find(&jobs).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	jobs = models.FilterJobs(jobs, r.URL.Query().Get("q"), stage)
	models.SortJobs(jobs)
	return jobs, true
}

// ExportJobsToExcel downloads the work-order register as a spreadsheet.
// GET /api/v1/jobs/export/excel
func ExportJobsToExcel(w http.ResponseWriter, r *http.Request) {
	jobs, ok := exportJobs(w, r)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Work Orders"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	for col, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	for rowIdx := range jobs {
		row := exportRow(&jobs[rowIdx])
		for col, val := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			f.SetCellValue(sheet, cell, val)
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		http.Error(w, "failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("work_orders_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

// ExportJobsToCSV downloads the work-order register as CSV.
// GET /api/v1/jobs/export/csv
func ExportJobsToCSV(w http.ResponseWriter, r *http.Request) {
	jobs, ok := exportJobs(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Write(exportHeader)
	for i := range jobs {
		cw.Write(exportRow(&jobs[i]))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		http.Error(w, "failed to write CSV file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("work_orders_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
