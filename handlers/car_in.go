package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"gorm.io/gorm"

	"p4b.in/bodyshop/models"
)

// damageAreaRules maps description keywords to corner/side abbreviations.
// Order matters: corners are checked before generic sides.
var damageAreaRules = []struct {
	area  string
	terms []string
}{
	{"RF", []string{"right front", "r frt", "rf ", "right fender", "right headlight", "right fog", "r front"}},
	{"LF", []string{"left front", "l frt", "lf ", "left fender", "left headlight", "left fog", "l front"}},
	{"RR", []string{"right rear", "r rr", "rr ", "right quarter", "right tail", "r rear"}},
	{"LR", []string{"left rear", "l rr", "lr ", "left quarter", "left tail", "l rear"}},
}

// ExtractDamageArea guesses the damaged corner or side of the vehicle from
// the repair item descriptions. Empty when nothing matches.
func ExtractDamageArea(items []models.RepairItem) string {
	if len(items) == 0 {
		return ""
	}
	var parts []string
	for _, it := range items {
		parts = append(parts, strings.ToLower(it.Desc))
	}
	allDesc := strings.Join(parts, " ")

	areas := make(map[string]bool)
	for _, rule := range damageAreaRules {
		for _, t := range rule.terms {
			if strings.Contains(allDesc, t) {
				areas[rule.area] = true
				break
			}
		}
	}
	if containsAny(allDesc, []string{"front bumper", "grille", "hood", "radiator"}) && !areas["RF"] && !areas["LF"] {
		areas["FRT"] = true
	}
	if containsAny(allDesc, []string{"rear bumper", "trunk", "tailgate", "liftgate"}) && !areas["RR"] && !areas["LR"] {
		areas["RR"] = true
	}
	if (strings.Contains(allDesc, "left") || strings.Contains(allDesc, "l ")) && !areas["LF"] && !areas["LR"] {
		areas["L"] = true
	}
	if (strings.Contains(allDesc, "right") || (strings.Contains(allDesc, "r ") && !strings.Contains(allDesc, "r frt") && !strings.Contains(allDesc, "r rr"))) && !areas["RF"] && !areas["RR"] {
		areas["R"] = true
	}

	// Most specific wins when several matched.
	for _, p := range []string{"LF", "RF", "LR", "RR", "FRT", "L", "R"} {
		if areas[p] {
			return p
		}
	}
	return ""
}

// BuildCaseSummary builds the short register line for the monthly sheet,
// e.g. "2023 TESLA MODEL Y LF DMG".
func BuildCaseSummary(job *models.Job) string {
	makeModel := strings.ToUpper(job.VehicleMakeModel)
	area := ExtractDamageArea(job.Items)
	fields := []string{}
	if job.VehicleYear != "" {
		fields = append(fields, job.VehicleYear)
	}
	if makeModel != "" {
		fields = append(fields, makeModel)
	}
	if area != "" {
		fields = append(fields, area)
	}
	fields = append(fields, "DMG")
	return strings.Join(fields, " ")
}

func googleClientOptions() []option.ClientOption {
	if credsPath := os.Getenv("GOOGLE_CREDENTIALS_PATH"); credsPath != "" {
		return []option.ClientOption{option.WithCredentialsFile(credsPath)}
	}
	return nil
}

// findMonthlySpreadsheet searches Drive for the register sheet named after
// the current month. The shop has used a few naming formats over the years,
// so several are tried.
func findMonthlySpreadsheet(svc *drive.Service, year int, month time.Month) (string, error) {
	patterns := []string{
		fmt.Sprintf("%d-%02d", year, month),
		fmt.Sprintf("%d-%d", year, month),
		fmt.Sprintf("%d/%02d", year, month),
		fmt.Sprintf("%d/%d", year, month),
	}
	for _, name := range patterns {
		query := fmt.Sprintf("name='%s' and mimeType='application/vnd.google-apps.spreadsheet' and trashed=false", name)
		list, err := svc.Files.List().Q(query).Spaces("drive").Fields("files(id, name)").Do()
		if err != nil {
			log.Printf("⚠️ Drive search failed for %q: %v", name, err)
			continue
		}
		if len(list.Files) > 0 {
			return list.Files[0].Id, nil
		}
	}
	return "", fmt.Errorf("no spreadsheet found for %d-%02d", year, month)
}

// appendToRegister writes the plate to column C and the summary to column D
// on the first blank row. Column B carries prefilled sequence numbers, so
// rows are filled in place rather than appended.
func appendToRegister(ctx context.Context, svc *sheets.Service, spreadsheetID, plate, summary string) (int64, error) {
	meta, err := svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet: %w", err)
	}
	sheetName := "Sheet1"
	if len(meta.Sheets) > 0 {
		sheetName = meta.Sheets[0].Properties.Title
	}

	col, err := svc.Spreadsheets.Values.Get(spreadsheetID, fmt.Sprintf("'%s'!D:D", sheetName)).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read column D: %w", err)
	}

	// Row 1 is the header.
	row := int64(2)
	found := false
	for i, cells := range col.Values {
		if i == 0 {
			continue
		}
		if len(cells) == 0 || strings.TrimSpace(fmt.Sprint(cells[0])) == "" {
			row = int64(i + 1)
			found = true
			break
		}
	}
	if !found && len(col.Values) >= 2 {
		row = int64(len(col.Values) + 1)
	}

	rangeName := fmt.Sprintf("'%s'!C%d:D%d", sheetName, row, row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{plate, summary}}}
	_, err = svc.Spreadsheets.Values.Update(spreadsheetID, rangeName, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("write register row: %w", err)
	}
	return row, nil
}

// FileCarIn records the vehicle's arrival in the monthly register sheet and
// marks the job as filed. POST /api/v1/jobs/{id}/file-car-in
func FileCarIn(w http.ResponseWriter, r *http.Request) {
	job, ok := loadJob(w, r)
	if !ok {
		return
	}
	if job.CarFiledIn {
		http.Error(w, "car already filed in", http.StatusConflict)
		return
	}
	if job.VehiclePlate == "" {
		http.Error(w, "job has no plate to file", http.StatusBadRequest)
		return
	}

	opts := googleClientOptions()
	driveSvc, err := drive.NewService(r.Context(), opts...)
	if err != nil {
		http.Error(w, "drive service unavailable: "+err.Error(), http.StatusBadGateway)
		return
	}
	sheetsSvc, err := sheets.NewService(r.Context(), opts...)
	if err != nil {
		http.Error(w, "sheets service unavailable: "+err.Error(), http.StatusBadGateway)
		return
	}

	now := time.Now()
	spreadsheetID, err := findMonthlySpreadsheet(driveSvc, now.Year(), now.Month())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	summary := BuildCaseSummary(job)
	row, err := appendToRegister(r.Context(), sheetsSvc, spreadsheetID, job.VehiclePlate, summary)
	if err != nil {
		http.Error(w, "failed to file car-in: "+err.Error(), http.StatusBadGateway)
		return
	}

	engine := NewWorkflowEngine()
	updated, err := engine.MarkCarFiledIn(job.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "job not found", http.StatusNotFound)
		} else {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	log.Printf("✅ Filed car-in for job %s at row %d (%s)", job.ID, row, summary)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"summary": summary,
		"row":     row,
		"job":     toJobView(*updated),
	})
}
