package handlers

import (
	"testing"

	"p4b.in/bodyshop/models"
)

func items(descs ...string) []models.RepairItem {
	out := make([]models.RepairItem, len(descs))
	for i, d := range descs {
		out[i] = models.RepairItem{Type: "Repair", Desc: d}
	}
	return out
}

func TestExtractDamageArea(t *testing.T) {
	tests := []struct {
		name  string
		items []models.RepairItem
		want  string
	}{
		{"no items", nil, ""},
		{"left front fender", items("Left Fender Panel"), "LF"},
		{"right front", items("R Frt Bumper Cover"), "RF"},
		{"left quarter", items("Left Quarter Panel"), "LR"},
		{"right tail", items("Right Tail Lamp"), "RR"},
		{"front only", items("Front Bumper Cover", "Grille"), "FRT"},
		{"rear only", items("Rear Bumper Cover"), "RR"},
		{"corner beats general front", items("Left Headlight", "Front Bumper Cover"), "LF"},
		{"nothing matches", items("Roof Panel"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDamageArea(tt.items); got != tt.want {
				t.Errorf("ExtractDamageArea() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildCaseSummary(t *testing.T) {
	job := &models.Job{
		VehicleYear:      "2023",
		VehicleMakeModel: "Tesla Model Y",
		Items:            models.ItemList(items("Left Fender Panel")),
	}
	if got := BuildCaseSummary(job); got != "2023 TESLA MODEL Y LF DMG" {
		t.Errorf("BuildCaseSummary() = %q", got)
	}

	bare := &models.Job{VehicleMakeModel: "Honda Accord"}
	if got := BuildCaseSummary(bare); got != "HONDA ACCORD DMG" {
		t.Errorf("BuildCaseSummary() without year/area = %q", got)
	}
}
