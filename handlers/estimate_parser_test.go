package handlers

import "testing"

const sampleEstimateText = `Mitchell Estimate
Owner
Dana Fields
License
AB-12345 67
VIN
1HGCV1F34LA123456
2020 Honda Accord Sport 4 Door
Line #
Description
Operation
Front Bumper
Bumper Cover
Remove /
Replace
New
71101-TVA-A00
1.5
Grille Assembly
Repair
Body
2.0
Fender Panel
Blend
Refinish
1.0
Power Door Locks
Bumper Cover
Remove /
Replace
New
`

func TestExtractFromMitchellEstimate(t *testing.T) {
	got := ExtractFromMitchellEstimate(sampleEstimateText)

	if got.Vehicle.VIN != "1HGCV1F34LA123456" {
		t.Errorf("VIN = %q", got.Vehicle.VIN)
	}
	if got.Vehicle.Plate != "AB-12345 67" {
		t.Errorf("plate = %q", got.Vehicle.Plate)
	}
	if got.Vehicle.Year != "2020" {
		t.Errorf("year = %q", got.Vehicle.Year)
	}
	if got.Vehicle.MakeModel != "Honda Accord Sport" {
		t.Errorf("makeModel = %q", got.Vehicle.MakeModel)
	}

	if len(got.Items) != 3 {
		t.Fatalf("items = %+v, want 3", got.Items)
	}

	byDesc := make(map[string]string)
	for _, it := range got.Items {
		byDesc[it.Desc] = it.Type
	}
	if byDesc["Bumper Cover"] != "Replace" {
		t.Errorf("Bumper Cover type = %q, want Replace", byDesc["Bumper Cover"])
	}
	if byDesc["Grille Assembly"] != "Repair" {
		t.Errorf("Grille Assembly type = %q, want Repair", byDesc["Grille Assembly"])
	}
	if byDesc["Fender Panel"] != "Blend" {
		t.Errorf("Fender Panel type = %q, want Blend", byDesc["Fender Panel"])
	}

	// Replace items carry the part number found below them.
	for _, it := range got.Items {
		if it.Desc == "Bumper Cover" && it.PartNum != "71101-TVA-A00" {
			t.Errorf("part number = %q", it.PartNum)
		}
	}
}

func TestExtractDeduplicatesRepeatedItems(t *testing.T) {
	got := ExtractFromMitchellEstimate(sampleEstimateText)
	count := 0
	for _, it := range got.Items {
		if it.Desc == "Bumper Cover" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Bumper Cover extracted %d times, want 1", count)
	}
}

func TestExtractIgnoresFeatureLines(t *testing.T) {
	got := ExtractFromMitchellEstimate(sampleEstimateText)
	for _, it := range got.Items {
		if it.Desc == "Power Door Locks" {
			t.Error("vehicle feature line was extracted as an item")
		}
	}
}

func TestExtractEmptyText(t *testing.T) {
	got := ExtractFromMitchellEstimate("")
	if got.Vehicle.VIN != "" || len(got.Items) != 0 {
		t.Errorf("empty input produced %+v", got)
	}
}
