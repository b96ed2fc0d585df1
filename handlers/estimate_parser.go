package handlers

import (
	"regexp"
	"strings"

	"p4b.in/bodyshop/models"
)

// EstimateData is what we manage to pull out of a Mitchell estimate PDF.
// Every field is best-effort; the client prefills the intake form with
// whatever was found and the user fixes the rest.
type EstimateData struct {
	Customer struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"customer"`
	Vehicle struct {
		Year      string `json:"year"`
		MakeModel string `json:"makeModel"`
		Plate     string `json:"plate"`
		VIN       string `json:"vin"`
	} `json:"vehicle"`
	Items []models.RepairItem `json:"items"`
	Notes string              `json:"notes"`
}

var (
	// 17 characters, no I, O or Q.
	vinRe   = regexp.MustCompile(`VIN\s*\n?\s*([A-HJ-NPR-Z0-9]{17})`)
	plateRe = regexp.MustCompile(`License\s*\n?\s*([A-Z]{2}-[A-Z0-9 ]+)`)

	makesPattern = `(Honda|Toyota|Ford|Chevrolet|Nissan|Hyundai|Kia|BMW|Mercedes-Benz|Mercedes|Audi|Lexus|Mazda|Subaru|Volkswagen|Jeep|Dodge|GMC|Ram|Acura|Infiniti|Volvo|Porsche|Land\s*Rover|Range\s*Rover|Cadillac|Lincoln|Buick|Chrysler|Tesla|Rivian|Lucid)`
	vehicleRe    = regexp.MustCompile(`(?i)((?:19|20)\d{2})\s+` + makesPattern + `\s+([^\n]+?)(?:\s+\d+\s*Door|\s+Van|\s+\d+\.\d+L)`)
	wheelbaseRe  = regexp.MustCompile(`(?i)\s+\d+["']?\s*WB.*$`)

	digitsOnlyRe = regexp.MustCompile(`^[\d.#*$]+$`)
	partNumRe    = regexp.MustCompile(`^[A-Z0-9 -]+$`)
)

var bodyPartTerms = []string{
	"bumper", "cover", "grille", "hood", "fender", "door", "panel",
	"rocker", "quarter", "trunk", "tailgate", "mirror", "lamp",
	"garnish", "molding", "bracket", "support", "assembly", "guard",
	"handle", "mudguard", "wheel opening", "belt", "sensor", "pump",
	"glass", "absorber", "condenser", "radiator", "frame", "plate",
	"shield", "lock", "latch", "hinge", "regulator", "motor", "pillar",
}

// Feature-list lines from the vehicle options block that would otherwise
// match a body part term.
var excludeTerms = []string{
	"automatic headlights", "power door locks", "power remote", "power steering",
	"power windows", "heated mirror", "lumbar support", "daytime running",
	"tonneau cover", "air conditioning", "cruise control", "steering wheel",
	"bluetooth", "keyless", "4wd", "awd", "cyl gas", "door utility", "audio control",
}

// Section headers in the estimate that name a part group, not a line item.
var sectionHeaders = map[string]bool{
	"Front Bumper": true, "Front Fender": true, "Front Door": true,
	"Rear Bumper": true, "Hood": true, "Headlamps": true, "Fog Lamps": true,
	"Front Lamps": true, "Grille": true, "Seat Belts": true, "Air Bags": true,
	"Cooling": true, "Radiator Support": true, "Air Bag System": true,
	"Garnish": true, "Assembly": true, "Support": true, "Bracket": true,
}

var endKeywords = []string{
	"Remove", "Replace", "Blend", "Refinish", "Repair", "Overhaul",
	"Body", "INC", "Existing", "Aftermarket", "New", "Yes", "No",
}

// ExtractFromMitchellEstimate parses the plain text of a Mitchell estimate
// PDF into intake data. The format is column-oriented, so extraction walks
// line by line looking for part descriptions and classifies each one as
// Blend, Replace or Repair from the operation words near it.
func ExtractFromMitchellEstimate(fullText string) EstimateData {
	var result EstimateData
	result.Items = []models.RepairItem{}

	if m := vinRe.FindStringSubmatch(fullText); m != nil {
		result.Vehicle.VIN = m[1]
	}
	if m := plateRe.FindStringSubmatch(fullText); m != nil {
		result.Vehicle.Plate = strings.TrimSpace(m[1])
	}
	if m := vehicleRe.FindStringSubmatch(fullText); m != nil {
		result.Vehicle.Year = m[1]
		make := strings.TrimSpace(m[2])
		model := strings.TrimSpace(wheelbaseRe.ReplaceAllString(strings.TrimSpace(m[3]), ""))
		result.Vehicle.MakeModel = make + " " + model
	}

	var lines []string
	for _, l := range strings.Split(fullText, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	// Skip the header block before the line-item table.
	lineItemsStart := 0
	for i, line := range lines {
		if strings.Contains(line, "Line #") {
			lineItemsStart = i
			break
		}
		context := line
		if i > 0 {
			context = lines[i-1] + " " + context
		}
		if i+1 < len(lines) {
			context += " " + lines[i+1]
		}
		if strings.Contains(line, "Description") && strings.Contains(context, "Operation") {
			lineItemsStart = i
			break
		}
	}

	i := lineItemsStart
	for i < len(lines) {
		line := lines[i]
		lower := strings.ToLower(line)

		if containsAny(lower, excludeTerms) {
			i++
			continue
		}
		hasPart := containsAny(lower, bodyPartTerms) ||
			strings.Contains(lower, "air bag") ||
			strings.Contains(lower, "seat belt") ||
			strings.Contains(lower, "w/shield")
		if !hasPart || sectionHeaders[line] {
			i++
			continue
		}

		// Operation words show up within a few lines of the description.
		end := i + 5
		if end > len(lines) {
			end = len(lines)
		}
		searchText := strings.Join(lines[i:end], " ")

		var jobType string
		switch {
		case strings.Contains(searchText, "Blend"):
			jobType = "Blend"
		case strings.Contains(searchText, "Remove /") && strings.Contains(searchText, "Replace"):
			jobType = "Replace"
		case strings.Contains(searchText, "Repair"):
			jobType = "Repair"
		default:
			i++
			continue
		}

		desc := line
		for _, kw := range []string{"Remove /", "Remove", "Replace"} {
			if idx := strings.Index(desc, kw); idx >= 0 {
				desc = strings.TrimSpace(desc[:idx])
			}
		}

		// Descriptions sometimes wrap onto the next line.
		linesConsumed := 0
		for j := i + 1; j < len(lines) && j < i+3; j++ {
			next := lines[j]
			if next == "" || isEndKeyword(next) || digitsOnlyRe.MatchString(next) {
				break
			}
			if len(next) > 2 && next[0] >= 'A' && next[0] <= 'Z' {
				desc = desc + " " + next
				linesConsumed++
			}
			break
		}

		if len(desc) > 3 && desc != "AUTO" && desc != "Body" && desc != "INC" && desc != "Inc" && desc != "Existing" {
			partNum := ""
			if jobType == "Replace" {
				partNum = findPartNumber(lines, i)
			}
			result.Items = append(result.Items, models.RepairItem{
				Type:    jobType,
				Desc:    desc,
				PartNum: partNum,
			})
		}

		i += 1 + linesConsumed
	}

	// Dedupe: the same part often appears once for R&R and once for refinish.
	seen := make(map[string]bool)
	unique := result.Items[:0]
	for _, item := range result.Items {
		key := item.Type + "|" + strings.ToLower(item.Desc)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, item)
		}
	}
	result.Items = unique

	return result
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func isEndKeyword(line string) bool {
	for _, kw := range endKeywords {
		if line == kw || strings.HasPrefix(line, kw) {
			return true
		}
	}
	return false
}

// findPartNumber scans the lines after a Replace item for something that
// looks like an OEM part number: uppercase letters and digits, at least one
// digit, not a price or a column label.
func findPartNumber(lines []string, start int) string {
	skip := map[string]bool{
		"Body": true, "Refinish": true, "New": true, "Aftermarket": true,
		"Recycled": true, "Existing": true, "Remove /": true, "Replace": true,
	}
	notPartNums := map[string]bool{
		"Order": true, "Labor": true, "Total": true, "Sublet": true, "Notes": true,
	}
	end := start + 15
	if end > len(lines) {
		end = len(lines)
	}
	for k := start; k < end; k++ {
		line := lines[k]
		if skip[line] || digitsOnlyRe.MatchString(line) {
			continue
		}
		if len(line) >= 3 && partNumRe.MatchString(line) && hasDigit(line) && !notPartNums[line] {
			partNum := line
			// Part numbers occasionally wrap; glue a short continuation on.
			if k+1 < len(lines) {
				next := lines[k+1]
				if partNumRe.MatchString(next) && len(next) < 15 &&
					!strings.HasPrefix(next, "$") && !strings.HasPrefix(next, "(") &&
					!skip[next] && next != "Yes" && next != "No" &&
					!(len(next) <= 3 && digitsOnlyRe.MatchString(next)) {
					partNum = partNum + " " + next
				}
			}
			return partNum
		}
	}
	return ""
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
