package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

const vpicURL = "https://vpic.nhtsa.dot.gov/api/vehicles/decodevin/%s?format=json"

var vinClient = &http.Client{Timeout: 10 * time.Second}

// vPIC variable IDs for the fields we care about.
const (
	vpicModelYear = 29
	vpicMake      = 26
	vpicModel     = 28
	vpicTrim      = 38
	vpicSeries    = 34
)

type vpicResponse struct {
	Results []struct {
		VariableID int    `json:"VariableId"`
		Value      string `json:"Value"`
	} `json:"Results"`
}

// VINDecodeResult is the subset of the NHTSA decode we hand to the client.
type VINDecodeResult struct {
	Year      string `json:"year"`
	MakeModel string `json:"make_model"`
}

// DecodeVIN proxies the NHTSA vPIC decoder so the browser never has to
// talk to it cross-origin. Only a complete year+make+model decode counts;
// partial results return an empty body so the client leaves its form alone.
// GET /api/v1/decodevin/{vin}
func DecodeVIN(w http.ResponseWriter, r *http.Request) {
	vin := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["vin"]))
	if len(vin) != 17 {
		http.Error(w, "vin must be 17 characters", http.StatusBadRequest)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, fmt.Sprintf(vpicURL, vin), nil)
	if err != nil {
		http.Error(w, "failed to build request", http.StatusInternalServerError)
		return
	}
	resp, err := vinClient.Do(req)
	if err != nil {
		http.Error(w, "vin decoder unavailable: "+err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		http.Error(w, fmt.Sprintf("vin decoder returned %d", resp.StatusCode), http.StatusBadGateway)
		return
	}

	var decoded vpicResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		http.Error(w, "bad response from vin decoder", http.StatusBadGateway)
		return
	}

	fields := make(map[int]string)
	for _, res := range decoded.Results {
		if res.Value != "" && res.Value != "null" {
			fields[res.VariableID] = res.Value
		}
	}

	year := fields[vpicModelYear]
	make := fields[vpicMake]
	model := fields[vpicModel]
	trim := fields[vpicTrim]
	if trim == "" {
		trim = fields[vpicSeries]
	}

	w.Header().Set("Content-Type", "application/json")
	if year == "" || make == "" || model == "" {
		// Incomplete decode; the client keeps whatever the user typed.
		json.NewEncoder(w).Encode(VINDecodeResult{})
		return
	}

	makeModel := make + " " + model
	if trim != "" && !strings.Contains(makeModel, trim) {
		makeModel += " " + trim
	}
	json.NewEncoder(w).Encode(VINDecodeResult{
		Year:      year,
		MakeModel: strings.TrimSpace(makeModel),
	})
}
