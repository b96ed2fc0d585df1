package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/ledongthuc/pdf"
)

// AnalyzeEstimate accepts a Mitchell estimate PDF and returns the extracted
// intake data. POST /api/v1/analyze, multipart field "file".
func AnalyzeEstimate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	text, err := extractPDFText(data)
	if err != nil {
		http.Error(w, "failed to read PDF: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	result := ExtractFromMitchellEstimate(text)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// extractPDFText pulls the plain text out of a digital PDF. Scanned PDFs
// come back empty; there is no OCR here.
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				buf.WriteString(word.S)
				buf.WriteByte('\n')
			}
		}
	}
	return buf.String(), nil
}
