package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"p4b.in/bodyshop/config"
	"p4b.in/bodyshop/models"
)

var photoStore = NewPhotoStore()

// sanitizeCaseName turns a case name into a safe filename prefix.
func sanitizeCaseName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "case"
	}
	return out
}

// nextPhotoNumber returns one past the highest number already used, so
// deleting a photo never causes a name collision on the next upload.
func nextPhotoNumber(photos models.PhotoList, prefix string) int {
	max := 0
	for _, p := range photos {
		var n int
		if _, err := fmt.Sscanf(p.Name, prefix+"_%d.jpg", &n); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

func loadCase(w http.ResponseWriter, r *http.Request) (*models.InsuranceCase, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid case id", http.StatusBadRequest)
		return nil, false
	}
	var c models.InsuranceCase
	if err := config.DB.First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "case not found", http.StatusNotFound)
		} else {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return &c, true
}

// ListInsuranceCases returns all cases, most recently touched first.
func ListInsuranceCases(w http.ResponseWriter, r *http.Request) {
	var cases []models.InsuranceCase
	if err := config.DB.Order("updated_at DESC").Find(&cases).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cases)
}

type caseInput struct {
	Name string `json:"name"`
}

// CreateInsuranceCase opens a new photo case.
func CreateInsuranceCase(w http.ResponseWriter, r *http.Request) {
	var in caseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	c := models.InsuranceCase{
		Name:   strings.TrimSpace(in.Name),
		Photos: models.PhotoList{},
	}
	if err := config.DB.Create(&c).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

// GetInsuranceCase returns one case with its photo list.
func GetInsuranceCase(w http.ResponseWriter, r *http.Request) {
	c, ok := loadCase(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

// RenameInsuranceCase updates the case name. Existing photo files keep
// their old prefix; only new uploads use the new name.
func RenameInsuranceCase(w http.ResponseWriter, r *http.Request) {
	c, ok := loadCase(w, r)
	if !ok {
		return
	}
	var in caseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	c.Name = strings.TrimSpace(in.Name)
	if err := config.DB.Save(c).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

// DeleteInsuranceCase removes the case record and every stored photo blob.
func DeleteInsuranceCase(w http.ResponseWriter, r *http.Request) {
	c, ok := loadCase(w, r)
	if !ok {
		return
	}
	if err := photoStore.DeleteCase(r.Context(), c.ID.String()); err != nil {
		http.Error(w, "failed to delete photos: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := config.DB.Delete(c).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadCasePhotos accepts one or more photos in a multipart form and
// appends them to the case, named "{case_name}_{n}.jpg".
func UploadCasePhotos(w http.ResponseWriter, r *http.Request) {
	c, ok := loadCase(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		files = r.MultipartForm.File["file"]
	}
	if len(files) == 0 {
		http.Error(w, "missing photos field", http.StatusBadRequest)
		return
	}

	prefix := sanitizeCaseName(c.Name)
	n := nextPhotoNumber(c.Photos, prefix)
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, "failed to read upload: "+err.Error(), http.StatusBadRequest)
			return
		}
		name := fmt.Sprintf("%s_%d.jpg", prefix, n)
		url, err := photoStore.Save(r.Context(), c.ID.String(), name, f)
		f.Close()
		if err != nil {
			http.Error(w, "failed to store photo: "+err.Error(), http.StatusInternalServerError)
			return
		}
		c.Photos = append(c.Photos, models.InsurancePhoto{
			ID:         uuid.NewString(),
			Name:       name,
			URL:        url,
			UploadedAt: models.JSONTime(time.Now()),
		})
		n++
	}

	if err := config.DB.Save(c).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

// DownloadCasePhoto streams one stored photo back to the client.
func DownloadCasePhoto(w http.ResponseWriter, r *http.Request) {
	c, ok := loadCase(w, r)
	if !ok {
		return
	}
	photoID := mux.Vars(r)["photoId"]
	var photo *models.InsurancePhoto
	for i := range c.Photos {
		if c.Photos[i].ID == photoID {
			photo = &c.Photos[i]
			break
		}
	}
	if photo == nil {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}

	rc, err := photoStore.Open(r.Context(), c.ID.String(), photo.Name)
	if err != nil {
		http.Error(w, "failed to open photo: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", photo.Name))
	io.Copy(w, rc)
}

// DeleteCasePhoto removes one photo from the case and its stored blob.
func DeleteCasePhoto(w http.ResponseWriter, r *http.Request) {
	c, ok := loadCase(w, r)
	if !ok {
		return
	}
	photoID := mux.Vars(r)["photoId"]
	idx := -1
	for i := range c.Photos {
		if c.Photos[i].ID == photoID {
			idx = i
			break
		}
	}
	if idx < 0 {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}

	if err := photoStore.Delete(r.Context(), c.ID.String(), c.Photos[idx].Name); err != nil {
		http.Error(w, "failed to delete photo: "+err.Error(), http.StatusInternalServerError)
		return
	}
	c.Photos = append(c.Photos[:idx], c.Photos[idx+1:]...)
	if err := config.DB.Save(c).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}
