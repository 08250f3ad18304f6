package controllers

import (
	"net/http"

	"go-storefront/services"
)

// UploadController handles back office file uploads
type UploadController struct {
	uploads *services.UploadService
}

// NewUploadController creates a new UploadController
func NewUploadController(uploads *services.UploadService) *UploadController {
	return &UploadController{uploads: uploads}
}

// Upload stores the raw request body as ?filename= under ?folder=
func (uc *UploadController) Upload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("filename") == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Filename is required"})
		return
	}
	body, ok := readUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	url, err := uc.uploads.Upload(ctx, q.Get("folder"), q.Get("filename"), body, r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// List returns stored files under ?prefix=
func (uc *UploadController) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	objects, err := uc.uploads.List(ctx, r.URL.Query().Get("prefix"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, objects)
}

// Delete removes a stored file by its url
func (uc *UploadController) Delete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if !decodeJSON(r, &body) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := uc.uploads.Delete(ctx, body.URL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted"})
}
