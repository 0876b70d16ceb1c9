package http

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"

	"sendbox-backend/internal/service"
)

const maxMultipartMemory = 32 << 20 // 32 MB

func pathID(r *http.Request) (int32, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

func pagination(r *http.Request) (page, pageSize int32) {
	page = 1
	pageSize = 20
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}

// formFiles converts a multipart field into photo uploads. The file
// handles stay open until the request body is closed, so services must
// consume them before returning.
func formFiles(form *multipart.Form, field string) []service.PhotoUpload {
	var uploads []service.PhotoUpload
	for _, fh := range form.File[field] {
		f, err := fh.Open()
		if err != nil {
			continue
		}
		uploads = append(uploads, service.PhotoUpload{
			FileName:    filepath.Base(fh.Filename),
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		})
	}
	return uploads
}

func formFile(form *multipart.Form, field string) *service.PhotoUpload {
	uploads := formFiles(form, field)
	if len(uploads) == 0 {
		return nil
	}
	return &uploads[0]
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleFileDownload serves files persisted by local storage. Keys are
// validated by the storage layer against path traversal.
func (s *Server) handleFileDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeBadRequest(w, "missing key parameter")
		return
	}

	f, err := s.store.Open(key)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	case ".pdf":
		contentType = "application/pdf"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	io.Copy(w, f)
}
