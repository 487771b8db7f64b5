package http

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"weighbridge-server/internal/storage"
)

// ImageHandler serves captured weighment images by file name
type ImageHandler struct {
	images storage.ImageStore
}

func NewImageHandler(images storage.ImageStore) *ImageHandler {
	return &ImageHandler{images: images}
}

// HandleDownload streams /uploads/{name}
func (h *ImageHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" {
		http.Error(w, "Missing image name", http.StatusBadRequest)
		return
	}

	file, err := h.images.Open(name)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	// Determine content type from file extension
	contentType := "application/octet-stream"
	switch filepath.Ext(name) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".gif":
		contentType = "image/gif"
	case ".webp":
		contentType = "image/webp"
	}

	w.Header().Set("Content-Type", contentType)
	// Names are unique per capture, so a stored image never changes.
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")

	io.Copy(w, file)
}
