package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/storage"
)

// ImageUploader stores an image and returns its public URL.
// *storage.ImageStore implements it.
type ImageUploader interface {
	Upload(ctx context.Context, folder string, data []byte) (string, error)
}

type ImageHandler struct {
	store  ImageUploader // nil when no bucket is configured
	logger *slog.Logger
}

func NewImageHandler(store ImageUploader, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{store: store, logger: logger}
}

type imageResponse struct {
	URL string `json:"url"`
}

// HandleUpload accepts a multipart form with a "file" part and an optional
// "folder" field (recipes, avatars or steps) and returns the stored URL.
//
// HTTP: POST /api/images
func (h *ImageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, apperror.Unavailable("image uploads are not configured"))
		return
	}

	// Room for the multipart envelope around a maximum-size image.
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+64<<10)
	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, apperror.ValidationFailed("file", "image must be 5 MB or smaller"))
			return
		}
		writeError(w, apperror.ValidationFailed("file", "expected a multipart form with a file"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperror.ValidationFailed("file", "file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		writeError(w, err)
		return
	}

	folder := r.FormValue("folder")
	if folder == "" {
		folder = storage.FolderRecipes
	}

	url, err := h.store.Upload(r.Context(), folder, data)
	if err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			h.logger.Error("image upload failed",
				slog.String("folder", folder),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, err)
		return
	}

	h.logger.Info("image uploaded", slog.String("url", url), slog.String("profileID", callerID(r)))
	writeJSON(w, http.StatusCreated, imageResponse{URL: url})
}
