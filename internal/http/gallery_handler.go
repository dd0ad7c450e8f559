package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"wallgrid/internal/gallery"
)

const maxUploadBytes int64 = 20 << 20

// GalleryHandler exposes the wallpaper catalog endpoints.
type GalleryHandler struct {
	gallery *gallery.Service
	stats   *gallery.StatsService
	logger  *slog.Logger
}

// NewGalleryHandler creates a handler.
func NewGalleryHandler(gallerySvc *gallery.Service, statsSvc *gallery.StatsService, logger *slog.Logger) *GalleryHandler {
	return &GalleryHandler{gallery: gallerySvc, stats: statsSvc, logger: logger}
}

// List returns one page of stored wallpapers, newest first.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePaging(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	wallpapers := h.gallery.List(r.Context(), page, limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"wallpapers": wallpapers,
		"page":       page,
	})
}

// Search returns one page of catalog documents matching the keyword.
func (h *GalleryHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePaging(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	keyword := strings.TrimSpace(r.URL.Query().Get("q"))
	results := h.gallery.Search(r.Context(), keyword, page, limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"wallpapers": results,
		"page":       page,
	})
}

// Upload stores a wallpaper file with optional catalog metadata.
func (h *GalleryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload is too large (max %d bytes)", maxErr.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "wallpaper file is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable wallpaper file")
		return
	}

	info := gallery.FileInfo{
		Name:     header.Filename,
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
	}

	metadata := parseUploadMetadata(r)

	uploaded, err := h.gallery.Upload(r.Context(), data, info, metadata)
	if err != nil {
		if errors.Is(err, gallery.ErrUpload) {
			h.logger.Error("wallpaper upload rejected", "error", err)
			writeError(w, http.StatusBadGateway, "upload failed")
			return
		}
		h.logger.Error("wallpaper upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	writeJSON(w, http.StatusCreated, uploaded)
}

// Delete removes a stored wallpaper file.
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "id")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if !h.gallery.Delete(r.Context(), fileID) {
		writeError(w, http.StatusNotFound, "wallpaper not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats returns the live like and favorite counts for a wallpaper.
func (h *GalleryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	wallpaperID := chi.URLParam(r, "id")
	if wallpaperID == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	stats := h.stats.WallpaperStats(r.Context(), wallpaperID)
	writeJSON(w, http.StatusOK, stats)
}

// Preview returns the transformation URL for a stored wallpaper.
func (h *GalleryHandler) Preview(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "id")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	width, err := parseDimension(r.URL.Query(), "width")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := parseDimension(r.URL.Query(), "height")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url": h.gallery.PreviewURL(fileID, width, height),
	})
}

func parseUploadMetadata(r *http.Request) *gallery.UploadMetadata {
	metadata := &gallery.UploadMetadata{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Category:    strings.TrimSpace(r.FormValue("category")),
	}
	if rawTags := strings.TrimSpace(r.FormValue("tags")); rawTags != "" {
		for _, tag := range strings.Split(rawTags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				metadata.Tags = append(metadata.Tags, tag)
			}
		}
	}
	if metadata.Title == "" && metadata.Description == "" && metadata.Category == "" && len(metadata.Tags) == 0 {
		return nil
	}
	return metadata
}

func parsePaging(values url.Values) (int, int, error) {
	const maxPageLimit = 100

	page := 1
	if rawPage := strings.TrimSpace(values.Get("page")); rawPage != "" {
		value, err := strconv.Atoi(rawPage)
		if err != nil || value < 1 {
			return 0, 0, fmt.Errorf("invalid page")
		}
		page = value
	}

	limit := gallery.DefaultPageSize
	if rawLimit := strings.TrimSpace(values.Get("limit")); rawLimit != "" {
		value, err := strconv.Atoi(rawLimit)
		if err != nil || value < 1 || value > maxPageLimit {
			return 0, 0, fmt.Errorf("invalid limit")
		}
		limit = value
	}

	return page, limit, nil
}

func parseDimension(values url.Values, key string) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 || value > 4000 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return value, nil
}
