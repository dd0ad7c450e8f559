package gallery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"wallgrid/internal/backend"
	"wallgrid/internal/platform/kvstore"
)

// Service wraps the remote object storage and the metadata store behind the
// catalog operations. Read paths degrade to empty results on failure so the
// browsing UI stays available.
type Service struct {
	storage ObjectStorage
	meta    MetadataStore
	store   kvstore.Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires a Service with the provided dependencies.
func NewService(storage ObjectStorage, meta MetadataStore, store kvstore.Store, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		meta:    meta,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Upload stores the raw bytes first, then writes the catalog document when
// metadata is present. A metadata failure is not rolled back: the file then
// exists without a catalog entry, and only document-backed listings miss it.
func (s *Service) Upload(ctx context.Context, data []byte, file FileInfo, metadata *UploadMetadata) (*backend.File, error) {
	uploaded, err := s.storage.CreateFile(ctx, uuid.NewString(), file.Name, file.MimeType, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	if !metadata.empty() {
		doc := Wallpaper{
			ID:          uuid.NewString(),
			Title:       metadata.Title,
			Description: metadata.Description,
			Category:    metadata.Category,
			Tags:        metadata.Tags,
			ImageURL:    s.storage.PreviewURL(uploaded.ID, previewSize, previewSize),
			FileID:      uploaded.ID,
			FileName:    file.Name,
			FileSize:    file.Size,
			MimeType:    file.MimeType,
			Owner:       s.ownerID(ctx),
			CreatedAt:   s.now().UTC(),
		}
		if doc.Title == "" {
			doc.Title = file.Name
		}
		if doc.Category == "" {
			doc.Category = defaultCategory
		}
		if doc.Tags == nil {
			doc.Tags = []string{}
		}

		if err := s.meta.CreateWallpaper(ctx, doc); err != nil {
			s.logger.Error("wallpaper metadata write failed; file persisted without catalog entry",
				"file_id", uploaded.ID, "error", err)
		}
	}

	return uploaded, nil
}

// List returns one page of raw storage objects, newest first. Any failure
// yields an empty page.
func (s *Service) List(ctx context.Context, page, limit int) []FileView {
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	list, err := s.storage.ListFiles(ctx,
		backend.OrderDesc(backend.AttrCreatedAt),
		backend.Limit(limit),
		backend.Offset(offset),
	)
	if err != nil {
		s.logger.Error("list wallpapers failed", "page", page, "error", err)
		return []FileView{}
	}

	views := make([]FileView, 0, len(list.Files))
	for _, file := range list.Files {
		view := FileView{
			ID:        file.ID,
			Name:      file.Name,
			URL:       s.storage.PreviewURL(file.ID, previewSize, previewSize),
			Width:     file.Width,
			Height:    file.Height,
			CreatedAt: parseTimestamp(file.CreatedAt),
		}
		if view.Width == 0 {
			view.Width = defaultWidth
		}
		if view.Height == 0 {
			view.Height = defaultHeight
		}
		views = append(views, view)
	}
	return views
}

// Search returns one page of catalog documents matching keyword across
// title, tags and category. An empty keyword is equivalent to List over
// documents. Any failure yields an empty page.
func (s *Service) Search(ctx context.Context, keyword string, page, limit int) []Wallpaper {
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	wallpapers, err := s.meta.SearchWallpapers(ctx, strings.TrimSpace(keyword), limit, offset)
	if err != nil {
		s.logger.Error("search wallpapers failed", "keyword", keyword, "page", page, "error", err)
		return []Wallpaper{}
	}
	if wallpapers == nil {
		wallpapers = []Wallpaper{}
	}
	return wallpapers
}

// Delete removes the storage object and reports success. The catalog
// document, if any, is left behind.
func (s *Service) Delete(ctx context.Context, fileID string) bool {
	if err := s.storage.DeleteFile(ctx, fileID); err != nil {
		s.logger.Error("delete wallpaper failed", "file_id", fileID, "error", err)
		return false
	}
	return true
}

// PreviewURL builds the deterministic transformation URL for a stored file.
func (s *Service) PreviewURL(fileID string, width, height int) string {
	if width <= 0 {
		width = previewSize
	}
	if height <= 0 {
		height = previewSize
	}
	return s.storage.PreviewURL(fileID, width, height)
}

// ownerID reads the locally persisted user identifier, defaulting to
// anonymous when absent or unreadable.
func (s *Service) ownerID(ctx context.Context) string {
	value, ok, err := s.store.Get(ctx, kvstore.KeyUserID)
	if err != nil {
		s.logger.Debug("owner lookup failed", "error", err)
		return anonymousOwner
	}
	if !ok || value == "" {
		return anonymousOwner
	}
	return value
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return page, limit
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
