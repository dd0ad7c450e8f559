package gallery

import (
	"context"
	"errors"

	"wallgrid/internal/backend"
)

// ErrUpload is returned when the storage write of an upload fails.
var ErrUpload = errors.New("wallpaper upload failed")

// MetadataStore persists and queries wallpaper catalog documents and the
// like/favorite relations.
type MetadataStore interface {
	CreateWallpaper(ctx context.Context, wallpaper Wallpaper) error
	// SearchWallpapers returns documents ordered by creation time descending.
	// An empty keyword imposes no filter.
	SearchWallpapers(ctx context.Context, keyword string, limit, offset int) ([]Wallpaper, error)
	CountLikes(ctx context.Context, wallpaperID string) (int64, error)
	CountFavorites(ctx context.Context, wallpaperID string) (int64, error)
}

// ObjectStorage is the slice of the backend storage surface the catalog needs.
type ObjectStorage interface {
	CreateFile(ctx context.Context, id, name, mimeType string, data []byte) (*backend.File, error)
	ListFiles(ctx context.Context, queries ...backend.Query) (*backend.FileList, error)
	DeleteFile(ctx context.Context, id string) error
	PreviewURL(id string, width, height int) string
}
