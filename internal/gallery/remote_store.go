package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wallgrid/internal/backend"
)

// DocumentAPI is the slice of the backend document surface the remote store
// needs.
type DocumentAPI interface {
	CreateDocument(ctx context.Context, collectionID, documentID string, data any) error
	ListDocuments(ctx context.Context, collectionID string, queries ...backend.Query) (*backend.DocumentList, error)
}

// RemoteStore keeps catalog documents in the backend's document database.
type RemoteStore struct {
	db         DocumentAPI
	wallpapers string
	likes      string
	favorites  string
}

// NewRemoteStore binds a RemoteStore to its collections.
func NewRemoteStore(db DocumentAPI, wallpapersCol, likesCol, favoritesCol string) *RemoteStore {
	return &RemoteStore{
		db:         db,
		wallpapers: wallpapersCol,
		likes:      likesCol,
		favorites:  favoritesCol,
	}
}

// wallpaperDoc is the wire schema of the wallpapers collection.
type wallpaperDoc struct {
	ID          string   `json:"$id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"imageUrl"`
	FileID      string   `json:"fileId"`
	FileName    string   `json:"fileName"`
	FileSize    int64    `json:"fileSize"`
	MimeType    string   `json:"mimeType"`
	Owner       string   `json:"owner"`
	CreatedAt   string   `json:"createdAt"`
}

// CreateWallpaper writes a new catalog document.
func (r *RemoteStore) CreateWallpaper(ctx context.Context, wallpaper Wallpaper) error {
	data := map[string]any{
		"title":       wallpaper.Title,
		"description": wallpaper.Description,
		"category":    wallpaper.Category,
		"tags":        wallpaper.Tags,
		"imageUrl":    wallpaper.ImageURL,
		"fileId":      wallpaper.FileID,
		"fileName":    wallpaper.FileName,
		"fileSize":    wallpaper.FileSize,
		"mimeType":    wallpaper.MimeType,
		"owner":       wallpaper.Owner,
		"likes":       0,
		"favorites":   0,
		"createdAt":   wallpaper.CreatedAt.UTC().Format(time.RFC3339),
	}

	if err := r.db.CreateDocument(ctx, r.wallpapers, wallpaper.ID, data); err != nil {
		return fmt.Errorf("create wallpaper document: %w", err)
	}
	return nil
}

// SearchWallpapers pages through catalog documents, newest first, with an
// optional disjunctive full-text filter across title, tags and category.
func (r *RemoteStore) SearchWallpapers(ctx context.Context, keyword string, limit, offset int) ([]Wallpaper, error) {
	queries := []backend.Query{
		backend.OrderDesc(backend.AttrCreatedAt),
		backend.Limit(limit),
		backend.Offset(offset),
	}
	if keyword != "" {
		queries = append(queries, backend.Or(
			backend.Search("title", keyword),
			backend.Search("tags", keyword),
			backend.Search("category", keyword),
		))
	}

	list, err := r.db.ListDocuments(ctx, r.wallpapers, queries...)
	if err != nil {
		return nil, fmt.Errorf("list wallpaper documents: %w", err)
	}

	wallpapers := make([]Wallpaper, 0, len(list.Documents))
	for _, raw := range list.Documents {
		var doc wallpaperDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode wallpaper document: %w", err)
		}
		wallpapers = append(wallpapers, Wallpaper{
			ID:          doc.ID,
			Title:       doc.Title,
			Description: doc.Description,
			Category:    doc.Category,
			Tags:        doc.Tags,
			ImageURL:    doc.ImageURL,
			FileID:      doc.FileID,
			FileName:    doc.FileName,
			FileSize:    doc.FileSize,
			MimeType:    doc.MimeType,
			Owner:       doc.Owner,
			CreatedAt:   parseTimestamp(doc.CreatedAt),
		})
	}
	return wallpapers, nil
}

// CountLikes counts like relations via the list endpoint's total.
func (r *RemoteStore) CountLikes(ctx context.Context, wallpaperID string) (int64, error) {
	return r.countRelations(ctx, r.likes, wallpaperID)
}

// CountFavorites counts favorite relations via the list endpoint's total.
func (r *RemoteStore) CountFavorites(ctx context.Context, wallpaperID string) (int64, error) {
	return r.countRelations(ctx, r.favorites, wallpaperID)
}

func (r *RemoteStore) countRelations(ctx context.Context, collection, wallpaperID string) (int64, error) {
	list, err := r.db.ListDocuments(ctx, collection,
		backend.Equal("wallpaperId", wallpaperID),
		backend.Limit(1),
	)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return list.Total, nil
}
