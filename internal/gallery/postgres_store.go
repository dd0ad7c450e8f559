package gallery

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresStore keeps catalog documents in a self-hosted Postgres database,
// selected by DATA_STORE=postgres.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore constructs a store backed by sqlx.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type wallpaperRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Category    string         `db:"category"`
	Tags        pq.StringArray `db:"tags"`
	ImageURL    string         `db:"image_url"`
	FileID      string         `db:"file_id"`
	FileName    string         `db:"file_name"`
	FileSize    int64          `db:"file_size"`
	MimeType    string         `db:"mime_type"`
	Owner       string         `db:"owner"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (row wallpaperRow) toWallpaper() Wallpaper {
	return Wallpaper{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Category:    row.Category,
		Tags:        []string(row.Tags),
		ImageURL:    row.ImageURL,
		FileID:      row.FileID,
		FileName:    row.FileName,
		FileSize:    row.FileSize,
		MimeType:    row.MimeType,
		Owner:       row.Owner,
		CreatedAt:   row.CreatedAt,
	}
}

const wallpaperSelect = `
SELECT id, title, description, category, tags, image_url, file_id,
       file_name, file_size, mime_type, owner, created_at
FROM wallpapers
`

// CreateWallpaper stores a new document.
func (s *PostgresStore) CreateWallpaper(ctx context.Context, wallpaper Wallpaper) error {
	const query = `
INSERT INTO wallpapers (
    id, title, description, category, tags, image_url, file_id,
    file_name, file_size, mime_type, owner, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	_, err := s.db.ExecContext(ctx, query,
		wallpaper.ID,
		wallpaper.Title,
		wallpaper.Description,
		wallpaper.Category,
		pq.Array(wallpaper.Tags),
		wallpaper.ImageURL,
		wallpaper.FileID,
		wallpaper.FileName,
		wallpaper.FileSize,
		wallpaper.MimeType,
		wallpaper.Owner,
		wallpaper.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallpaper: %w", err)
	}
	return nil
}

// SearchWallpapers pages through documents, newest first, matching keyword
// against title, category and any tag.
func (s *PostgresStore) SearchWallpapers(ctx context.Context, keyword string, limit, offset int) ([]Wallpaper, error) {
	var rows []wallpaperRow
	var err error

	if keyword == "" {
		query := wallpaperSelect + `ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		err = s.db.SelectContext(ctx, &rows, query, limit, offset)
	} else {
		query := wallpaperSelect + `
WHERE title ILIKE $1
   OR category ILIKE $1
   OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE $1)
ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		err = s.db.SelectContext(ctx, &rows, query, "%"+keyword+"%", limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("select wallpapers: %w", err)
	}

	wallpapers := make([]Wallpaper, 0, len(rows))
	for _, row := range rows {
		wallpapers = append(wallpapers, row.toWallpaper())
	}
	return wallpapers, nil
}

// CountLikes counts like relations for a wallpaper.
func (s *PostgresStore) CountLikes(ctx context.Context, wallpaperID string) (int64, error) {
	return s.countRelations(ctx, "wallpaper_likes", wallpaperID)
}

// CountFavorites counts favorite relations for a wallpaper.
func (s *PostgresStore) CountFavorites(ctx context.Context, wallpaperID string) (int64, error) {
	return s.countRelations(ctx, "wallpaper_favorites", wallpaperID)
}

func (s *PostgresStore) countRelations(ctx context.Context, table, wallpaperID string) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE wallpaper_id = $1`, table)

	var count int64
	if err := s.db.GetContext(ctx, &count, query, wallpaperID); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}
