package gallery

import "time"

const (
	// DefaultPageSize is the catalog page served when no limit is given.
	DefaultPageSize = 12

	defaultCategory = "Other"
	anonymousOwner  = "anonymous"

	// previewSize is the fixed edge of generated preview URLs.
	previewSize = 2000

	// Dimensions reported when the backend did not extract them.
	defaultWidth  = 1920
	defaultHeight = 1080
)

// Wallpaper is a catalog metadata document describing a stored image. The
// Likes and Favorites columns are written as zero and never updated; live
// counts come from the stats aggregator.
type Wallpaper struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	ImageURL    string    `json:"imageUrl"`
	FileID      string    `json:"fileId"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	MimeType    string    `json:"mimeType"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FileView is the raw-storage listing view model served to browsing clients.
type FileView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"createdAt"`
}

// FileInfo describes the uploaded file as reported by the caller.
type FileInfo struct {
	Name     string
	Size     int64
	MimeType string
}

// UploadMetadata is the optional catalog entry accompanying an upload.
type UploadMetadata struct {
	Title       string
	Description string
	Category    string
	Tags        []string
}

func (m *UploadMetadata) empty() bool {
	return m == nil || (m.Title == "" && m.Description == "" && m.Category == "" && len(m.Tags) == 0)
}

// Stats carries the live like/favorite counts of one wallpaper.
type Stats struct {
	Likes     int64 `json:"likes"`
	Favorites int64 `json:"favorites"`
}
