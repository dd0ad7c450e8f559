package gallery

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps catalog documents in process, ideal for local development
// or tests.
type MemoryStore struct {
	mu         sync.RWMutex
	wallpapers []Wallpaper
	likes      map[string]int64
	favorites  map[string]int64
}

// NewMemoryStore constructs an empty in-memory metadata store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		likes:     make(map[string]int64),
		favorites: make(map[string]int64),
	}
}

// CreateWallpaper stores a new document.
func (m *MemoryStore) CreateWallpaper(_ context.Context, wallpaper Wallpaper) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wallpaper.Tags = append([]string(nil), wallpaper.Tags...)
	m.wallpapers = append(m.wallpapers, wallpaper)
	return nil
}

// SearchWallpapers filters by keyword across title, tags and category and
// pages through results newest first.
func (m *MemoryStore) SearchWallpapers(_ context.Context, keyword string, limit, offset int) ([]Wallpaper, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]Wallpaper, 0, len(m.wallpapers))
	needle := strings.ToLower(keyword)
	for _, w := range m.wallpapers {
		if needle == "" || matchesKeyword(w, needle) {
			matched = append(matched, w)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return []Wallpaper{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// CountLikes returns the number of like relations for a wallpaper.
func (m *MemoryStore) CountLikes(_ context.Context, wallpaperID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.likes[wallpaperID], nil
}

// CountFavorites returns the number of favorite relations for a wallpaper.
func (m *MemoryStore) CountFavorites(_ context.Context, wallpaperID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.favorites[wallpaperID], nil
}

// AddLike records one like relation.
func (m *MemoryStore) AddLike(wallpaperID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.likes[wallpaperID]++
}

// AddFavorite records one favorite relation.
func (m *MemoryStore) AddFavorite(wallpaperID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites[wallpaperID]++
}

func matchesKeyword(w Wallpaper, needle string) bool {
	if strings.Contains(strings.ToLower(w.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(w.Category), needle) {
		return true
	}
	for _, tag := range w.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
