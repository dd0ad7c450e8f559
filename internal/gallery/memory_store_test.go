package gallery

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSearchMatchesTagsAndCategory(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	seed := []Wallpaper{
		{ID: "w-1", Title: "City Nights", Category: "Urban", Tags: []string{"neon"}, CreatedAt: base},
		{ID: "w-2", Title: "Dunes", Category: "Nature", Tags: []string{"desert", "sand"}, CreatedAt: base.Add(time.Minute)},
		{ID: "w-3", Title: "Forest", Category: "Nature", Tags: []string{"trees"}, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, w := range seed {
		if err := store.CreateWallpaper(context.Background(), w); err != nil {
			t.Fatalf("CreateWallpaper returned error: %v", err)
		}
	}

	byTag, _ := store.SearchWallpapers(context.Background(), "desert", 10, 0)
	if len(byTag) != 1 || byTag[0].ID != "w-2" {
		t.Fatalf("tag search returned %+v", byTag)
	}

	byCategory, _ := store.SearchWallpapers(context.Background(), "NATURE", 10, 0)
	if len(byCategory) != 2 {
		t.Fatalf("category search returned %d results", len(byCategory))
	}
	if byCategory[0].ID != "w-3" {
		t.Fatalf("expected newest first, got %s", byCategory[0].ID)
	}

	byTitle, _ := store.SearchWallpapers(context.Background(), "city", 10, 0)
	if len(byTitle) != 1 || byTitle[0].ID != "w-1" {
		t.Fatalf("title search returned %+v", byTitle)
	}
}

func TestMemoryStorePaging(t *testing.T) {
	store := NewMemoryStore()
	seedWallpapers(t, store, 5)

	page, _ := store.SearchWallpapers(context.Background(), "", 2, 2)
	if len(page) != 2 {
		t.Fatalf("expected 2 results, got %d", len(page))
	}
	if page[0].ID != "w-02" || page[1].ID != "w-01" {
		t.Fatalf("unexpected page %s/%s", page[0].ID, page[1].ID)
	}

	tail, _ := store.SearchWallpapers(context.Background(), "", 2, 4)
	if len(tail) != 1 || tail[0].ID != "w-00" {
		t.Fatalf("unexpected tail %+v", tail)
	}

	past, _ := store.SearchWallpapers(context.Background(), "", 2, 10)
	if len(past) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(past))
	}
}

func TestMemoryStoreCounts(t *testing.T) {
	store := NewMemoryStore()
	store.AddLike("w-1")
	store.AddLike("w-1")
	store.AddFavorite("w-1")

	likes, _ := store.CountLikes(context.Background(), "w-1")
	favorites, _ := store.CountFavorites(context.Background(), "w-1")
	if likes != 2 || favorites != 1 {
		t.Fatalf("expected 2/1, got %d/%d", likes, favorites)
	}

	likes, _ = store.CountLikes(context.Background(), "other")
	if likes != 0 {
		t.Fatalf("expected 0 for unknown wallpaper, got %d", likes)
	}
}
