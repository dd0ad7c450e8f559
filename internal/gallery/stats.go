package gallery

import (
	"context"

	"log/slog"

	"golang.org/x/sync/errgroup"
)

// StatsService composes live like/favorite counts from the relation stores.
type StatsService struct {
	meta   MetadataStore
	logger *slog.Logger
}

// NewStatsService wires a StatsService.
func NewStatsService(meta MetadataStore, logger *slog.Logger) *StatsService {
	return &StatsService{meta: meta, logger: logger}
}

// WallpaperStats issues both count queries concurrently and joins on both.
// Any failure degrades to zero counts; an error is never returned, trading
// correctness signaling for a best-effort UI number.
func (s *StatsService) WallpaperStats(ctx context.Context, wallpaperID string) Stats {
	var likes, favorites int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		n, err := s.meta.CountLikes(groupCtx, wallpaperID)
		likes = n
		return err
	})
	group.Go(func() error {
		n, err := s.meta.CountFavorites(groupCtx, wallpaperID)
		favorites = n
		return err
	})

	if err := group.Wait(); err != nil {
		s.logger.Warn("wallpaper stats unavailable", "wallpaper_id", wallpaperID, "error", err)
		return Stats{}
	}

	return Stats{Likes: likes, Favorites: favorites}
}
