package spacetraveling

import (
	"context"
	"errors"
	"fmt"

	"github.com/eringen/spacetraveling/blog"
)

// pruner is implemented by caches that keep expired entries until asked,
// such as pagecache.SQLite.
type pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// Prerender generates the home page and the newest PrerenderCount posts
// into the page cache ahead of traffic. Expired entries are pruned first
// on caches that support it. It returns the paths it stored; a failing
// page does not stop the others.
func (a *App) Prerender(ctx context.Context) ([]string, error) {
	var errs []error
	if p, ok := a.Pages.(pruner); ok {
		n, err := p.Prune(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("prune page cache: %w", err))
		} else if n > 0 {
			a.Echo.Logger.Infof("pruned %d expired pages", n)
		}
	}

	uids, err := a.Posts.PostUIDs(ctx, a.Config.PrerenderCount)
	if err != nil {
		return nil, errors.Join(append(errs, fmt.Errorf("prerender: %w", err))...)
	}

	type target struct {
		path  string
		build pageBuilder
	}
	targets := []target{{"/", a.homePage("")}}
	for _, uid := range uids {
		targets = append(targets, target{blog.Post{UID: uid}.Link(), a.postPage(uid, "")})
	}

	var stored []string
	for _, t := range targets {
		body, err := a.buildPage(ctx, t.build)
		if err == nil {
			err = a.storePage(ctx, t.path, body)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("prerender %s: %w", t.path, err))
			continue
		}
		stored = append(stored, t.path)
	}
	return stored, errors.Join(errs...)
}
