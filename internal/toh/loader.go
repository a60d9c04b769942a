package toh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultURL = "https://openwrt.org/_media/toh_dump_tab_separated.gz"

	fetchTimeout = 2 * time.Minute
)

// Loader fetches the hardware table, using CachePath to skip the download
// when a previous copy exists.
type Loader struct {
	URL       string
	CachePath string
	Client    *http.Client
	Logger    zerolog.Logger
}

// Load returns the cached catalog if one is readable, otherwise downloads
// a fresh copy and caches it.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	if strings.TrimSpace(l.CachePath) != "" {
		catalog, err := LoadCache(l.CachePath)
		switch {
		case err == nil && catalog.Len() > 0:
			l.Logger.Info().
				Str("path", l.CachePath).
				Int("records", catalog.Len()).
				Msg("hardware table loaded from cache")
			return catalog, nil
		case err == nil:
			l.Logger.Warn().Str("path", l.CachePath).Msg("cached hardware table is empty, downloading")
		case errors.Is(err, os.ErrNotExist):
			l.Logger.Debug().Str("path", l.CachePath).Msg("no cached hardware table")
		default:
			l.Logger.Warn().Err(err).Str("path", l.CachePath).Msg("ignoring unreadable hardware table cache")
		}
	}

	return l.Refresh(ctx)
}

// Refresh downloads the catalog regardless of the cache and rewrites it.
func (l *Loader) Refresh(ctx context.Context) (*Catalog, error) {
	url := l.url()
	start := time.Now()

	catalog, err := l.fetch(ctx, url)
	if err != nil {
		l.Logger.Error().Err(err).Str("url", url).Msg("hardware table download failed")
		return nil, err
	}

	l.Logger.Info().
		Str("url", url).
		Int("records", catalog.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("hardware table downloaded")

	if strings.TrimSpace(l.CachePath) != "" {
		if err := SaveCache(l.CachePath, url, catalog); err != nil {
			l.Logger.Warn().Err(err).Str("path", l.CachePath).Msg("failed to cache hardware table")
		}
	}

	return catalog, nil
}

func (l *Loader) fetch(ctx context.Context, url string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, loadErr(StageFetch, fmt.Errorf("build request: %w", err))
	}

	resp, err := l.client().Do(req)
	if err != nil {
		return nil, loadErr(StageFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, loadErr(StageFetch, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status))
	}

	catalog, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	if catalog.Len() == 0 {
		return nil, loadErr(StageParse, errors.New("no records with a target and subtarget"))
	}
	return catalog, nil
}

func (l *Loader) url() string {
	if url := strings.TrimSpace(l.URL); url != "" {
		return url
	}
	return DefaultURL
}

func (l *Loader) client() *http.Client {
	if l.Client != nil {
		return l.Client
	}
	return &http.Client{Timeout: fetchTimeout}
}
