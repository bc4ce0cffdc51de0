package config

import (
	"os"
	"path/filepath"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"gopretty/internal/logging"
)

// Find looks for FileName in dir and each of its parents. It returns "" when
// no directory up to the root has one.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Resolver finds and loads the config governing each directory. Results are
// memoized per directory and per config file.
type Resolver struct {
	// Explicit, when set, is used for every directory instead of a lookup.
	Explicit string
	// Override is applied to every loaded config, after the environment.
	Override func(*Config)

	cache *cache.Cache
	log   *zap.Logger
}

func NewResolver(explicit string, log *zap.Logger) *Resolver {
	return &Resolver{
		Explicit: explicit,
		cache:    cache.New(cache.NoExpiration, 0),
		log:      logging.OrNop(log),
	}
}

// For returns the config for files in dir.
func (r *Resolver) For(dir string) (*Config, error) {
	if x, found := r.cache.Get("dir:" + dir); found {
		return x.(*Config), nil
	}

	path := r.Explicit
	if path == "" {
		var err error
		if path, err = Find(dir); err != nil {
			return nil, err
		}
	}

	cfg, err := r.load(path)
	if err != nil {
		return nil, err
	}
	r.cache.Set("dir:"+dir, cfg, cache.NoExpiration)
	return cfg, nil
}

func (r *Resolver) load(path string) (*Config, error) {
	if x, found := r.cache.Get("file:" + path); found {
		return x.(*Config), nil
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if r.Override != nil {
		r.Override(cfg)
	}
	r.log.Debug("loaded config", zap.String("path", path), zap.Int("width", cfg.Width))

	r.cache.Set("file:"+path, cfg, cache.NoExpiration)
	return cfg, nil
}
