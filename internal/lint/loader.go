package lint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is how long a loaded config is served without touching disk.
const DefaultTTL = 5 * time.Second

// Loader reads and caches the lint config of one workspace root. Get never
// fails: a missing file yields an empty config and a malformed file keeps
// the last good one.
type Loader struct {
	TTL time.Duration
	Now func() time.Time

	log *zap.Logger

	mu       sync.Mutex
	root     string
	cfg      *Config
	lastLoad time.Time
	lastErr  error
}

// NewLoader creates a loader for root. An empty root serves the default
// config until SetRoot is called.
func NewLoader(root string, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		TTL:  DefaultTTL,
		Now:  time.Now,
		log:  log,
		root: root,
		cfg:  &Config{},
	}
}

// SetRoot changes the workspace root and forces a reload on the next Get.
func (l *Loader) SetRoot(root string) {
	l.mu.Lock()
	l.root = root
	l.lastLoad = time.Time{}
	l.mu.Unlock()
}

// Root returns the workspace root.
func (l *Loader) Root() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.root
}

// Path returns the config file path or "" without a root.
func (l *Loader) Path() string {
	root := l.Root()
	if root == "" {
		return ""
	}
	return filepath.Join(root, ConfigFileName)
}

// Get returns the current config, reloading it when the TTL has expired.
func (l *Loader) Get() *Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.Now()
	if !l.lastLoad.IsZero() && now.Sub(l.lastLoad) < l.TTL {
		return l.cfg
	}
	l.loadLocked(now)
	return l.cfg
}

// Invalidate makes the next Get read from disk.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.lastLoad = time.Time{}
	l.mu.Unlock()
	l.log.Debug("lint config invalidated")
}

// Reload reads the config immediately and returns the load error, if any.
// The cached config follows the same rules as Get.
func (l *Loader) Reload() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadLocked(l.Now())
	return l.cfg, l.lastErr
}

func (l *Loader) loadLocked(now time.Time) {
	l.lastLoad = now
	l.lastErr = nil
	if l.root == "" {
		return
	}
	path := filepath.Join(l.root, ConfigFileName)
	data, err := os.ReadFile(path) // #nosec G304 -- path is the workspace config file
	if errors.Is(err, fs.ErrNotExist) {
		l.cfg = &Config{}
		return
	}
	if err != nil {
		l.lastErr = fmt.Errorf("read %s: %w", path, err)
		l.log.Error("lint config unreadable, keeping previous", zap.String("path", path), zap.Error(err))
		return
	}
	cfg, err := Parse(data)
	if err != nil {
		l.lastErr = err
		l.log.Error("lint config malformed, keeping previous", zap.String("path", path), zap.Error(err))
		return
	}
	l.cfg = cfg
	l.log.Info("lint config loaded", zap.String("path", path), zap.Int("rules", len(cfg.Diagnostics)))
}
