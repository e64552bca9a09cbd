package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bxls/internal/source"
	"bxls/internal/symbols"
)

// ScanExtensions are the file extensions picked up by a workspace scan.
var ScanExtensions = map[string]struct{}{
	".bx":  {},
	".bxs": {},
	".bxm": {},
	".cfc": {},
	".cfs": {},
	".cfm": {},
}

var javaMagic = []byte{0xCA, 0xFE, 0xBA, 0xBE}

// CanWalkFile reports whether path is a regular source file with a scanned
// extension that is not Java bytecode.
func CanWalkFile(path string, d fs.DirEntry) bool {
	if d.IsDir() || !d.Type().IsRegular() {
		return false
	}
	if _, ok := ScanExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
		return false
	}
	return !isJavaBytecode(path)
}

func isJavaBytecode(path string) bool {
	f, err := os.Open(path) // #nosec G304 -- path comes from a workspace walk
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, len(javaMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return bytes.Equal(head, javaMagic)
}

// Scanning reports whether a scan is running.
func (c *Coordinator) Scanning() bool {
	return c.scanning.Load()
}

// ScanWorkspace analyzes every eligible file under the root and refreshes
// its report. Only one scan runs at a time; a concurrent call returns nil
// immediately. Scans need a root and background parsing enabled.
func (c *Coordinator) ScanWorkspace(ctx context.Context) error {
	if !c.scanning.CompareAndSwap(false, true) {
		c.log.Debug("workspace scan already running")
		return nil
	}
	defer c.scanning.Store(false)

	root := c.Root()
	settings := c.Settings()
	if root == "" || !settings.EnableBackgroundParsing {
		return nil
	}

	started := time.Now()
	files, err := c.collectFiles(ctx, root)
	if err != nil {
		return err
	}
	for _, path := range files {
		c.emit(Event{File: path, Status: StatusQueued})
	}
	c.log.Info("workspace scan started", zap.String("root", root), zap.Int("files", len(files)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(settings.Jobs(), len(files))))
	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.scanFile(path)
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	if saveErr := c.symbols.Save(); saveErr != nil && !errors.Is(saveErr, symbols.ErrNoRoot) {
		c.log.Warn("symbol cache not saved", zap.Error(saveErr))
	}
	if err == nil {
		scanDuration.Observe(time.Since(started).Seconds())
	}
	c.emit(Event{Status: StatusDone, Elapsed: time.Since(started)})
	c.log.Info("workspace scan finished",
		zap.Int("files", len(files)),
		zap.Duration("elapsed", time.Since(started)),
		zap.Error(err))
	return err
}

// collectFiles walks root in lexical order. Hidden directories are skipped.
func (c *Coordinator) collectFiles(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.log.Warn("walk failed", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !CanWalkFile(path, d) || !c.ShouldAnalyze(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// scanFile refreshes the report of one file. Failures and panics are
// logged and reported as error events.
func (c *Coordinator) scanFile(path string) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			c.log.Error("scan failed", zap.String("path", path), zap.Error(err))
			c.emit(Event{File: path, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		}
	}()
	c.emit(Event{File: path, Status: StatusWorking})

	uri := source.PathToURI(path)
	if doc := c.openDoc(uri); doc != nil {
		c.emit(Event{File: path, Status: StatusDone, Elapsed: time.Since(started)})
		return
	}
	doc, err := c.load(uri)
	if err != nil {
		c.log.Warn("scan skipped file", zap.String("path", path), zap.Error(err))
		c.emit(Event{File: path, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		return
	}
	c.cache.put(uri, doc)
	if _, ok := c.storeClosed(doc); ok {
		c.indexSymbols(doc)
	}
	c.emit(Event{File: path, Status: StatusDone, Elapsed: time.Since(started)})
}

func (c *Coordinator) emit(ev Event) {
	if ev.File != "" && (ev.Status == StatusDone || ev.Status == StatusError) {
		scanFilesTotal.WithLabelValues(string(ev.Status)).Inc()
	}
	if c.progress != nil {
		c.progress.OnEvent(ev)
	}
}
