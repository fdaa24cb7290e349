package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrNoFrame is returned by Grab when the camera has not produced a frame yet.
var ErrNoFrame = errors.New("no camera frame available")

// FrameSource is a live camera. Grab returns the most recent frame.
type FrameSource interface {
	Grab() (Captured, error)
	Close() error
}

var frameExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// DirFrameSource treats a directory as a camera: a capture tool writes frames
// into it and the newest image file is the current frame.
type DirFrameSource struct {
	mu      sync.RWMutex
	dir     string
	latest  string
	modTime time.Time

	watcher *fsnotify.Watcher
	logger  *zap.Logger
	doneCh  chan struct{}
}

// NewDirFrameSource scans dir for existing frames and starts watching it.
func NewDirFrameSource(dir string, logger *zap.Logger) (*DirFrameSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("camera directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("camera directory: %s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	fs := &DirFrameSource{
		dir:     dir,
		watcher: watcher,
		logger:  logger,
		doneCh:  make(chan struct{}),
	}
	fs.scan()

	go fs.run()
	return fs, nil
}

// scan picks the newest frame already in the directory.
func (fs *DirFrameSource) scan() {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		fs.logger.Warn("camera directory scan failed", zap.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fs.consider(filepath.Join(fs.dir, entry.Name()))
	}
}

// consider records path as the latest frame if it is an image newer than the current one.
func (fs *DirFrameSource) consider(path string) {
	if _, ok := frameExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.latest == "" || !info.ModTime().Before(fs.modTime) {
		fs.latest = path
		fs.modTime = info.ModTime()
	}
}

func (fs *DirFrameSource) forget(path string) {
	fs.mu.Lock()
	removed := fs.latest == path
	if removed {
		fs.latest = ""
		fs.modTime = time.Time{}
	}
	fs.mu.Unlock()
	if removed {
		fs.scan()
	}
}

func (fs *DirFrameSource) run() {
	defer close(fs.doneCh)
	for {
		select {
		case event, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				fs.consider(event.Name)
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				fs.forget(event.Name)
			}
		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			fs.logger.Warn("camera watcher error", zap.Error(err))
		}
	}
}

// Latest returns the path of the current frame, or "" if there is none.
func (fs *DirFrameSource) Latest() string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.latest
}

// Grab reads the current frame.
func (fs *DirFrameSource) Grab() (Captured, error) {
	path := fs.Latest()
	if path == "" {
		return Captured{}, ErrNoFrame
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Captured{}, fmt.Errorf("reading frame: %w", err)
	}
	if len(data) == 0 {
		return Captured{}, ErrNoFrame
	}
	return Captured{
		MIMEType: frameExtensions[strings.ToLower(filepath.Ext(path))],
		Data:     data,
	}, nil
}

// Close stops watching and waits for the event loop to exit.
func (fs *DirFrameSource) Close() error {
	err := fs.watcher.Close()
	<-fs.doneCh
	return err
}
