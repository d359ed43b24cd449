// Package backup snapshots the collection files to remote object storage,
// either on a timer or on demand through the admin endpoint.
package backup

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"minitweet/internal/storage"
)

// Config describes what to snapshot and where to put it.
type Config struct {
	Bucket    string
	KeyPrefix string
	Paths     []string
	Interval  time.Duration
	Logger    *logrus.Logger
}

// Service uploads point-in-time copies of the collection files. Each
// snapshot lands under KeyPrefix/<UTC timestamp>/.
type Service struct {
	cfg     Config
	store   storage.Service
	logger  *logrus.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	now     func() time.Time
	started bool
	mu      sync.Mutex
}

func New(cfg Config, store storage.Service) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		cfg:    cfg,
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the periodic snapshot loop. A zero interval disables the
// loop; snapshots can still be taken on demand.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.cfg.Interval <= 0 {
		return
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if location, err := s.Snapshot(runCtx); err != nil {
					s.logger.Warnf("periodic snapshot: %v", err)
				} else {
					s.logger.Infof("snapshot uploaded to %s", location)
				}
			}
		}
	}()
}

// Shutdown stops the periodic loop and waits for an in-flight snapshot.
// The service may be started again afterwards.
func (s *Service) Shutdown() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.started = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// Snapshot uploads every collection file that currently exists and
// returns the remote location. Missing files are skipped: a fresh
// deployment may not have created every collection yet.
func (s *Service) Snapshot(ctx context.Context) (string, error) {
	var paths []string
	for _, path := range s.cfg.Paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("stat collection file: %w", err)
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("no collection files to snapshot")
	}

	prefix := fmt.Sprintf("%s/%s", s.cfg.KeyPrefix, s.now().Format("20060102T150405Z"))
	return s.store.UploadFiles(ctx, paths, storage.UploadOptions{
		Bucket:    s.cfg.Bucket,
		KeyPrefix: prefix,
	})
}

// ListObjects lists stored snapshot objects under the configured prefix.
func (s *Service) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if prefix == "" {
		prefix = s.cfg.KeyPrefix
	}
	return s.store.ListObjects(ctx, s.cfg.Bucket, prefix)
}
