package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type cacheClearer interface {
	ClearCache(ctx context.Context) int
}

// CacheResetScheduler periodically empties the occurrence cache.
type CacheResetScheduler struct {
	spec    string
	target  cacheClearer
	logger  *zap.Logger
	parser  cron.Parser
	mu      sync.Mutex
	c       *cron.Cron
	entryID cron.EntryID
}

// NewCacheResetScheduler validates spec (standard five fields or a descriptor such as @daily).
func NewCacheResetScheduler(spec string, target cacheClearer, logger *zap.Logger) (*CacheResetScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid cache reset schedule %q: %w", spec, err)
	}
	return &CacheResetScheduler{spec: spec, target: target, logger: logger, parser: parser}, nil
}

// Start registers the job and starts the cron loop. Calling Start twice is a no-op.
func (s *CacheResetScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}
	c := cron.New(cron.WithParser(s.parser))
	id, err := c.AddFunc(s.spec, s.run)
	if err != nil {
		return fmt.Errorf("schedule cache reset: %w", err)
	}
	c.Start()
	s.c = c
	s.entryID = id
	s.logger.Info("cache reset scheduled", zap.String("spec", s.spec), zap.Time("next", c.Entry(id).Next))
	return nil
}

// Stop halts the scheduler and waits for a running reset to finish or ctx to expire.
func (s *CacheResetScheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *CacheResetScheduler) run() {
	dropped := s.target.ClearCache(context.Background())
	s.logger.Debug("scheduled cache reset ran", zap.Int("entries", dropped))
}
