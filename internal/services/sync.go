package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"go-skydata/internal/domain"
	"go-skydata/internal/logger"
	"go-skydata/internal/metrics"
)

// DefaultSyncRover is the rover archived by the background sync
const DefaultSyncRover = "curiosity"

// ErrUnknownSource is returned for a source name outside domain.Endpoints
var ErrUnknownSource = errors.New("unknown source")

// SnapshotStore persists normalized payloads
type SnapshotStore interface {
	Write(ctx context.Context, source string, payload json.RawMessage) error
	GetLatest(ctx context.Context, source string) (*domain.SpaceSnapshot, error)
}

// SyncService periodically fetches every source through SpaceService and
// archives the normalized result. Orchestrator calls never read the archive.
type SyncService struct {
	space   *SpaceService
	store   SnapshotStore
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	cron    *cron.Cron
	initial sync.WaitGroup
}

// NewSyncService creates a new sync service
func NewSyncService(space *SpaceService, store SnapshotStore, log logger.Logger, m *metrics.Metrics) *SyncService {
	if log == nil {
		log = logger.NewNop()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &SyncService{
		space:   space,
		store:   store,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// GetLatest gets the latest archived snapshot for a source
func (s *SyncService) GetLatest(ctx context.Context, source string) (*domain.SpaceSnapshot, error) {
	if !knownSource(source) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	return s.store.GetLatest(ctx, source)
}

// Refresh fetches and archives each source, returning the ones that succeeded.
// Unknown names are skipped.
func (s *SyncService) Refresh(ctx context.Context, sources []string) []string {
	refreshed := make([]string, 0, len(sources))
	for _, source := range sources {
		if !knownSource(source) {
			s.log.Warn("skipping unknown source", logger.String("source", source))
			continue
		}
		if err := s.refreshOne(ctx, source); err != nil {
			s.log.Error("refresh failed", logger.String("source", source), logger.Error(err))
			continue
		}
		refreshed = append(refreshed, source)
	}
	return refreshed
}

func (s *SyncService) refreshOne(ctx context.Context, source string) error {
	data, err := s.fetch(ctx, domain.Endpoint(source))
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", source, err)
	}
	if err := s.store.Write(ctx, source, payload); err != nil {
		return err
	}
	s.metrics.SnapshotsWritten.WithLabelValues(source).Inc()
	return nil
}

func (s *SyncService) fetch(ctx context.Context, source domain.Endpoint) (any, error) {
	switch source {
	case domain.EndpointAPOD:
		return s.space.DailyImage(ctx, time.Time{})
	case domain.EndpointNEO:
		start, end := DefaultNeoWindow(s.now())
		return s.space.NearEarthObjects(ctx, start, end)
	case domain.EndpointWeather:
		return s.space.MarsWeather(ctx)
	case domain.EndpointRoverPhotos:
		return s.space.RoverPhotos(ctx, RoverQuery{Rover: DefaultSyncRover})
	case domain.EndpointEPIC:
		return s.space.EpicImages(ctx, time.Time{})
	case domain.EndpointEPICDates:
		return s.space.EpicAvailableDates(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
}

func knownSource(source string) bool {
	return slices.Contains(domain.Endpoints, domain.Endpoint(source))
}

// Start schedules one "@every" job per source with a positive interval and
// runs an initial refresh of those sources in the background.
func (s *SyncService) Start(ctx context.Context, intervals map[string]time.Duration) error {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	var scheduled []string
	for _, e := range domain.Endpoints {
		source := string(e)
		every, ok := intervals[source]
		if !ok || every <= 0 {
			continue
		}
		if _, err := c.AddFunc("@every "+every.String(), func() {
			s.Refresh(ctx, []string{source})
		}); err != nil {
			return fmt.Errorf("schedule %s: %w", source, err)
		}
		scheduled = append(scheduled, source)
	}

	s.cron = c
	c.Start()
	s.log.Info("sync scheduler started", logger.Strings("sources", scheduled))

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.Refresh(ctx, scheduled)
	}()
	return nil
}

// Stop stops the scheduler and waits for running jobs, including the initial refresh
func (s *SyncService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.initial.Wait()
	s.log.Info("sync scheduler stopped")
}
