package notification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/messaging"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/metrics"
)

const publishTimeout = 5 * time.Second

// BedLister is the slice of the bed store the notifier needs to build a
// board refresh.
type BedLister interface {
	List(ctx context.Context) ([]*model.BedListItem, error)
}

var _ BedLister = (repository.BedRepository)(nil)

// Service publishes change notifications after a state transition has been
// committed. Delivery is best-effort: failures are logged and dropped, and
// nothing here ever reaches back into the caller.
type Service struct {
	publisher messaging.Publisher
	beds      BedLister
	logger    zerolog.Logger
	metrics   *metrics.Metrics

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

// NewService creates a notifier. m may be nil.
func NewService(publisher messaging.Publisher, beds BedLister, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		publisher: publisher,
		beds:      beds,
		logger:    logger.With().Str("component", "notifier").Logger(),
		metrics:   m,
	}
}

// Publish sends event with payload followed by a beds:refresh carrying the
// whole bed list. It returns immediately.
func (s *Service) Publish(ctx context.Context, event string, payload interface{}) {
	s.dispatch(ctx, func(ctx context.Context) {
		s.send(ctx, event, payload)
		s.refresh(ctx)
	})
}

// Refresh sends only beds:refresh. Used after administrative bed edits.
func (s *Service) Refresh(ctx context.Context) {
	s.dispatch(ctx, s.refresh)
}

// Close stops accepting new notifications and waits for in-flight ones.
func (s *Service) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.pending.Wait()
	return nil
}

func (s *Service) dispatch(ctx context.Context, fn func(context.Context)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn().Msg("notifier closed, dropping notification")
		return
	}
	s.pending.Add(1)
	s.mu.Unlock()

	// The request context ends with the response; keep its values only.
	base := context.WithoutCancel(ctx)

	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(base, publishTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (s *Service) refresh(ctx context.Context) {
	beds, err := s.beds.List(ctx)
	if err != nil {
		s.fail(model.EventBedsRefresh, err)
		return
	}
	s.recordBoard(beds)
	s.send(ctx, model.EventBedsRefresh, beds)
}

func (s *Service) send(ctx context.Context, event string, payload interface{}) {
	if err := s.publisher.Publish(ctx, event, payload); err != nil {
		s.fail(event, err)
		return
	}
	if s.metrics != nil {
		s.metrics.NotificationsPublished.WithLabelValues(event).Inc()
	}
}

func (s *Service) fail(event string, err error) {
	s.logger.Error().Err(err).Str("event", event).Msg("failed to publish notification")
	if s.metrics != nil {
		s.metrics.NotificationsFailed.WithLabelValues(event).Inc()
	}
}

func (s *Service) recordBoard(beds []*model.BedListItem) {
	if s.metrics == nil {
		return
	}
	counts := map[model.BedStatus]int{
		model.BedStatusAvailable:   0,
		model.BedStatusOccupied:    0,
		model.BedStatusMaintenance: 0,
	}
	for _, b := range beds {
		counts[b.Status]++
	}
	for status, n := range counts {
		s.metrics.BedsByStatus.WithLabelValues(string(status)).Set(float64(n))
	}
}
