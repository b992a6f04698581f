package livestatus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fanhub/fanhub-core/internal/config"
	"github.com/fanhub/fanhub-core/internal/db/models"
	"github.com/fanhub/fanhub-core/internal/db/repository"
	"github.com/fanhub/fanhub-core/internal/events"
	"github.com/fanhub/fanhub-core/pkg/logger"
)

// Summary reports the outcome of one synchronization pass.
type Summary struct {
	Total     int      `json:"total"`
	Updated   int      `json:"updated"`
	LiveCount int      `json:"live"`
	Errors    []string `json:"errors"`
}

// Synchronizer polls every active member channel in small batches and
// persists the observed states. A channel whose poll fails keeps its
// previously stored state; it is never written down as offline.
type Synchronizer struct {
	repo            repository.LiveStatusRepository
	checker         StatusChecker
	publisher       events.Publisher
	concurrency     int
	interBatchDelay time.Duration
}

// NewSynchronizer creates a Synchronizer. The publisher may be nil, in
// which case state transitions are persisted but not announced.
func NewSynchronizer(
	repo repository.LiveStatusRepository,
	checker StatusChecker,
	publisher events.Publisher,
	cfg *config.SyncConfig,
) *Synchronizer {
	return &Synchronizer{
		repo:            repo,
		checker:         checker,
		publisher:       publisher,
		concurrency:     cfg.Concurrency,
		interBatchDelay: cfg.InterBatchDelay,
	}
}

// Sync runs one full pass over the active roster. Channels are polled
// in batches of the configured concurrency with a pause between
// batches, keeping pressure on the upstream platform bounded. Errors
// for individual channels are collected in the summary; they never
// abort the pass. Cancelling the context stops the pass before the
// next batch starts.
func (s *Synchronizer) Sync(ctx context.Context) (*Summary, error) {
	keys, err := s.repo.ActiveChannelKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active channels: %w", err)
	}

	prior, err := s.repo.GetStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load prior states: %w", err)
	}

	summary := &Summary{
		Total:  len(keys),
		Errors: []string{},
	}

	for start := 0; start < len(keys); start += s.concurrency {
		if start > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(s.interBatchDelay):
			}
		}

		end := start + s.concurrency
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		statuses := make([]*Status, len(batch))
		errs := make([]error, len(batch))

		var wg sync.WaitGroup
		for i, key := range batch {
			wg.Add(1)
			go func(i int, key string) {
				defer wg.Done()
				statuses[i], errs[i] = s.checker.Check(ctx, key)
			}(i, key)
		}
		wg.Wait()

		if err := s.applyBatch(ctx, batch, statuses, errs, prior, summary); err != nil {
			return summary, err
		}
	}

	logger.Log.Info("live-status sync finished",
		zap.Int("total", summary.Total),
		zap.Int("updated", summary.Updated),
		zap.Int("live", summary.LiveCount),
		zap.Int("errors", len(summary.Errors)))

	return summary, nil
}

func (s *Synchronizer) applyBatch(
	ctx context.Context,
	batch []string,
	statuses []*Status,
	errs []error,
	prior map[string]*models.ChannelLiveState,
	summary *Summary,
) error {
	checkedAt := time.Now().UTC()
	states := make([]*models.ChannelLiveState, 0, len(batch))

	for i, key := range batch {
		if errs[i] != nil {
			// Keep whatever state we had; a failed poll must not
			// read as "went offline".
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", key, errs[i]))
			logger.Log.Warn("channel poll failed",
				zap.String("channelKey", key),
				zap.Error(errs[i]))
			continue
		}

		status := statuses[i]
		states = append(states, &models.ChannelLiveState{
			ChannelKey:    key,
			IsLive:        status.IsLive,
			ViewerCount:   status.ViewerCount,
			StreamTitle:   status.StreamTitle,
			ThumbnailURL:  status.ThumbnailURL,
			LastCheckedAt: checkedAt,
		})

		if status.IsLive {
			summary.LiveCount++
		}

		wasLive := false
		if prev, ok := prior[key]; ok {
			wasLive = prev.IsLive
		}
		if wasLive == status.IsLive {
			continue
		}

		if err := s.repo.SetMemberLive(ctx, key, status.IsLive); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: update member: %v", key, err))
			continue
		}
		summary.Updated++
		s.announce(ctx, status)
	}

	if len(states) == 0 {
		return nil
	}
	if err := s.repo.UpsertStates(ctx, states); err != nil {
		return fmt.Errorf("persist states: %w", err)
	}
	return nil
}

func (s *Synchronizer) announce(ctx context.Context, status *Status) {
	if s.publisher == nil {
		return
	}

	event := events.NewLiveStatusEvent(status.ChannelKey, status.IsLive, status.ViewerCount, status.StreamTitle)
	if err := s.publisher.PublishLiveStatus(ctx, event); err != nil {
		// Persisted state is the source of truth; a lost event is
		// recoverable on the next transition.
		logger.Log.Warn("failed to publish live-status event",
			zap.String("channelKey", status.ChannelKey),
			zap.Error(err))
	}
}
