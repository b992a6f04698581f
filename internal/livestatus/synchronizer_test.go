package livestatus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fanhub/fanhub-core/internal/config"
	"github.com/fanhub/fanhub-core/internal/db/models"
	"github.com/fanhub/fanhub-core/internal/events"
	"github.com/fanhub/fanhub-core/pkg/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

type fakeLiveStatusRepo struct {
	mu            sync.Mutex
	keys          []string
	states        map[string]*models.ChannelLiveState
	memberLive    map[string]bool
	memberLiveErr map[string]error
	upserts       int
}

func newFakeLiveStatusRepo(keys ...string) *fakeLiveStatusRepo {
	return &fakeLiveStatusRepo{
		keys:       keys,
		states:     make(map[string]*models.ChannelLiveState),
		memberLive: make(map[string]bool),
	}
}

func (f *fakeLiveStatusRepo) GetStates(_ context.Context) (map[string]*models.ChannelLiveState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]*models.ChannelLiveState, len(f.states))
	for k, v := range f.states {
		copied := *v
		out[k] = &copied
	}
	return out, nil
}

func (f *fakeLiveStatusRepo) UpsertStates(_ context.Context, states []*models.ChannelLiveState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	for _, s := range states {
		f.states[s.ChannelKey] = s
	}
	return nil
}

func (f *fakeLiveStatusRepo) ListStates(_ context.Context) ([]*models.ChannelLiveState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.ChannelLiveState, 0, len(f.states))
	for _, s := range f.states {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeLiveStatusRepo) ActiveChannelKeys(_ context.Context) ([]string, error) {
	return f.keys, nil
}

func (f *fakeLiveStatusRepo) SetMemberLive(_ context.Context, channelKey string, isLive bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.memberLiveErr[channelKey]; err != nil {
		return err
	}
	f.memberLive[channelKey] = isLive
	return nil
}

func (f *fakeLiveStatusRepo) ListMembers(_ context.Context) ([]*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Member, 0, len(f.keys))
	for i, key := range f.keys {
		out = append(out, &models.Member{
			ID:         int64(i + 1),
			Name:       key,
			ChannelKey: key,
			IsLive:     f.memberLive[key],
			IsActive:   true,
		})
	}
	return out, nil
}

type fakeChecker struct {
	mu        sync.Mutex
	live      map[string]bool
	failing   map[string]error
	inFlight  int
	maxSeen   int
	callOrder []string
}

func (f *fakeChecker) Check(_ context.Context, channelKey string) (*Status, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.callOrder = append(f.callOrder, channelKey)
	f.mu.Unlock()

	// Hold long enough that batch mates overlap.
	time.Sleep(10 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if err, ok := f.failing[channelKey]; ok {
		return nil, err
	}
	return &Status{
		ChannelKey:  channelKey,
		IsLive:      f.live[channelKey],
		ViewerCount: 42,
		StreamTitle: "stream " + channelKey,
	}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.LiveStatusEvent
}

func (p *recordingPublisher) PublishLiveStatus(_ context.Context, e *events.LiveStatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func syncCfg(concurrency int) *config.SyncConfig {
	return &config.SyncConfig{
		Concurrency:     concurrency,
		InterBatchDelay: time.Millisecond,
	}
}

func TestSyncReportsSummary(t *testing.T) {
	repo := newFakeLiveStatusRepo("ch-a", "ch-b", "ch-c", "ch-d")
	checker := &fakeChecker{live: map[string]bool{"ch-a": true, "ch-c": true}}
	pub := &recordingPublisher{}

	s := NewSynchronizer(repo, checker, pub, syncCfg(3))

	summary, err := s.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.LiveCount)
	assert.Equal(t, 2, summary.Updated, "two channels went live")
	assert.Empty(t, summary.Errors)

	assert.True(t, repo.states["ch-a"].IsLive)
	assert.False(t, repo.states["ch-b"].IsLive)
	assert.True(t, repo.memberLive["ch-a"])
	assert.True(t, repo.memberLive["ch-c"])
	assert.Len(t, pub.events, 2)
}

func TestSyncBoundsConcurrency(t *testing.T) {
	repo := newFakeLiveStatusRepo("ch-a", "ch-b", "ch-c", "ch-d", "ch-e", "ch-f", "ch-g")
	checker := &fakeChecker{live: map[string]bool{}}

	s := NewSynchronizer(repo, checker, nil, syncCfg(3))

	_, err := s.Sync(context.Background())
	require.NoError(t, err)

	assert.LessOrEqual(t, checker.maxSeen, 3, "never more than one batch in flight")
	assert.Len(t, checker.callOrder, 7)
	assert.Equal(t, 3, repo.upserts, "states are persisted per batch")
}

func TestSyncFailedPollKeepsPriorState(t *testing.T) {
	repo := newFakeLiveStatusRepo("ch-a", "ch-b")
	repo.states["ch-a"] = &models.ChannelLiveState{ChannelKey: "ch-a", IsLive: true, ViewerCount: 100}

	checker := &fakeChecker{
		live:    map[string]bool{"ch-b": true},
		failing: map[string]error{"ch-a": errors.New("upstream timeout")},
	}
	pub := &recordingPublisher{}

	s := NewSynchronizer(repo, checker, pub, syncCfg(3))

	summary, err := s.Sync(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "ch-a")
	assert.Equal(t, 1, summary.Updated)

	// The failed channel must not be rewritten as offline.
	assert.True(t, repo.states["ch-a"].IsLive)
	assert.Equal(t, 100, repo.states["ch-a"].ViewerCount)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "ch-b", pub.events[0].ChannelKey)
}

func TestSyncNoTransitionNoEvent(t *testing.T) {
	repo := newFakeLiveStatusRepo("ch-a")
	repo.states["ch-a"] = &models.ChannelLiveState{ChannelKey: "ch-a", IsLive: true}

	checker := &fakeChecker{live: map[string]bool{"ch-a": true}}
	pub := &recordingPublisher{}

	s := NewSynchronizer(repo, checker, pub, syncCfg(3))

	summary, err := s.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Updated)
	assert.Empty(t, pub.events)
	assert.Empty(t, repo.memberLive)
	// The state row is still refreshed with the new poll time.
	assert.Equal(t, 1, repo.upserts)
}

func TestSyncMemberUpdateFailureCountsAsError(t *testing.T) {
	repo := newFakeLiveStatusRepo("ch-a", "ch-b")
	repo.memberLiveErr = map[string]error{"ch-a": errors.New("members table locked")}

	checker := &fakeChecker{live: map[string]bool{"ch-a": true, "ch-b": true}}
	pub := &recordingPublisher{}

	s := NewSynchronizer(repo, checker, pub, syncCfg(3))

	summary, err := s.Sync(context.Background())
	require.NoError(t, err)

	// ch-a's transition was not applied, so it must not be counted as
	// updated and its event must not go out.
	assert.Equal(t, 1, summary.Updated)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "ch-a")
	require.Len(t, pub.events, 1)
	assert.Equal(t, "ch-b", pub.events[0].ChannelKey)
	assert.False(t, repo.memberLive["ch-a"])
	assert.True(t, repo.memberLive["ch-b"])
}

func TestSyncCancellationStopsBetweenBatches(t *testing.T) {
	repo := newFakeLiveStatusRepo("ch-a", "ch-b", "ch-c", "ch-d", "ch-e", "ch-f")
	checker := &fakeChecker{live: map[string]bool{}}

	cfg := &config.SyncConfig{Concurrency: 2, InterBatchDelay: 50 * time.Millisecond}
	s := NewSynchronizer(repo, checker, nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	summary, err := s.Sync(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Less(t, len(checker.callOrder), 6, "later batches never started")
}

func TestSyncEmptyRoster(t *testing.T) {
	repo := newFakeLiveStatusRepo()
	s := NewSynchronizer(repo, &fakeChecker{}, nil, syncCfg(3))

	summary, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, repo.upserts)
}
