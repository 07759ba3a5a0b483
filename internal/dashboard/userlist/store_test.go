package userlist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
)

// fakeLister 可编程的列表读接口
type fakeLister struct {
	users []model.User
	err   error
	calls int
}

func (f *fakeLister) ListUsers(ctx context.Context) ([]model.User, error) {
	f.calls++
	return f.users, f.err
}

func sampleUsers() []model.User {
	return []model.User{
		{ID: 1, Name: "Alice Brown", Email: "alice@example.com", Gender: "female", Phone: "0123456789"},
		{ID: 2, Name: "Bob Stone", Email: "bob@example.com", Gender: "male", Phone: "0123456780"},
		{ID: 3, Name: "Carol White", Email: "carol@example.com", Gender: "female", Phone: "0123456781"},
	}
}

func TestFetchReplacesList(t *testing.T) {
	lister := &fakeLister{users: sampleUsers()}
	s := NewStore(lister)

	require.NoError(t, s.Fetch(context.Background()))
	snap := s.Snapshot()
	assert.Len(t, snap.List, 3)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)

	// 第二次拉取整体替换，不做增量合并
	lister.users = sampleUsers()[:1]
	require.NoError(t, s.Fetch(context.Background()))
	assert.Len(t, s.Snapshot().List, 1)
	assert.Equal(t, 2, lister.calls)
}

func TestFetchError(t *testing.T) {
	lister := &fakeLister{err: errors.New("upstream down")}
	s := NewStore(lister)

	err := s.Fetch(context.Background())
	require.Error(t, err)

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, "upstream down", snap.Error)
	assert.Empty(t, snap.List)

	// 错误后成功拉取清除错误
	lister.err = nil
	lister.users = sampleUsers()
	require.NoError(t, s.Fetch(context.Background()))
	snap = s.Snapshot()
	assert.Empty(t, snap.Error)
	assert.Len(t, snap.List, 3)
}

func TestFetchNilBecomesEmpty(t *testing.T) {
	s := NewStore(&fakeLister{users: nil})
	require.NoError(t, s.Fetch(context.Background()))
	assert.NotNil(t, s.Snapshot().List)
	assert.Empty(t, s.Snapshot().List)
}

func TestSnapshotIsolated(t *testing.T) {
	s := NewStore(&fakeLister{users: sampleUsers()})
	require.NoError(t, s.Fetch(context.Background()))

	snap := s.Snapshot()
	snap.List[0].Name = "tampered"
	assert.Equal(t, "Alice Brown", s.Snapshot().List[0].Name, "快照应为副本")
}

func TestSubscribe(t *testing.T) {
	s := NewStore(&fakeLister{users: sampleUsers()})

	notified := 0
	cancel := s.Subscribe(func() { notified++ })

	require.NoError(t, s.Fetch(context.Background()))
	assert.GreaterOrEqual(t, notified, 2, "loading 开始与结束各通知一次")

	cancel()
	before := notified
	require.NoError(t, s.Fetch(context.Background()))
	assert.Equal(t, before, notified, "取消订阅后不再收到通知")
}

// TestStaleFetchDiscarded 并发拉取时旧响应被丢弃（last-response-wins）
func TestStaleFetchDiscarded(t *testing.T) {
	blocker := make(chan struct{})
	slow := &blockingLister{
		release: blocker,
		started: make(chan struct{}),
		users:   []model.User{{ID: 99, Name: "Stale"}},
	}
	s := NewStore(slow)

	done := make(chan error, 1)
	go func() { done <- s.Fetch(context.Background()) }()
	<-slow.started

	// 让第二次拉取先完成
	s.mu.Lock()
	s.fetchSeq++
	s.list = sampleUsers()
	s.loading = false
	s.mu.Unlock()

	close(blocker)
	<-done

	snap := s.Snapshot()
	assert.Len(t, snap.List, 3, "迟到的旧响应不得覆盖新结果")
}

type blockingLister struct {
	release chan struct{}
	started chan struct{}
	users   []model.User
	once    sync.Once
}

func (b *blockingLister) ListUsers(ctx context.Context) ([]model.User, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.users, nil
}
