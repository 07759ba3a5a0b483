// Package userlist 用户列表仓库
//
// 进程内状态容器：持有拉取到的用户集合与加载/错误状态，
// 只通过声明的命令方法（Fetch）变更，消费方经快照与订阅接口
// 只读访问——没有可被任意代码改写的全局可变单例。
package userlist

import (
	"context"
	"sync"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/pkg/logging"
)

// Lister 列表仓库需要的用户读接口
type Lister interface {
	ListUsers(ctx context.Context) ([]model.User, error)
}

// State 列表状态快照
type State struct {
	List    []model.User
	Loading bool
	Error   string
}

// Store 用户列表仓库
type Store struct {
	client Lister
	logger *logging.Logger

	mu       sync.Mutex
	list     []model.User
	loading  bool
	errMsg   string
	fetchSeq uint64 // 进行中拉取的序号，迟到响应直接丢弃（last-response-wins）

	nextSubID int
	subs      map[int]func()
}

// NewStore 创建列表仓库
func NewStore(client Lister) *Store {
	return &Store{
		client: client,
		logger: logging.Default("userlist"),
		list:   []model.User{},
		subs:   map[int]func(){},
	}
}

// Fetch 全量拉取用户列表
//
// 幂等，可任意重复调用（每次成功变更后都会被再次触发）。
// 结果整体替换 list，不做增量合并；并发触发时后完成的
// 旧响应被序号检查丢弃。
func (s *Store) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.loading = true
	s.mu.Unlock()
	s.notify()

	users, err := s.client.ListUsers(ctx)

	s.mu.Lock()
	if seq != s.fetchSeq {
		// 已有更新的拉取启动，丢弃本次结果
		s.mu.Unlock()
		return err
	}
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		s.mu.Unlock()
		s.notify()
		s.logger.WithError(err).Warn("user list fetch failed")
		return err
	}
	s.errMsg = ""
	if users == nil {
		users = []model.User{}
	}
	s.list = users
	s.mu.Unlock()
	s.notify()
	return nil
}

// Snapshot 返回当前状态的只读快照（列表为副本）
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]model.User, len(s.list))
	copy(list, s.list)
	return State{List: list, Loading: s.loading, Error: s.errMsg}
}

// Subscribe 订阅状态变更通知
//
// 返回取消函数。回调在状态变更后同步触发，不携带负载——
// 订阅方应调用 Snapshot() 重新读取。
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
