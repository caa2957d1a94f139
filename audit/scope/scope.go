// Package scope 提供执行范围内的环境上下文存储。
//
// 每个逻辑执行单元（一次请求、一个后台任务）持有一个独立的
// Scope，通过 context.Context 显式传递；并发执行之间互不可见，
// 不存在进程级隐式全局状态。变更捕获在追加审计条目前从 Scope
// 读取操作者、请求ID、远端地址与父实体引用。
package scope

import (
	"context"
	"sync"

	"auditrail/audit"
)

// Values 开启作用域时的初始环境值
type Values struct {
	// ActorSupplier 当前操作者提供函数，由集成层注册；
	// 返回 nil 表示当前没有操作者
	ActorSupplier func() *audit.Actor

	// RequestID 请求关联标识
	RequestID string

	// RemoteAddress 请求来源地址
	RemoteAddress string

	// Parent 所属/分组实体引用
	Parent *audit.Ref

	// Request 活动请求/控制器句柄（集成层自用，引擎不解释）
	Request any
}

// Scope 执行范围内的环境上下文（单一结构、具名字段）
//
// 所有读写都经过互斥锁；同一执行内的嵌套 RunAs 通过覆盖栈
// 实现，退出时恢复外层覆盖值。
type Scope struct {
	mu        sync.Mutex
	values    Values
	overrides []audit.Actor // RunAs 覆盖栈，栈顶优先
}

type contextKey struct{}

// New 创建空作用域
func New() *Scope { return &Scope{} }

// NewContext 将作用域挂到 context 上
func NewContext(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext 取出当前作用域；未开启时返回 nil
func FromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(contextKey{}).(*Scope)
	return s
}

// Begin 开启一个新作用域并填充初始值，返回携带作用域的 context。
// 调用方负责在执行单元结束时调用 (*Scope).End（推荐 defer，
// 保证失败路径也会清理）。
func Begin(ctx context.Context, values Values) (context.Context, *Scope) {
	s := New()
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return NewContext(ctx, s), s
}

// End 清空作用域的全部字段（包括覆盖栈）
func (s *Scope) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = Values{}
	s.overrides = nil
}

// CurrentActor 解析当前操作者：覆盖栈顶优先，其次询问
// ActorSupplier；都没有时返回 nil。任何一步缺失都不是错误。
func (s *Scope) CurrentActor() *audit.Actor {
	s.mu.Lock()
	if n := len(s.overrides); n > 0 {
		actor := s.overrides[n-1]
		s.mu.Unlock()
		return &actor
	}
	supplier := s.values.ActorSupplier
	s.mu.Unlock()

	// 供给函数在锁外调用，允许其内部再访问作用域
	if supplier != nil {
		return supplier()
	}
	return nil
}

// RequestID 环境请求ID（未设置时为空串）
func (s *Scope) RequestID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.RequestID
}

// RemoteAddress 环境远端地址（未设置时为空串）
func (s *Scope) RemoteAddress() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.RemoteAddress
}

// Parent 环境父实体引用（未设置时为 nil）
func (s *Scope) Parent() *audit.Ref {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values.Parent == nil {
		return nil
	}
	parent := *s.values.Parent
	return &parent
}

// Request 活动请求句柄
func (s *Scope) Request() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Request
}

// SetParent 设置父实体引用
func (s *Scope) SetParent(parent *audit.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.Parent = parent
}

// SetRequestID 设置请求ID
func (s *Scope) SetRequestID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.RequestID = id
}

// SetRemoteAddress 设置远端地址
func (s *Scope) SetRemoteAddress(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.RemoteAddress = addr
}

// SetActorSupplier 注册当前操作者提供函数
func (s *Scope) SetActorSupplier(supplier func() *audit.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.ActorSupplier = supplier
}

func (s *Scope) pushOverride(actor audit.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = append(s.overrides, actor)
}

func (s *Scope) popOverride() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.overrides); n > 0 {
		s.overrides = s.overrides[:n-1]
	}
}
