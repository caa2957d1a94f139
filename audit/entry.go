// Package audit 定义审计条目数据模型。
//
// 一条 Entry 记录被追踪实体的一次 create/update/destroy 变更：
// 变更了什么（Changes）、谁变更的（Actor）、在哪个请求上下文中
// （RequestID/RemoteAddress）。条目一经追加即不可变，按 ID 升序
// 构成该实体完整、无间隙的变更历史。
package audit

import (
	"fmt"
	"time"
)

// Action 变更动作（封闭枚举）
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDestroy Action = "destroy"
)

// Valid 检查动作是否为已知枚举值
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDestroy:
		return true
	}
	return false
}

// Ref 多态实体引用（类型名 + 标识符）
//
// 审计条目只保存引用，不解析为活动实体；解析是实体层
// （entity.IEntityStore）的能力。
type Ref struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// IsZero 引用是否为空
func (r Ref) IsZero() bool { return r.Type == "" && r.ID == "" }

func (r Ref) String() string { return fmt.Sprintf("%s:%s", r.Type, r.ID) }

// Actor 操作者标签联合：实体引用 XOR 自由文本名称。
// 二者至多一个被设置；通过 SetRef/SetName 写入时互斥清除。
type Actor struct {
	Ref  *Ref   `json:"ref,omitempty"`
	Name string `json:"name,omitempty"`
}

// SetRef 设置实体引用形式的操作者，同时清除文本名称
func (a *Actor) SetRef(r Ref) {
	a.Ref = &r
	a.Name = ""
}

// SetName 设置文本形式的操作者，同时清除实体引用
func (a *Actor) SetName(name string) {
	a.Name = name
	a.Ref = nil
}

// IsZero 操作者是否未设置
func (a Actor) IsZero() bool { return a.Ref == nil && a.Name == "" }

func (a Actor) String() string {
	if a.Ref != nil {
		return a.Ref.String()
	}
	return a.Name
}

// Entry 审计条目
//
// ID 在追加时由存储分配，分配顺序即为该实体变更历史的权威顺序
// （时间戳只作参考，排序永远依据 ID）。追加后条目不再被修改。
type Entry struct {
	ID            int64     `json:"id"`
	Auditable     Ref       `json:"auditable"`
	Associated    *Ref      `json:"associated,omitempty"`
	Actor         Actor     `json:"actor,omitempty"`
	Parent        *Ref      `json:"parent,omitempty"`
	Action        Action    `json:"action"`
	Changes       Changes   `json:"changes"`
	Comment       string    `json:"comment,omitempty"`
	RequestID     string    `json:"request_id"`
	RemoteAddress string    `json:"remote_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate 结构校验（存储追加前调用）
func (e *Entry) Validate() error {
	if e.Auditable.Type == "" {
		return fmt.Errorf("审计对象类型不能为空")
	}
	if e.Auditable.ID == "" {
		return fmt.Errorf("审计对象ID不能为空")
	}
	if !e.Action.Valid() {
		return fmt.Errorf("未知的审计动作: %q", e.Action)
	}
	if e.Actor.Ref != nil && e.Actor.Name != "" {
		return fmt.Errorf("操作者引用与文本名称不能同时设置")
	}
	return nil
}

// Clone 复制条目（Changes 做一层浅拷贝，读取方可安全持有）
func (e *Entry) Clone() *Entry {
	clone := *e
	if e.Changes != nil {
		clone.Changes = make(Changes, len(e.Changes))
		for k, v := range e.Changes {
			clone.Changes[k] = v
		}
	}
	if e.Associated != nil {
		associated := *e.Associated
		clone.Associated = &associated
	}
	if e.Parent != nil {
		parent := *e.Parent
		clone.Parent = &parent
	}
	if e.Actor.Ref != nil {
		ref := *e.Actor.Ref
		clone.Actor.Ref = &ref
	}
	return &clone
}
