// Package revision 基于审计日志回答历史问题：版本范围选取、
// 历史状态重建与单条目撤销。
//
// 版本号是升序历史中的 1 基序号，与条目 ID 一一对应但数值无关。
// 版本解析失败（超出范围）不是错误：FromVersion 回答空集，
// ToVersion 回答完整历史，调用方据此自然处理边界。
package revision

import (
	"context"

	"auditrail/audit"
	"auditrail/audit/store"
)

// ResolveVersion 把 1 基版本号解析为对应条目。
// version 小于 1 时按 1 处理；超出历史长度时返回 (nil, nil)。
func ResolveVersion(ctx context.Context, s store.IAuditStore, auditable audit.Ref, version int) (*audit.Entry, error) {
	if version < 1 {
		version = 1
	}
	entries, err := s.Load(ctx, auditable, &store.LoadOptions{
		Order: store.OrderAsc,
		Limit: version,
	})
	if err != nil {
		return nil, err
	}
	if len(entries) < version {
		return nil, nil
	}
	entry := entries[version-1]
	return &entry, nil
}

// FromVersion 返回版本号及其之后的全部条目（升序）。
// 版本未解析时返回空切片。
func FromVersion(ctx context.Context, s store.IAuditStore, auditable audit.Ref, version int) ([]audit.Entry, error) {
	resolved, err := ResolveVersion(ctx, s, auditable, version)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return []audit.Entry{}, nil
	}
	return s.Load(ctx, auditable, &store.LoadOptions{
		Order: store.OrderAsc,
		MinID: resolved.ID,
	})
}

// ToVersion 返回版本号及其之前的全部条目（升序）。
// 版本未解析时返回完整历史。
func ToVersion(ctx context.Context, s store.IAuditStore, auditable audit.Ref, version int) ([]audit.Entry, error) {
	resolved, err := ResolveVersion(ctx, s, auditable, version)
	if err != nil {
		return nil, err
	}
	opts := &store.LoadOptions{Order: store.OrderAsc}
	if resolved != nil {
		opts.MaxID = resolved.ID
	}
	return s.Load(ctx, auditable, opts)
}
