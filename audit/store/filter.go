package store

import (
	"sort"

	"auditrail/audit"
)

// FilterWithOptions 对内存中的条目切片应用 LoadOptions，统一
// 排序/过滤/截断语义。内存存储与缓存装饰器共用该实现。
//
// 输入切片不被修改；返回新切片。
func FilterWithOptions(entries []audit.Entry, opts *LoadOptions) []audit.Entry {
	if opts == nil {
		opts = &LoadOptions{}
	}

	sorted := make([]audit.Entry, len(entries))
	copy(sorted, entries)
	// 排序永远依据 ID，不依据时间戳
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	actionFilter := make(map[audit.Action]struct{}, len(opts.Actions))
	for _, a := range opts.Actions {
		actionFilter[a] = struct{}{}
	}

	result := make([]audit.Entry, 0, len(sorted))
	for _, e := range sorted {
		if opts.MinID > 0 && e.ID < opts.MinID {
			continue
		}
		if opts.MaxID > 0 && e.ID > opts.MaxID {
			continue
		}
		if !opts.CreatedBefore.IsZero() && e.CreatedAt.After(opts.CreatedBefore) {
			continue
		}
		if len(actionFilter) > 0 {
			if _, ok := actionFilter[e.Action]; !ok {
				continue
			}
		}
		result = append(result, e)
	}

	if opts.Order == OrderDesc {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}
