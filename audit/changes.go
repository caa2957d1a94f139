package audit

// Changes 属性变更集。
//
// create 条目的值是属性的新值本身；update/destroy 条目的值是
// [旧值, 新值] 二元组。该不对称性是有意的：create 没有旧值，
// destroy 以旧值形式保留实体最后一次的完整属性集。
//
// 二元组以 []any 表示，经过 JSON 编解码（SQL 存储）后形态不变。
type Changes map[string]any

// Pair 构造 [旧值, 新值] 二元组
func Pair(oldValue, newValue any) []any {
	return []any{oldValue, newValue}
}

// PairValues 判断变更值是否为二元组，是则拆出旧值/新值
func PairValues(v any) (oldValue, newValue any, ok bool) {
	pair, isPair := v.([]any)
	if !isPair || len(pair) != 2 {
		return nil, nil, false
	}
	return pair[0], pair[1], true
}

// NewValues 返回各属性的新值视图：二元组取第二个元素，其余取原值
func (c Changes) NewValues() map[string]any {
	attrs := make(map[string]any, len(c))
	for k, v := range c {
		if _, newValue, ok := PairValues(v); ok {
			attrs[k] = newValue
			continue
		}
		attrs[k] = v
	}
	return attrs
}

// OldValues 返回各属性的旧值视图：二元组取第一个元素，其余取原值
func (c Changes) OldValues() map[string]any {
	attrs := make(map[string]any, len(c))
	for k, v := range c {
		if oldValue, _, ok := PairValues(v); ok {
			attrs[k] = oldValue
			continue
		}
		attrs[k] = v
	}
	return attrs
}
