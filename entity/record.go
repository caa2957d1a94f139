package entity

// Record 以属性映射为后端的通用实体实现（用于嵌入与测试）。
//
// 声明了属性名集合时，只有声明过的属性可写，未声明的属性
// 被 SetAttribute 拒绝（返回 false）；未声明任何属性名时全部可写。
type Record struct {
	typeName string
	id       string
	attrs    map[string]any
	declared map[string]struct{}
	frozen   bool
}

// NewRecord 创建实体记录。attrNames 为可写属性白名单，留空表示不限制。
func NewRecord(typeName, id string, attrNames ...string) *Record {
	r := &Record{
		typeName: typeName,
		id:       id,
		attrs:    make(map[string]any),
	}
	if len(attrNames) > 0 {
		r.declared = make(map[string]struct{}, len(attrNames))
		for _, name := range attrNames {
			r.declared[name] = struct{}{}
		}
	}
	return r
}

func (r *Record) EntityType() string { return r.typeName }
func (r *Record) EntityID() string   { return r.id }

// SetID 由实体存储在持久化时分配标识符
func (r *Record) SetID(id string) { r.id = id }

func (r *Record) Attributes() map[string]any {
	attrs := make(map[string]any, len(r.attrs))
	for k, v := range r.attrs {
		attrs[k] = v
	}
	return attrs
}

func (r *Record) SetAttribute(name string, value any) bool {
	if r.frozen {
		return false
	}
	if r.declared != nil {
		if _, ok := r.declared[name]; !ok {
			return false
		}
	}
	r.attrs[name] = value
	return true
}

// Get 读取单个属性
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

// Freeze 冻结实体，之后的 SetAttribute 均被拒绝
func (r *Record) Freeze() { r.frozen = true }

func (r *Record) IsFrozen() bool { return r.frozen }

// Clone 返回未冻结的脱离副本
func (r *Record) Clone() IEntity {
	clone := &Record{
		typeName: r.typeName,
		id:       r.id,
		attrs:    make(map[string]any, len(r.attrs)),
	}
	for k, v := range r.attrs {
		clone.attrs[k] = v
	}
	if r.declared != nil {
		clone.declared = make(map[string]struct{}, len(r.declared))
		for k := range r.declared {
			clone.declared[k] = struct{}{}
		}
	}
	return clone
}

// 确认实现接口
var (
	_ IEntity    = (*Record)(nil)
	_ IFreezable = (*Record)(nil)
)
