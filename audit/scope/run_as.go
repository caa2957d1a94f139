package scope

import (
	"context"

	"auditrail/audit"
)

// RunAs 在 body 执行期间强制审计操作者为 actor，优先于环境
// ActorSupplier。覆盖在所有退出路径上都会弹出（包括 body 返回
// 错误或 panic），且采用栈式恢复：嵌套调用退出时恢复外层覆盖值
// 而不是整体清空。
//
// body 的错误原样向上传播，RunAs 不包装也不吞掉。
// context 未携带作用域时会为 body 创建一个临时作用域。
func RunAs(ctx context.Context, actor audit.Actor, body func(ctx context.Context) error) error {
	s := FromContext(ctx)
	if s == nil {
		var ephemeral *Scope
		ctx, ephemeral = Begin(ctx, Values{})
		defer ephemeral.End()
		s = ephemeral
	}

	s.pushOverride(actor)
	defer s.popOverride()

	return body(ctx)
}

// RunAsName RunAs 的便捷形式，操作者为自由文本名称
func RunAsName(ctx context.Context, name string, body func(ctx context.Context) error) error {
	var actor audit.Actor
	actor.SetName(name)
	return RunAs(ctx, actor, body)
}

// RunAsRef RunAs 的便捷形式，操作者为实体引用
func RunAsRef(ctx context.Context, ref audit.Ref, body func(ctx context.Context) error) error {
	var actor audit.Actor
	actor.SetRef(ref)
	return RunAs(ctx, actor, body)
}
