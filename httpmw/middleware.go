// Package httpmw 提供 net/http 集成：为每个请求开启一个审计
// 作用域，请求处理期间的变更捕获自动带上操作者、请求ID与来源地址。
package httpmw

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"auditrail/audit"
	"auditrail/audit/scope"
)

// Config 中间件配置
type Config struct {
	// ActorSupplier 从请求解析当前操作者（如从会话/令牌）；
	// 为空或返回 nil 表示匿名请求
	ActorSupplier func(r *http.Request) *audit.Actor

	// RequestIDHeader 请求ID头名，默认 X-Request-ID；
	// 头缺失时生成随机ID
	RequestIDHeader string

	// TrustForwardedFor 是否信任 X-Forwarded-For（仅在有可信
	// 反向代理时开启）
	TrustForwardedFor bool
}

// Middleware 审计作用域中间件。
//
// 作用域在请求进入时开启、通过 defer 在请求结束时清理，
// handler panic 时同样清理（panic 继续向外传播，交给上层
// recover 中间件处理）。
func Middleware(cfg Config) func(http.Handler) http.Handler {
	if cfg.RequestIDHeader == "" {
		cfg.RequestIDHeader = "X-Request-ID"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(cfg.RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			values := scope.Values{
				RequestID:     requestID,
				RemoteAddress: remoteAddress(r, cfg.TrustForwardedFor),
				Request:       r,
			}
			if cfg.ActorSupplier != nil {
				req := r
				values.ActorSupplier = func() *audit.Actor { return cfg.ActorSupplier(req) }
			}

			ctx, sc := scope.Begin(r.Context(), values)
			defer sc.End()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func remoteAddress(r *http.Request, trustForwardedFor bool) string {
	if trustForwardedFor {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			// 取最左侧的原始客户端地址
			parts := strings.Split(forwarded, ",")
			return strings.TrimSpace(parts[0])
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
