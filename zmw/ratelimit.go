package zmw

import (
	"golang.org/x/time/rate"

	"github.com/SparkleBo/zchain/ziface"
)

// RateLimit 令牌桶限流
// rps: 每秒产生的令牌数，burst: 桶容量
// 无令牌时调用 onLimited 并终止链路（由 onLimited 负责后续，例如直接响应 429）
func RateLimit(rps int, burst int, onLimited func(args ziface.Args) error) ziface.Handler {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(args ziface.Args, next ziface.Next) error {
		if limiter.Allow() {
			return next()
		}
		if onLimited == nil {
			return nil
		}
		return onLimited(args)
	}
}
