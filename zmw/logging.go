package zmw

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/SparkleBo/zchain/ziface"
)

// Logging 记录下游链路耗时与错误
// 下游异步继续或被终止时，这里记录的是同步部分的耗时
func Logging(logger zerolog.Logger) ziface.Handler {
	return func(args ziface.Args, next ziface.Next) error {
		start := time.Now()
		err := next()
		ev := logger.Info()
		if err != nil {
			ev = logger.Error().Err(err)
		}
		ev.Int("args", len(args)).Dur("duration", time.Since(start)).Msg("pipeline pass")
		return err
	}
}
