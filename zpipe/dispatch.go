package zpipe

import (
	"reflect"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/SparkleBo/zchain/zerr"
	"github.com/SparkleBo/zchain/ziface"
)

// invocation 单次 run 的私有状态，不与其它 run 共享
type invocation struct {
	args   ziface.Args
	queue  []ziface.Handler
	done   func(ziface.Args)
	logger zerolog.Logger

	// 拦截模式下的错误处理器，未开启拦截时为 nil
	onError ziface.ErrorHandler
	// future 模式下的 reject，其它模式为 nil
	reject func(error)
	// 是否把 panic 转成错误
	recoverPanics bool

	mu sync.Mutex
	// 已经由下游处理过（经 next 返回）的错误，外层节点再返回时不重复拦截
	handled []error
}

func (inv *invocation) start() error {
	return inv.next()()
}

// next 每个节点拿到独立的续延，重复调用无效果
func (inv *invocation) next() ziface.Next {
	var used atomic.Bool
	return func() error {
		if !used.CompareAndSwap(false, true) {
			return nil
		}
		err := inv.advance()
		if err != nil && inv.onError != nil {
			inv.mu.Lock()
			inv.handled = append(inv.handled, err)
			inv.mu.Unlock()
		}
		return err
	}
}

func (inv *invocation) advance() error {
	if len(inv.queue) == 0 {
		inv.logger.Debug().Int("args", len(inv.args)).Msg("pipeline completed")
		inv.done(inv.argsCopy())
		return nil
	}
	h := inv.queue[0]
	inv.queue = inv.queue[1:]
	return inv.invoke(h)
}

func (inv *invocation) invoke(h ziface.Handler) (err error) {
	if inv.recoverPanics {
		defer func() {
			if rec := recover(); rec != nil {
				err = inv.fail(zerr.FromPanic(rec, debug.Stack()))
			}
		}()
	}
	if err = h(inv.argsCopy(), inv.next()); err != nil {
		return inv.fail(err)
	}
	return nil
}

// fail 拦截模式下把错误交给错误处理器；链路不会自动继续
func (inv *invocation) fail(err error) error {
	if inv.onError != nil {
		if inv.alreadyHandled(err) {
			return err
		}
		inv.logger.Debug().Err(err).Msg("pipeline error intercepted")
		if err = inv.onError(inv.argsCopy(), err); err == nil {
			return nil
		}
	}
	if inv.reject != nil {
		inv.reject(err)
	}
	return err
}

func (inv *invocation) alreadyHandled(err error) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for _, h := range inv.handled {
		if chainContains(err, h) {
			return true
		}
	}
	return false
}

// argsCopy 参数切片按调用复制，元素本身保持同一引用
func (inv *invocation) argsCopy() ziface.Args {
	return append(ziface.Args{}, inv.args...)
}

// chainContains 沿 Unwrap 链按同一性查找 target
// 不使用 errors.Is，避免自定义 Is 方法（如按错误码比较）造成误判
func chainContains(err, target error) bool {
	if err == nil {
		return false
	}
	if sameError(err, target) {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return chainContains(u.Unwrap(), target)
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if chainContains(e, target) {
				return true
			}
		}
	}
	return false
}

// sameError 按同一性比较；动态值不可比较（如接口字段里放了切片）时退化为深度相等，== 会 panic
func sameError(a, b error) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !reflect.ValueOf(a).Comparable() || !reflect.ValueOf(b).Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}
