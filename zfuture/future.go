// Package zfuture 提供只能落定一次的 Future
package zfuture

import (
	"context"
	"sync"
)

// Future 异步结果：要么以值 resolve，要么以错误 reject，只落定一次
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	mu    sync.Mutex
	value T
	err   error
	cbs   []func(T, error)
}

// New 返回 Future 以及对应的 resolve / reject
// 对已落定的 Future 再次 resolve/reject 不产生任何效果
func New[T any]() (*Future[T], func(T), func(error)) {
	f := &Future[T]{done: make(chan struct{})}
	return f, f.resolve, f.reject
}

// Resolved 已成功落定的 Future
func Resolved[T any](v T) *Future[T] {
	f, resolve, _ := New[T]()
	resolve(v)
	return f
}

// Rejected 已失败落定的 Future
func Rejected[T any](err error) *Future[T] {
	f, _, reject := New[T]()
	reject(err)
	return f
}

func (f *Future[T]) resolve(v T) {
	f.settle(v, nil)
}

func (f *Future[T]) reject(err error) {
	var zero T
	f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.value, f.err = v, err
		cbs := f.cbs
		f.cbs = nil
		close(f.done)
		f.mu.Unlock()
		for _, cb := range cbs {
			cb(v, err)
		}
	})
}

// Done 落定时关闭
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait 阻塞直到落定或 ctx 结束；ctx 只限制等待方，不影响计算本身
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result 非阻塞读取，settled 为 false 时值与错误无意义
func (f *Future[T]) Result() (value T, settled bool, err error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, true, f.err
	default:
		var zero T
		return zero, false, nil
	}
}

// Then 注册落定回调；已落定时立即在当前 goroutine 调用
func (f *Future[T]) Then(cb func(T, error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		v, err := f.value, f.err
		f.mu.Unlock()
		cb(v, err)
	default:
		f.cbs = append(f.cbs, cb)
		f.mu.Unlock()
	}
}
