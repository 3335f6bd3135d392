// Package zerr 提供带错误码的结构化错误
package zerr

import (
	"errors"
	"fmt"
)

// ErrorCode 稳定的错误码，便于测试与判断
type ErrorCode string

const (
	ErrUnknown         ErrorCode = "UNKNOWN"
	ErrInternal        ErrorCode = "INTERNAL"
	ErrInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	ErrPanic           ErrorCode = "PANIC"

	// 配置
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"

	// 服务
	ErrServer ErrorCode = "SERVER"
)

// Error 结构化错误
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is 错误码相同即视为同一类错误
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any)}
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap 包装已有错误，err 为 nil 时返回 nil
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

func Wrapf(err error, code ErrorCode, format string, args ...any) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail 附加细节字段
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// InvalidArgument 参数校验失败（注册非法处理器等）
func InvalidArgument(format string, args ...any) *Error {
	return Newf(ErrInvalidArgument, format, args...)
}

// IsErrorCode 判断错误链上是否存在指定错误码
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetErrorCode 非 *Error 时返回 ErrUnknown
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}
