package zerr

const (
	detailPanicValue = "panic"
	detailStack      = "stack"
)

// FromPanic 把 recover() 得到的值转换为 ErrPanic 错误
// 若 panic 的值本身是 error，则作为 Wrapped 保留以便 errors.Is/As
func FromPanic(recovered any, stack []byte) *Error {
	e := Newf(ErrPanic, "panic: %v", recovered).
		WithDetail(detailPanicValue, recovered).
		WithDetail(detailStack, string(stack))
	if err, ok := recovered.(error); ok {
		e.Message = "panic"
		e.Wrapped = err
	}
	return e
}

// PanicValue 取出原始 panic 值
func PanicValue(err error) (any, bool) {
	e, ok := asPanic(err)
	if !ok {
		return nil, false
	}
	v, ok := e.Details[detailPanicValue]
	return v, ok
}

// Stack 取出 panic 时的调用栈
func Stack(err error) string {
	e, ok := asPanic(err)
	if !ok {
		return ""
	}
	s, _ := e.Details[detailStack].(string)
	return s
}

// asPanic 沿错误链查找第一个 ErrPanic（errors.As 会停在任意 *Error 上）
func asPanic(err error) (*Error, bool) {
	for cur := err; cur != nil; {
		if e, ok := cur.(*Error); ok && e.Code == ErrPanic {
			return e, true
		}
		u, ok := cur.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		cur = u.Unwrap()
	}
	return nil, false
}
