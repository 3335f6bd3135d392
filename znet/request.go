package znet

import (
	"net"
	"sync"
)

// Request 一行请求，作为管道的唯一调用参数
type Request struct {
	Conn net.Conn
	Line string
	// Reply 完成时写回的内容，为空则回显 Line
	Reply string

	once     sync.Once
	answered chan struct{}
	answer   string
}

func newRequest(conn net.Conn, line string) *Request {
	return &Request{Conn: conn, Line: line, answered: make(chan struct{})}
}

// Respond 节点直接应答并接管请求（通常随后不再调用 next）
// 只有第一次调用生效
func (r *Request) Respond(msg string) {
	r.once.Do(func() {
		r.answer = msg
		close(r.answered)
	})
}
