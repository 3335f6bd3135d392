package zrouter

import (
	"strings"

	"github.com/SparkleBo/zchain/ziface"
)

type segKind uint8

const (
	skStatic   segKind = iota // 字面量段
	skParam                   // :param
	skWildcard                // *
)

type segment struct {
	kind  segKind
	label string // static 为段内容，param 为参数名
}

// Pattern 编译后的路由模式，例如 /users/:id、/static/*
type Pattern struct {
	method string
	path   string
	segs   []segment
}

// Compile 编译路由模式；wildcard 之后的段被忽略（* 吃掉余下路径）
func Compile(method, path string) *Pattern {
	p := &Pattern{method: strings.ToUpper(method), path: Join("", path)}
	for _, s := range splitPath(p.path) {
		switch {
		case s == "*":
			p.segs = append(p.segs, segment{kind: skWildcard})
			return p
		case strings.HasPrefix(s, ":"):
			p.segs = append(p.segs, segment{kind: skParam, label: s[1:]})
		default:
			p.segs = append(p.segs, segment{kind: skStatic, label: s})
		}
	}
	return p
}

// String 形如 "GET /users/:id"
func (p *Pattern) String() string { return p.method + " " + p.path }

// Match 匹配方法与路径，成功时返回路径参数
func (p *Pattern) Match(method, path string) (map[string]string, bool) {
	if p.method != strings.ToUpper(method) {
		return nil, false
	}
	segs := splitPath(path)
	params := map[string]string{}
	for i, seg := range p.segs {
		if seg.kind == skWildcard {
			return params, true
		}
		if i >= len(segs) {
			return nil, false
		}
		switch seg.kind {
		case skStatic:
			if segs[i] != seg.label {
				return nil, false
			}
		case skParam:
			params[seg.label] = segs[i]
		}
	}
	if len(segs) != len(p.segs) {
		return nil, false
	}
	return params, true
}

// Filter 生成管道过滤谓词：第一个参数须为 ziface.Context 且方法、路径匹配
func (p *Pattern) Filter() ziface.Filter {
	return func(args ziface.Args) bool {
		ctx, ok := ContextOf(args)
		if !ok {
			return false
		}
		_, ok = p.Match(ctx.Method(), ctx.Path())
		return ok
	}
}

// ContextOf 取调用参数中的请求上下文（约定为第一个参数）
func ContextOf(args ziface.Args) (ziface.Context, bool) {
	if len(args) == 0 {
		return nil, false
	}
	ctx, ok := args[0].(ziface.Context)
	return ctx, ok
}

// --- helpers ---

func splitPath(path string) []string {
	p := strings.Trim(path, "/")
	if p == "" {
		return []string{}
	}
	return strings.Split(p, "/")
}

// Join 拼接前缀与路径，结果总以 / 开头
func Join(a, b string) string {
	if a == "/" {
		a = ""
	}
	if b == "/" {
		b = ""
	}
	if a == "" && b == "" {
		return "/"
	}
	if a == "" {
		return ensureSlashPrefix(b)
	}
	if b == "" {
		return ensureSlashPrefix(a)
	}
	return ensureSlashPrefix(strings.TrimRight(a, "/") + "/" + strings.TrimLeft(b, "/"))
}

func ensureSlashPrefix(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
