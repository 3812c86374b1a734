package modkit

import (
	"net/http"
	"reflect"
	"strings"

	phttp "devquest/internal/platform/net/http"
)

// Module is what the api mounts under /api/v1
type Module interface {
	Name() string
	Prefix() string
	MountRoutes(r phttp.Router)
	Ports() any
}

// Option tweaks a module's Base before its routes are wired
type Option func(*Base)

// WithName overrides the module name used in logs
func WithName(name string) Option {
	return func(b *Base) { b.name = name }
}

// WithPrefix overrides the mount prefix
func WithPrefix(prefix string) Option {
	return func(b *Base) { b.prefix = prefix }
}

// WithMiddlewares appends per module middleware, applied in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Base) { b.mws = append(b.mws, mw...) }
}

// WithPorts hands a module the ports it borrows from another module
// the concrete type belongs to the receiving module
func WithPorts[T any](p T) Option {
	return func(b *Base) { b.in = p }
}

// WithRoutes mounts extra routes after the module's own
func WithRoutes(fn func(phttp.Router)) Option {
	return func(b *Base) { b.extra = fn }
}

// Base carries the mount settings every module shares
// modules embed it and supply their own register func to Mount
type Base struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	in     any
	extra  func(phttp.Router)
}

// Build returns a Base with the module defaults and opts applied on top
// it panics on an empty name or a root prefix, both are wiring bugs
func Build(name, prefix string, opts ...Option) Base {
	b := Base{name: name, prefix: prefix}
	for _, o := range opts {
		o(&b)
	}
	if strings.TrimSpace(b.name) == "" {
		panic("modkit: module name is required")
	}
	b.prefix = "/" + strings.Trim(strings.TrimSpace(b.prefix), "/")
	if b.prefix == "/" {
		panic("modkit: module " + b.name + " needs a non-root prefix")
	}
	return b
}

// Name returns the module name
func (b Base) Name() string { return b.name }

// Prefix returns the normalized mount prefix
func (b Base) Prefix() string { return b.prefix }

// Middlewares returns a copy of the per module middleware
func (b Base) Middlewares() []func(http.Handler) http.Handler {
	return append([]func(http.Handler) http.Handler(nil), b.mws...)
}

// Injected returns whatever WithPorts supplied, nil otherwise
func (b Base) Injected() any { return b.in }

// Mount opens the module prefix on r, applies middleware, then calls register
func (b Base) Mount(r phttp.Router, register func(phttp.Router)) {
	r.Route(b.prefix, func(sub phttp.Router) {
		if len(b.mws) > 0 {
			sub.Use(b.mws...)
		}
		register(sub)
		if b.extra != nil {
			b.extra(sub)
		}
	})
}

// PortsOf pulls T out of a module's ports, either the value itself
// or the first exported struct field that satisfies T
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return zero, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for bootstrap code, it panics when T is missing
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic("modkit: module " + m.Name() + " does not expose " + reflect.TypeFor[T]().String())
	}
	return v
}
