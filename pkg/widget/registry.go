package widget

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dmitrymomot/checkoutkit/pkg/cache"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
)

// Registry is an in-process Driver. It keeps the hooks of every rendered
// button by mount point so an HTTP surface can dispatch the browser widget's
// callbacks to them.
type Registry struct {
	capacity int
	logger   *slog.Logger
	mounts   *cache.LRUCache[string, *mounted]

	mu      sync.RWMutex
	scripts map[string]Script
}

type mounted struct {
	registry *Registry
	mount    string
	style    ButtonStyle

	mu     sync.RWMutex
	hooks  Hooks
	closed bool
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		capacity: 1024,
		logger:   logger.Discard(),
		scripts:  make(map[string]Script),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("widget_registry"))
	r.mounts = cache.NewLRUCache[string, *mounted](r.capacity)
	r.mounts.SetEvictCallback(func(mount string, m *mounted) {
		if m.clear() {
			r.logger.Debug("checkout button released", slog.String("mount", mount))
		}
	})
	return r
}

// Load registers script, replacing any registration with the same id.
func (r *Registry) Load(ctx context.Context, script Script) error {
	if script.ID == "" || !strings.HasPrefix(script.URL, "http") {
		return fmt.Errorf("invalid script registration %q", script.URL)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	prev, replaced := r.scripts[script.ID]
	r.scripts[script.ID] = script
	r.mu.Unlock()

	if replaced && prev.URL != script.URL {
		r.logger.DebugContext(ctx, "checkout script replaced", slog.String("script_id", script.ID))
	}
	return nil
}

// Script returns the registered script with the given id.
func (r *Registry) Script(id string) (Script, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scripts[id]
	return s, ok
}

// Render stores hooks under mount. A rendering already at mount is closed first.
func (r *Registry) Render(ctx context.Context, mount string, style ButtonStyle, hooks Hooks) (Rendering, error) {
	if mount == "" {
		return nil, ErrEmptyMount
	}
	if hooks.CreateIntent == nil || hooks.Approve == nil || hooks.Error == nil {
		return nil, fmt.Errorf("incomplete hooks for mount %q", mount)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := &mounted{registry: r, mount: mount, style: style, hooks: hooks}
	if old, existed := r.mounts.Put(mount, m); existed {
		old.clear()
	}
	r.logger.DebugContext(ctx, "checkout button rendered", slog.String("mount", mount))
	return m, nil
}

// Hooks returns the hooks rendered at mount.
func (r *Registry) Hooks(mount string) (Hooks, error) {
	m, ok := r.mounts.Get(mount)
	if !ok {
		return Hooks{}, ErrNotMounted
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Hooks{}, ErrNotMounted
	}
	return m.hooks, nil
}

// Style returns the style of the button rendered at mount.
func (r *Registry) Style(mount string) (ButtonStyle, bool) {
	m, ok := r.mounts.Get(mount)
	if !ok {
		return ButtonStyle{}, false
	}
	return m.style, true
}

// Len returns the number of live renderings.
func (r *Registry) Len() int {
	return r.mounts.Len()
}

// Close releases every rendering and forgets every script.
func (r *Registry) Close() error {
	r.mounts.Clear()
	r.mu.Lock()
	clear(r.scripts)
	r.mu.Unlock()
	return nil
}

// Close removes the rendering from its registry unless a newer one took its place.
func (m *mounted) Close() error {
	if !m.clear() {
		return nil
	}
	if cur, ok := m.registry.mounts.Get(m.mount); ok && cur == m {
		m.registry.mounts.Remove(m.mount)
	}
	return nil
}

// clear drops the hooks. It reports whether this call did it.
func (m *mounted) clear() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.closed = true
	m.hooks = Hooks{}
	return true
}
