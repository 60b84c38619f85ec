package arbor

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/arbor/internal/runtime"
	loamAdapter "github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/runner"
)

// Runtime is the high-level entry point for the arbor library.
// It wraps the internal engine together with its host and container, and
// provides a simplified API for consumers.
//
// A Runtime is not safe for concurrent use: drive it from one goroutine, or
// through Attach with a single-goroutine scheduler such as runner.FrameLoop.
type Runtime struct {
	engine    *runtime.Engine
	host      ports.Host
	container domain.NodeRef
	loader    ports.ViewLoader
	viewDir   string
	registry  *registry.Registry
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	Name      string
}

// Option defines a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runtime) {
		r.hooks = domain.MergeHooks(r.hooks, hooks)
	}
}

// WithLoader sets the ViewLoader used by RenderView.
func WithLoader(l ports.ViewLoader) Option {
	return func(r *Runtime) {
		r.loader = l
	}
}

// WithViewDir loads views from a Loam repository (Markdown, YAML or JSON
// documents) at dir, unless WithLoader provides another loader.
func WithViewDir(dir string) Option {
	return func(r *Runtime) {
		r.viewDir = dir
	}
}

// WithRegistry names the components view documents may use.
func WithRegistry(reg *registry.Registry) Option {
	return func(r *Runtime) {
		r.registry = reg
	}
}

// WithLogger sets a custom structured logger for the runtime.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithContainer sets the container used by RenderView before any Render call.
func WithContainer(container domain.NodeRef) Option {
	return func(r *Runtime) {
		r.container = container
	}
}

// WithName labels the runtime in logs.
func WithName(name string) Option {
	return func(r *Runtime) {
		r.Name = name
	}
}

// New initializes a Runtime rendering into host.
func New(host ports.Host, opts ...Option) (*Runtime, error) {
	if host == nil {
		return nil, domain.ErrNoHost
	}

	r := &Runtime{host: host}
	for _, opt := range opts {
		opt(r)
	}

	// Ensure logger is initialized (so we don't pass nil to the engine, which would overwrite its default)
	if r.logger == nil {
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if r.loader == nil && r.viewDir != "" {
		var loamOpts []loamAdapter.Option
		if r.registry != nil {
			loamOpts = append(loamOpts, loamAdapter.WithComponents(r.registry))
		}
		loader, err := loamAdapter.Open(r.viewDir, loamOpts...)
		if err != nil {
			return nil, err
		}
		r.loader = loader
	}

	if r.Name != "" {
		r.logger = r.logger.With("runtime", r.Name)
	}

	r.engine = runtime.NewEngine(host,
		runtime.WithLogger(r.logger),
		runtime.WithLifecycleHooks(r.hooks),
	)
	return r, nil
}

// Render schedules a render pass of root into container. Nothing reaches the
// host until the pass is worked to completion (Work, Flush or Attach).
// A pass still in flight is abandoned: the last render wins.
func (r *Runtime) Render(root domain.Element, container domain.NodeRef) {
	r.container = container
	r.engine.Render(root, container)
}

// RenderView loads a view through the configured loader and renders it into
// the current container.
func (r *Runtime) RenderView(ctx context.Context, id string) error {
	if r.loader == nil {
		return fmt.Errorf("no view loader configured")
	}
	if r.container == nil {
		return domain.ErrContainerNotFound
	}
	el, err := r.loader.Load(ctx, id)
	if err != nil {
		return err
	}
	r.engine.Render(el, r.container)
	return nil
}

// Work performs units of work until the deadline runs short, committing the
// pass once every unit is done.
func (r *Runtime) Work(ctx context.Context, deadline ports.Deadline) (domain.Status, error) {
	return r.engine.Work(ctx, deadline)
}

// Flush works the pending pass (and any pass it schedules) to its commit.
func (r *Runtime) Flush(ctx context.Context) error {
	return runner.Flush(ctx, r.engine)
}

// Attach drives the runtime from sched: every scheduled pass (renders and
// hook setters alike) requests idle slices until it commits. Errors go to
// onErr, which may be nil.
func (r *Runtime) Attach(ctx context.Context, sched ports.IdleScheduler, onErr func(error)) *runner.Driver {
	driver := runner.NewDriver(r.engine, sched, onErr).WithContext(ctx)
	r.engine.SetScheduleNotifier(driver.Wake)
	if r.engine.Status() == domain.StatusMoreWork {
		driver.Wake()
	}
	return driver
}

// Status reports whether a pass is pending.
func (r *Runtime) Status() domain.Status {
	return r.engine.Status()
}

// Current returns the root of the last committed fiber tree, or nil.
func (r *Runtime) Current() *runtime.Fiber {
	return r.engine.Current()
}

// LastCommit returns the report of the most recent commit.
func (r *Runtime) LastCommit() domain.CommitReport {
	return r.engine.LastCommit()
}

// Host returns the host environment.
func (r *Runtime) Host() ports.Host {
	return r.host
}

// Container returns the node the runtime renders into.
func (r *Runtime) Container() domain.NodeRef {
	return r.container
}

// Registry returns the component registry, or nil.
func (r *Runtime) Registry() *registry.Registry {
	return r.registry
}

// Loader returns the configured ViewLoader, or nil.
func (r *Runtime) Loader() ports.ViewLoader {
	return r.loader
}

// Snapshot describes the committed host tree under the container.
func (r *Runtime) Snapshot() (*domain.Snapshot, error) {
	s, ok := r.host.(ports.Snapshotter)
	if !ok {
		return nil, fmt.Errorf("host %T cannot take snapshots", r.host)
	}
	if r.container == nil {
		return nil, domain.ErrContainerNotFound
	}
	return s.Snapshot(r.container)
}

// Dispatch delivers event to the node whose "id" attribute is id.
// It reports whether a listener handled the event. Listeners usually call
// hook setters, so a pass is typically pending afterwards.
func (r *Runtime) Dispatch(id, event string, payload any) (bool, error) {
	finder, ok := r.host.(ports.Finder)
	if !ok {
		return false, fmt.Errorf("host %T cannot look nodes up", r.host)
	}
	dispatcher, ok := r.host.(ports.Dispatcher)
	if !ok {
		return false, fmt.Errorf("host %T cannot dispatch events", r.host)
	}
	if r.container == nil {
		return false, domain.ErrContainerNotFound
	}
	node, ok := finder.Find(r.container, id)
	if !ok {
		return false, fmt.Errorf("no node with id %q", id)
	}
	return dispatcher.Dispatch(node, event, payload)
}

// Watch returns a channel that signals when the loader's views change.
// Returns error if the loader does not support watching.
func (r *Runtime) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := r.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}
