package actions

import (
	"context"
	"time"

	"github.com/momentum-xyz/media-placer/internal/loader"
	"github.com/momentum-xyz/media-placer/internal/logger"
	"github.com/momentum-xyz/media-placer/internal/objects"
	"github.com/momentum-xyz/media-placer/internal/placement"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
)

var log = logger.L().With("package", "actions")

var (
	ErrMissingSource = errors.New("upload has no usable file path")
	ErrUnknownType   = errors.New("unknown object type")
)

const (
	StatusPlaced     = "placed"
	StatusLoadFailed = "load_failed"
	StatusSaveFailed = "save_failed"
)

// Config is injected at construction; nothing is read from the environment here.
type Config struct {
	BaseURL     string
	Room        string
	Soundsystem string
}

// Notifier is told about every descriptor the backend accepted.
type Notifier interface {
	Announce(d objects.Descriptor) error
}

// Reporter records how each placement went.
type Reporter interface {
	Placement(kind, status string, latency time.Duration)
}

// Outcome is the settled result of one action. A load failure leaves Object
// nil; a save failure keeps Object and Descriptor but not Stored.
type Outcome struct {
	Object     *scene.Object
	Animation  *loader.Animation
	Descriptor *objects.Descriptor
	Stored     *objects.Descriptor
	Err        error
}

func (o Outcome) Placed() bool {
	return o.Object != nil
}

func (o Outcome) Persisted() bool {
	return o.Stored != nil
}

func (o Outcome) Status() string {
	switch {
	case o.Object == nil:
		return StatusLoadFailed
	case o.Err != nil:
		return StatusSaveFailed
	default:
		return StatusPlaced
	}
}

type Option func(a *Actions)

func WithNotifier(n Notifier) Option {
	return func(a *Actions) {
		a.notifier = n
	}
}

func WithReporter(r Reporter) Option {
	return func(a *Actions) {
		a.reporter = r
	}
}

// Actions places uploads in front of the viewer and persists what was placed.
type Actions struct {
	cfg      Config
	scene    scene.Container
	viewer   placement.Viewer
	loaders  *loader.Loaders
	store    objects.Store
	notifier Notifier
	reporter Reporter
}

func New(
	cfg Config, container scene.Container, viewer placement.Viewer, loaders *loader.Loaders, store objects.Store,
	opts ...Option,
) *Actions {
	if cfg.Room == "" {
		cfg.Room = "default"
	}
	a := &Actions{
		cfg:      cfg,
		scene:    container,
		viewer:   viewer,
		loaders:  loaders,
		store:    store,
		notifier: nopNotifier{},
		reporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Actions) Room() string {
	return a.cfg.Room
}

func (a *Actions) url(path string) string {
	return a.cfg.BaseURL + path
}

type loadFunc func() (*scene.Object, *loader.Animation, error)

type describeFunc func(obj *scene.Object) objects.Descriptor

// settle runs one action in the background and delivers exactly one outcome.
func (a *Actions) settle(ctx context.Context, kind objects.Type, load loadFunc, describe describeFunc) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		started := time.Now()
		o := a.place(ctx, kind, load, describe)
		a.reporter.Placement(string(kind), o.Status(), time.Since(started))
		out <- o
	}()
	return out
}

func (a *Actions) place(ctx context.Context, kind objects.Type, load loadFunc, describe describeFunc) Outcome {
	obj, anim, err := load()
	if err != nil {
		return Outcome{Err: errors.WithMessagef(err, "failed to add %s", kind)}
	}

	d := describe(obj)
	d.Type = kind
	d.Room = a.cfg.Room
	d.UUID = obj.UUID().String()
	o := Outcome{Object: obj, Animation: anim, Descriptor: &d}

	stored, err := a.store.SaveObject(ctx, d)
	if err != nil {
		o.Err = errors.WithMessagef(err, "failed to save %s %s", kind, d.UUID)
		log.Error(o.Err)
		return o
	}
	o.Stored = stored

	if err := a.notifier.Announce(*stored); err != nil {
		log.Warn(errors.WithMessagef(err, "failed to announce %s %s", kind, d.UUID))
	}
	return o
}

// failed delivers an outcome for an action that could not start.
func failed(err error) <-chan Outcome {
	log.Error(err)
	out := make(chan Outcome, 1)
	out <- Outcome{Err: err}
	close(out)
	return out
}

func noAnimation(obj *scene.Object, err error) (*scene.Object, *loader.Animation, error) {
	return obj, nil, err
}

// pose captures the final transform of obj for its descriptor.
func pose(obj *scene.Object, d *objects.Descriptor) {
	pos, rot := obj.Position(), obj.Rotation()
	d.Position = &pos
	d.Rotation = &rot
}

type nopNotifier struct{}

func (nopNotifier) Announce(objects.Descriptor) error { return nil }

type nopReporter struct{}

func (nopReporter) Placement(string, string, time.Duration) {}
