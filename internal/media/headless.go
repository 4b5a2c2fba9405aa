package media

import (
	"context"

	"github.com/momentum-xyz/media-placer/internal/eventloop"
	"github.com/momentum-xyz/media-placer/utils"

	"github.com/sasha-s/go-deadlock"
)

// ProbeFunc reports the intrinsic size of a video. Zero values mean unknown.
type ProbeFunc func(src string) (width, height int)

// Headless is a Provider without any output device. It follows the usual
// autoplay rules: muted media may start at once, audible media and the audio
// context need a prior click.
type Headless struct {
	loop   *eventloop.Loop
	clicks *ClickBus
	audio  *headlessContext
	probe  ProbeFunc
}

var _ Provider = (*Headless)(nil)

func NewHeadless(loop *eventloop.Loop, probe ProbeFunc) *Headless {
	if probe == nil {
		probe = func(string) (int, int) { return 0, 0 }
	}
	clicks := NewClickBus(loop)
	return &Headless{
		loop:   loop,
		clicks: clicks,
		audio:  &headlessContext{clicks: clicks, state: ContextSuspended},
		probe:  probe,
	}
}

func (h *Headless) Clicks() *ClickBus {
	return h.clicks
}

func (h *Headless) Gestures() Gestures {
	return h.clicks
}

func (h *Headless) AudioContext() AudioContext {
	return h.audio
}

func (h *Headless) NewVideo(src string, opts ElementOptions) VideoElement {
	return &headlessVideo{headlessElement: h.newElement(src, opts)}
}

func (h *Headless) NewAudio(src string, opts ElementOptions) AudioElement {
	return &headlessAudio{headlessElement: h.newElement(src, opts)}
}

func (h *Headless) newElement(src string, opts ElementOptions) *headlessElement {
	return &headlessElement{
		src:   src,
		opts:  opts,
		owner: h,
		mu:    new(deadlock.Mutex),
	}
}

type headlessElement struct {
	src     string
	opts    ElementOptions
	owner   *Headless
	playing utils.TAtomBool

	mu     *deadlock.Mutex
	width  int
	height int
}

func (e *headlessElement) Src() string {
	return e.src
}

func (e *headlessElement) Options() ElementOptions {
	return e.opts
}

func (e *headlessElement) Dimensions() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

func (e *headlessElement) Play() error {
	if !e.opts.Muted && !e.owner.clicks.Activated() {
		return ErrPlaybackBlocked
	}
	e.playing.Set(true)
	return nil
}

func (e *headlessElement) Pause() {
	e.playing.Set(false)
}

func (e *headlessElement) Playing() bool {
	return e.playing.Get()
}

type headlessVideo struct {
	*headlessElement
	onMetadata []func(width, height int)
}

func (v *headlessVideo) OnLoadedMetadata(fn func(width, height int)) {
	v.onMetadata = append(v.onMetadata, fn)
}

// Load probes the source and fires loaded-metadata on the event loop.
func (v *headlessVideo) Load() {
	listeners := append(([]func(int, int))(nil), v.onMetadata...)
	v.owner.loop.Post(func() {
		w, h := v.owner.probe(v.src)
		v.mu.Lock()
		v.width, v.height = w, h
		v.mu.Unlock()
		for _, fn := range listeners {
			fn(w, h)
		}
	})
}

type headlessAudio struct {
	*headlessElement
	onCanPlayThrough []func()
}

func (a *headlessAudio) OnCanPlayThrough(fn func()) {
	a.onCanPlayThrough = append(a.onCanPlayThrough, fn)
}

func (a *headlessAudio) Load() {
	listeners := append(([]func())(nil), a.onCanPlayThrough...)
	a.owner.loop.Post(func() {
		for _, fn := range listeners {
			fn()
		}
	})
}

type headlessContext struct {
	clicks *ClickBus
	mu     deadlock.Mutex
	state  ContextState
}

func (c *headlessContext) State() ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *headlessContext) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ContextClosed {
		return ErrPlaybackBlocked
	}
	if !c.clicks.Activated() {
		return ErrPlaybackBlocked
	}
	c.state = ContextRunning
	return nil
}
