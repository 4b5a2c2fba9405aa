package media

import (
	"context"

	"github.com/momentum-xyz/media-placer/internal/logger"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
)

var log = logger.L()

// ErrPlaybackBlocked means the platform refused to start playback without a user gesture.
var ErrPlaybackBlocked = errors.New("playback blocked by autoplay policy")

type ElementOptions struct {
	CrossOrigin string
	Loop        bool
	Muted       bool
	PlaysInline bool
	Autoplay    bool
	Preload     string
}

// Element is a playable media element. Listeners must be registered before Load.
type Element interface {
	scene.MediaSource
	Options() ElementOptions
	Load()
	Play() error
	Pause()
	Playing() bool
}

type VideoElement interface {
	Element
	OnLoadedMetadata(fn func(width, height int))
}

type AudioElement interface {
	Element
	OnCanPlayThrough(fn func())
}

type ContextState string

const (
	ContextRunning   ContextState = "running"
	ContextSuspended ContextState = "suspended"
	ContextClosed    ContextState = "closed"
)

// AudioContext is the shared audio graph positional emitters render through.
type AudioContext interface {
	State() ContextState
	Resume(ctx context.Context) error
}

// Gestures delivers user clicks.
type Gestures interface {
	// OnClick calls fn for every click until the returned cancel is called.
	OnClick(fn func()) (cancel func())
	// OnceClick calls fn for the next click only.
	OnceClick(fn func()) (cancel func())
}

// Provider creates media elements and exposes the shared audio context and gestures.
type Provider interface {
	NewVideo(src string, opts ElementOptions) VideoElement
	NewAudio(src string, opts ElementOptions) AudioElement
	AudioContext() AudioContext
	Gestures() Gestures
}
