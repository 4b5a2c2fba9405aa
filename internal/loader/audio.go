package loader

import (
	"context"

	"github.com/momentum-xyz/media-placer/internal/media"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
)

const audioRefDistance = 0.5

// LoadAudio attaches a positional emitter playing url to the node named
// soundsystem. Playback starts once the element can play through; when it is
// blocked it is retried on every later click.
func (l *Loaders) LoadAudio(ctx context.Context, c scene.Container, url, soundsystem string) (*scene.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, fail(err, "Error loading audio")
	}
	node := c.ObjectByName(soundsystem)
	if node == nil {
		return nil, fail(errors.WithMessagef(ErrSoundsystemNotFound, "name %q", soundsystem), "Error loading audio")
	}

	el := l.media.NewAudio(url, media.ElementOptions{
		CrossOrigin: "anonymous",
		Loop:        true,
		Autoplay:    true,
		Preload:     "auto",
	})
	speaker := scene.NewPositionalAudio(&scene.AudioEmitter{RefDistance: audioRefDistance, Source: el})
	node.Add(speaker)
	speaker.OnDispose(el.Pause)

	el.OnCanPlayThrough(func() { l.cue(el, speaker) })
	el.Load()

	log.Debugf("audio %s attached to %s as %s", url, soundsystem, speaker.UUID())
	return speaker, nil
}

func (l *Loaders) cue(el media.AudioElement, speaker *scene.Object) {
	ac := l.media.AudioContext()
	if ac.State() == media.ContextSuspended {
		if err := ac.Resume(context.Background()); err != nil {
			log.Infof("audio %s: audio context suspended, waiting for a click: %v", speaker.UUID(), err)
			speaker.OnDispose(media.ResumeThenPlay(l.media.Gestures(), ac, el))
			return
		}
		if err := el.Play(); err != nil {
			log.Warnf("audio %s: play failed: %v", speaker.UUID(), err)
		}
		return
	}
	if err := el.Play(); err != nil {
		speaker.OnDispose(media.DeferPlay(l.media.Gestures(), el, media.RetryEveryClick))
	}
}
