package media

import (
	"context"

	"github.com/sasha-s/go-deadlock"
)

// RetryPolicy decides how a blocked playback is retried on later clicks.
type RetryPolicy int

const (
	// RetryOnce tries again on the next click only. Used for video.
	RetryOnce RetryPolicy = iota
	// RetryEveryClick tries again on every subsequent click. Used for audio.
	RetryEveryClick
)

func (p RetryPolicy) String() string {
	switch p {
	case RetryOnce:
		return "once"
	case RetryEveryClick:
		return "every-click"
	}
	return "unknown"
}

// DeferPlay registers el.Play on future clicks according to policy.
func DeferPlay(g Gestures, el Element, policy RetryPolicy) (cancel func()) {
	play := func() {
		if err := el.Play(); err != nil {
			log.Warnf("media: deferred play of %s failed: %v", el.Src(), err)
		}
	}

	log.Debugf("media: playback of %s deferred to user gesture (%s)", el.Src(), policy)
	if policy == RetryEveryClick {
		return g.OnClick(play)
	}
	return g.OnceClick(play)
}

// ResumeThenPlay waits for clicks until ac resumes, then plays el once. It
// stops listening after the first successful resume.
func ResumeThenPlay(g Gestures, ac AudioContext, el Element) (cancel func()) {
	var (
		mu     deadlock.Mutex
		remove func()
		done   bool
	)
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		done = true
		if remove != nil {
			remove()
		}
	}
	try := func() {
		mu.Lock()
		finished := done
		mu.Unlock()
		if finished {
			return
		}
		if err := ac.Resume(context.Background()); err != nil {
			log.Debugf("media: audio context still suspended for %s: %v", el.Src(), err)
			return
		}
		stop()
		if err := el.Play(); err != nil {
			log.Warnf("media: play of %s after resume failed: %v", el.Src(), err)
		}
	}

	log.Debugf("media: resume of audio context for %s deferred to user gesture", el.Src())
	r := g.OnClick(try)
	mu.Lock()
	remove = r
	if done {
		r()
	}
	mu.Unlock()
	return stop
}
