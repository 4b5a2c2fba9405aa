package actions

import (
	"context"

	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/loader"
	"github.com/momentum-xyz/media-placer/internal/objects"
	"github.com/momentum-xyz/media-placer/internal/placement"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
)

// UserDataStoredUUID links a restored object back to its descriptor.
const UserDataStoredUUID = "storedUuid"

// Restore rebuilds a room from its stored descriptors. Nothing is saved again.
// Objects that fail to load are reported in their outcome and skipped.
func (a *Actions) Restore(ctx context.Context, room string) ([]Outcome, error) {
	descriptors, err := a.store.FetchObjects(ctx, room)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to restore room %q", room)
	}

	outcomes := make([]Outcome, 0, len(descriptors))
	restored := 0
	for i := range descriptors {
		d := descriptors[i]
		o := Outcome{Descriptor: &d, Stored: &d}
		o.Object, o.Animation, o.Err = a.restore(ctx, d)
		if o.Err != nil {
			o.Stored = nil
			log.Warn(errors.WithMessagef(o.Err, "failed to restore %s %s", d.Type, d.UUID))
		} else {
			o.Object.SetUserData(UserDataStoredUUID, d.UUID)
			restored++
		}
		outcomes = append(outcomes, o)
	}
	log.Infof("restored %d/%d objects of room %q", restored, len(descriptors), room)
	return outcomes, nil
}

func (a *Actions) restore(ctx context.Context, d objects.Descriptor) (*scene.Object, *loader.Animation, error) {
	p, err := storedPlacement(d)
	if err != nil {
		return nil, nil, err
	}

	switch d.Type {
	case objects.TypeImage:
		large := d.FilePaths[objects.VariantLarge]
		if large == "" {
			return nil, nil, ErrMissingSource
		}
		return noAnimation(a.loadImage(ctx, a.url(large), p, d.FilePaths))
	case objects.TypeGIF:
		src, ok := SelectGIFSource(d.FilePaths)
		if !ok {
			return nil, nil, ErrMissingSource
		}
		return a.loadGIF(ctx, src, p)
	case objects.TypeAudio:
		if d.FilePath == "" {
			return nil, nil, ErrMissingSource
		}
		soundsystem := d.Soundsystem
		if soundsystem == "" {
			soundsystem = a.cfg.Soundsystem
		}
		return noAnimation(a.loaders.LoadAudio(ctx, a.scene, a.url(d.FilePath), soundsystem))
	case objects.TypeModel:
		if d.FilePath == "" {
			return nil, nil, ErrMissingSource
		}
		return noAnimation(a.loaders.LoadModel(ctx, a.scene, a.url(d.FilePath), p))
	}
	return nil, nil, errors.WithMessagef(ErrUnknownType, "%q", d.Type)
}

func storedPlacement(d objects.Descriptor) (placement.Placement, error) {
	p := placement.Placement{Quaternion: cmath.Identity()}
	if d.Position != nil {
		p.Position = *d.Position
	}
	if d.Rotation != nil {
		q, err := d.Rotation.Quat()
		if err != nil {
			return p, errors.WithMessage(err, "bad stored rotation")
		}
		p.Quaternion = q
	}
	return p, nil
}
