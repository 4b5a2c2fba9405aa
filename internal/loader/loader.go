package loader

import (
	"context"

	"github.com/momentum-xyz/media-placer/internal/assets"
	"github.com/momentum-xyz/media-placer/internal/logger"
	"github.com/momentum-xyz/media-placer/internal/media"
	"github.com/momentum-xyz/media-placer/internal/modelformat"
	"github.com/momentum-xyz/media-placer/internal/placement"
	"github.com/momentum-xyz/media-placer/internal/scene"
	"github.com/momentum-xyz/media-placer/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var log = logger.L().With("package", "loader")

var (
	ErrUnsupportedFormat   = errors.New("unsupported model type")
	ErrSoundsystemNotFound = errors.New("soundsystem not found")
)

// Fetcher downloads asset bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts assets.Options) ([]byte, error)
}

// Loaders turns media URLs into placed scene objects. Every Load* call either
// returns the inserted object or an error with nothing inserted.
type Loaders struct {
	fetcher    Fetcher
	media      media.Provider
	models     modelformat.Registry
	animations *utils.TimerSet[uuid.UUID]
}

func New(fetcher Fetcher, provider media.Provider, models modelformat.Registry) *Loaders {
	if models == nil {
		models = modelformat.Default()
	}
	return &Loaders{
		fetcher:    fetcher,
		media:      provider,
		models:     models,
		animations: utils.NewTimerSet[uuid.UUID](),
	}
}

func (l *Loaders) Models() modelformat.Registry {
	return l.models
}

func place(obj *scene.Object, p placement.Placement) {
	obj.SetPosition(p.Position)
	obj.SetQuaternion(p.Quaternion)
}

// surface builds the two-unit wide, double sided, transparent plane media is shown on.
func surface(tex scene.Texture, aspect float64) *scene.Object {
	return scene.NewMesh(
		scene.NewPlaneGeometry(2, 2/aspect),
		&scene.Material{Map: tex, Transparent: true, Side: scene.DoubleSide},
	)
}

func fail(err error, msg string) error {
	err = errors.WithMessage(err, msg)
	log.Error(err)
	return err
}
