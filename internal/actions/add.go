package actions

import (
	"context"

	"github.com/momentum-xyz/media-placer/internal/loader"
	"github.com/momentum-xyz/media-placer/internal/objects"
	"github.com/momentum-xyz/media-placer/internal/placement"
	"github.com/momentum-xyz/media-placer/internal/scene"
	"github.com/momentum-xyz/media-placer/utils"

	"github.com/pkg/errors"
)

// User data keys set on placed images.
const (
	UserDataTextureURLs        = "textureUrls"
	UserDataCurrentTextureSize = "currentTextureSize"
)

// GIFSource is the variant an animated upload is shown from.
type GIFSource struct {
	Variant string
	Path    string
}

// Video reports whether the source goes through the video loader.
func (s GIFSource) Video() bool {
	return s.Variant == objects.VariantVideoWebm || s.Variant == objects.VariantVideoMp4
}

// SelectGIFSource prefers the WebM transcode, then MP4, then the original GIF.
func SelectGIFSource(filePaths map[string]string) (GIFSource, bool) {
	variant, path := utils.FirstNonEmpty(
		filePaths, objects.VariantVideoWebm, objects.VariantVideoMp4, objects.VariantOriginal,
	)
	return GIFSource{Variant: variant, Path: path}, path != ""
}

// AddImage shows the large variant and tags the mesh with every variant.
func (a *Actions) AddImage(ctx context.Context, upload objects.UploadResult) <-chan Outcome {
	large := upload.FilePaths[objects.VariantLarge]
	if large == "" {
		return failed(errors.WithMessage(ErrMissingSource, "failed to add image: no large variant"))
	}
	p := placement.Compute(a.viewer)

	return a.settle(ctx, objects.TypeImage,
		func() (*scene.Object, *loader.Animation, error) {
			obj, err := a.loadImage(ctx, a.url(large), p, upload.FilePaths)
			return noAnimation(obj, err)
		},
		func(obj *scene.Object) objects.Descriptor {
			d := objects.Descriptor{FilePaths: upload.FilePaths}
			pose(obj, &d)
			return d
		},
	)
}

func (a *Actions) loadImage(ctx context.Context, url string, p placement.Placement, variants map[string]string) (*scene.Object, error) {
	obj, err := a.loaders.LoadImage(ctx, a.scene, url, p)
	if err != nil {
		return nil, err
	}
	obj.SetUserData(UserDataTextureURLs, variants)
	obj.SetUserData(UserDataCurrentTextureSize, objects.VariantLarge)
	return obj, nil
}

// TextureURLs returns the variants an image was tagged with.
func TextureURLs(obj *scene.Object) map[string]string {
	v, _ := obj.UserData(UserDataTextureURLs)
	return utils.FromAny(v, map[string]string(nil))
}

// AddGIF shows an animated upload, as video when a transcode exists.
func (a *Actions) AddGIF(ctx context.Context, upload objects.UploadResult) <-chan Outcome {
	src, ok := SelectGIFSource(upload.FilePaths)
	if !ok {
		return failed(errors.WithMessage(ErrMissingSource, "failed to add gif"))
	}
	p := placement.Compute(a.viewer)

	return a.settle(ctx, objects.TypeGIF,
		func() (*scene.Object, *loader.Animation, error) {
			return a.loadGIF(ctx, src, p)
		},
		func(obj *scene.Object) objects.Descriptor {
			d := objects.Descriptor{FilePaths: upload.FilePaths}
			pose(obj, &d)
			return d
		},
	)
}

func (a *Actions) loadGIF(ctx context.Context, src GIFSource, p placement.Placement) (*scene.Object, *loader.Animation, error) {
	if src.Video() {
		return noAnimation(a.loaders.LoadVideo(ctx, a.scene, a.url(src.Path), p))
	}
	return a.loaders.LoadGIF(ctx, a.scene, a.url(src.Path), p)
}

// AddAudio attaches the upload to the configured soundsystem. Audio has no
// pose of its own, so the descriptor carries none.
func (a *Actions) AddAudio(ctx context.Context, upload objects.UploadResult) <-chan Outcome {
	if upload.FilePath == "" {
		return failed(errors.WithMessage(ErrMissingSource, "failed to add audio"))
	}
	soundsystem := a.cfg.Soundsystem

	return a.settle(ctx, objects.TypeAudio,
		func() (*scene.Object, *loader.Animation, error) {
			return noAnimation(a.loaders.LoadAudio(ctx, a.scene, a.url(upload.FilePath), soundsystem))
		},
		func(*scene.Object) objects.Descriptor {
			return objects.Descriptor{FilePath: upload.FilePath, Soundsystem: soundsystem}
		},
	)
}

// AddModel places a 3D model. The decoder is chosen from the file path; the
// given extension is only recorded.
func (a *Actions) AddModel(ctx context.Context, upload objects.UploadResult, extension string) <-chan Outcome {
	if upload.FilePath == "" {
		return failed(errors.WithMessage(ErrMissingSource, "failed to add model"))
	}
	p := placement.Compute(a.viewer)

	return a.settle(ctx, objects.TypeModel,
		func() (*scene.Object, *loader.Animation, error) {
			return noAnimation(a.loaders.LoadModel(ctx, a.scene, a.url(upload.FilePath), p))
		},
		func(obj *scene.Object) objects.Descriptor {
			d := objects.Descriptor{FilePath: upload.FilePath, Extension: extension}
			pose(obj, &d)
			return d
		},
	)
}
