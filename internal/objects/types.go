package objects

import (
	"github.com/momentum-xyz/media-placer/internal/cmath"
)

type Type string

const (
	TypeImage Type = "image"
	TypeGIF   Type = "gif"
	TypeAudio Type = "audio"
	TypeModel Type = "model"
)

// Descriptor is the persisted record of one placed object.
type Descriptor struct {
	Type        Type              `json:"type"`
	Room        string            `json:"room"`
	Position    *cmath.Vec3       `json:"position,omitempty"`
	Rotation    *cmath.Euler      `json:"rotation,omitempty"`
	UUID        string            `json:"uuid,omitempty"`
	FilePaths   map[string]string `json:"filePaths,omitempty"`
	FilePath    string            `json:"filePath,omitempty"`
	Extension   string            `json:"extension,omitempty"`
	Soundsystem string            `json:"soundsystem,omitempty"`
}

// Variant names produced by the upload pipeline.
const (
	VariantOriginal  = "original"
	VariantSmall     = "small"
	VariantMedium    = "medium"
	VariantLarge     = "large"
	VariantVideoWebm = "videoWebm"
	VariantVideoMp4  = "videoMp4"
)

// UploadResult describes the stored variants of one upload. Image-like
// uploads fill FilePaths, audio and models fill FilePath.
type UploadResult struct {
	FilePaths map[string]string `json:"filePaths,omitempty"`
	FilePath  string            `json:"filePath,omitempty"`
}
