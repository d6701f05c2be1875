package model

import "errors"

// UploadResult holds the public URL and storage key of an uploaded asset.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Asset upload constraints
const (
	MaxAssetSizeBytes = 10 * 1024 * 1024 // 10MB per image

	// Featured images are downscaled to fit this width, never upscaled.
	FeaturedImageMaxWidth = 1600

	PostAssetFolder = "posts"
	AssetExt        = ".jpg"

	ContentTypeJPEG   = "image/jpeg"
	AssetCacheControl = "public, max-age=31536000, immutable"
)

// Asset errors
var (
	ErrAssetTooLarge        = errors.New("asset exceeds maximum size")
	ErrUnsupportedAssetType = errors.New("unsupported asset type")
)
