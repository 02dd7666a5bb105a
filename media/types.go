package media

type AssetType string

const (
	AssetTypeOriginal AssetType = "original"
	AssetTypePreview  AssetType = "preview"
)

// DerivedSet holds the relative paths of the renditions produced for one
// photo. Preview fields stay nil when the source was below the generation
// threshold; thumbnail fields are always populated on success.
type DerivedSet struct {
	PreviewPath        *string
	HidpiPreviewPath   *string
	ThumbnailPath      *string
	HidpiThumbnailPath *string
}
