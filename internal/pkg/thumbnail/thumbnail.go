package thumbnail

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// MaxDimension bounds the longer edge of generated dashboard previews.
const MaxDimension = 480

// Generate reads the original image from srcPath and writes a JPEG preview,
// fitted within MaxDimension, to dstPath. Aspect ratio is preserved.
func Generate(srcPath, dstPath string) error {
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to open image for thumbnail: %w", err)
	}

	thumb := imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)

	if err := imaging.Save(thumb, dstPath, imaging.JPEGQuality(82)); err != nil {
		return fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return nil
}
