package exifloc

import (
	"io"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// FromImage extracts GPS coordinates embedded in a photo's EXIF data. It is
// the fallback when a submission carries no explicit coordinates: phone
// cameras usually geotag the photo itself. ok is false when the image has no
// usable EXIF position; that is not an error.
func FromImage(r io.Reader) (lat, lon float64, ok bool) {
	x, err := exif.Decode(r)
	if err != nil {
		// Plenty of images carry no EXIF block at all.
		fiberlog.Debugf("[ExifLoc] no EXIF data: %v", err)
		return 0, 0, false
	}

	lat, lon, err = x.LatLong()
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
