package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var jpegHead = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
var pngHead = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func TestValidateImageBySniff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		head     []byte
		wantErr  bool
	}{
		{name: "jpeg", filename: "pothole.jpg", head: jpegHead, wantErr: false},
		{name: "png", filename: "streetlight.png", head: pngHead, wantErr: false},
		{name: "extension not allowed", filename: "report.pdf", head: jpegHead, wantErr: true},
		{name: "html masquerading as jpg", filename: "evil.jpg", head: []byte("<html><body>"), wantErr: true},
		{name: "svg rejected", filename: "logo.svg", head: []byte(`<?xml version="1.0"?><svg>`), wantErr: true},
		{name: "no extension", filename: "photo", head: jpegHead, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ValidateImageBySniff(tc.filename, tc.head)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
