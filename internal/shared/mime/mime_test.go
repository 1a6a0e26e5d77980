package mime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/index.html", "text/html"},
		{"/style.css", "text/css"},
		{"/app.js", "application/javascript"},
		{"/data.json", "application/json"},
		{"/a.png", "image/png"},
		{"/a.jpg", "image/jpeg"},
		{"/a.JPEG", "image/jpeg"},
		{"/a.gif", "image/gif"},
		{"/logo.svg", "image/svg+xml"},
		{"/README.md", "text/markdown"},
		{"/archive.bin", Binary},
		{"/noext", Binary},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ByPath(tt.path), tt.path)
	}
}

func TestDetect(t *testing.T) {
	assert.Contains(t, Detect([]byte("{\"a\": 1}")), "json")
	assert.Equal(t, "image/png", Detect([]byte("\x89PNG\r\n\x1a\n")))
}
