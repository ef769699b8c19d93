package archive

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"channel-archive/internal/source"
)

const mediaStampLayout = "20060102150405"

// MediaFilename builds the deterministic local file name for a message
// attachment: {message_id}_{utc timestamp}{original extension}.
func MediaFilename(msg source.Message, originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%d_%s%s", msg.ID, msg.Date.UTC().Format(mediaStampLayout), ext)
}

// ImageDimensions probes the pixel dimensions of a downloaded file without
// decoding it fully. Files that are not recognized images (videos, other
// documents) report -1 x -1.
func ImageDimensions(path string) (width, height int) {
	f, err := os.Open(path)
	if err != nil {
		return -1, -1
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return -1, -1
	}
	return cfg.Width, cfg.Height
}
