package assets

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/ivlev/slidereel/internal/element"
)

// QRCode encodes content as an inline PNG image of size×size pixels.
func QRCode(id, content string, size int) (*element.Image, error) {
	if content == "" {
		return nil, fmt.Errorf("qr %q: empty content", id)
	}
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr %q: %w", id, err)
	}
	img := element.NewImage(id, "")
	img.Data = png
	img.Format = "png"
	img.Width = size
	img.Height = size
	return img, nil
}
