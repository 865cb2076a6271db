// Package qr renders QR code PNGs for patient self-service form links.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered image edge length in pixels.
const DefaultSize = 256

// PNG encodes url as a QR code PNG image.
func PNG(url string, size int) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("qr: url is required")
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr: encode %s: %w", url, err)
	}
	return png, nil
}
