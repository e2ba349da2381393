package components

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const defaultQRSize = 256

// QRRenderer renders payloads as PNG QR codes
type QRRenderer struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewQRRenderer(size int) *QRRenderer {
	if size <= 0 {
		size = defaultQRSize
	}
	return &QRRenderer{size: size, level: qrcode.Medium}
}

func (r *QRRenderer) Render(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, r.level, r.size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
