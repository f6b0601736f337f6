package totp

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// QREncoder renders provisioning URIs as PNG data URLs that an <img> tag can
// show directly.
type QREncoder struct {
	Level qrcode.RecoveryLevel
	Size  int
}

func NewQREncoder() *QREncoder {
	return &QREncoder{Level: qrcode.Medium, Size: qrSize}
}

func (q *QREncoder) Render(uri string) (string, error) {
	png, err := qrcode.Encode(uri, q.Level, q.Size)
	if err != nil {
		return "", fmt.Errorf("render qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
