// Package partnerqr encodes, parses and decodes the QR codes displayed at
// partner venues.
package partnerqr

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	Prefix     = "BALIPASS:PARTNER:"
	LinkPrefix = "balipass://partner/"
)

var (
	ErrNoCode       = errors.New("no QR code found")
	ErrInvalidImage = errors.New("invalid image")
)

// Format returns the payload printed in a partner's QR code.
func Format(partnerID string) string {
	return Prefix + partnerID
}

// Parse extracts the partner id from a scanned or typed code. Both prefixes
// match case-insensitively; the id keeps its case.
func Parse(code string) (string, bool) {
	code = strings.TrimSpace(code)
	var id string
	switch {
	case hasPrefixFold(code, Prefix):
		id = code[len(Prefix):]
	case hasPrefixFold(code, LinkPrefix):
		id = code[len(LinkPrefix):]
		id = strings.TrimSuffix(id, "/")
	default:
		return "", false
	}
	if id == "" || strings.ContainsAny(id, " /?#") {
		return "", false
	}
	return id, true
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// PNG renders the partner code as a PNG image of size x size pixels.
func PNG(partnerID string, size int) ([]byte, error) {
	return qrcode.Encode(Format(partnerID), qrcode.Medium, size)
}

// DecodeFrame decodes an encoded camera frame (PNG or JPEG).
func DecodeFrame(frame []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return "", ErrInvalidImage
	}
	return Decode(img)
}

// Decode reads a QR code from img, trying normal polarity first and then
// inverted; the first match wins.
func Decode(img image.Image) (string, error) {
	source := gozxing.NewLuminanceSourceFromImage(img)

	if text, ok := decodeSource(source); ok {
		return text, nil
	}
	if text, ok := decodeSource(source.Invert()); ok {
		return text, nil
	}
	return "", ErrNoCode
}

func decodeSource(source gozxing.LuminanceSource) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(source))
	if err != nil {
		return "", false
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := zxingqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", false
	}
	return result.GetText(), true
}
