package pass

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

const (
	// QRImageWidth is the pixel width (and height) of the strip.png QR raster
	QRImageWidth = 300

	// quiet zone around the symbol, in modules
	qrMarginModules = 1
)

var qrPalette = color.Palette{color.White, color.Black}

// EncodeQR renders message as a black-on-white QR code PNG (error correction M,
// 1-module margin, QRImageWidth pixels square).
func EncodeQR(message string) ([]byte, error) {
	code, err := qrcode.New(message, qrcode.Medium)
	if err != nil {
		return nil, WrapEncodingError(err, "failed to encode QR code")
	}
	code.DisableBorder = true

	// one pixel per module, then scale up
	bitmap := code.Bitmap()
	modules := len(bitmap) + 2*qrMarginModules
	symbol := image.NewPaletted(image.Rect(0, 0, modules, modules), qrPalette)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				symbol.SetColorIndex(x+qrMarginModules, y+qrMarginModules, 1)
			}
		}
	}

	raster := image.NewPaletted(image.Rect(0, 0, QRImageWidth, QRImageWidth), qrPalette)
	draw.NearestNeighbor.Scale(raster, raster.Bounds(), symbol, symbol.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err := encoder.Encode(&buf, raster); err != nil {
		return nil, WrapEncodingError(err, "failed to encode QR image")
	}
	return buf.Bytes(), nil
}
