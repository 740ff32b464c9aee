package pass

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	qrcode "github.com/skip2/go-qrcode"
)

func isBlack(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0 && g == 0 && b == 0
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func TestEncodeQR(t *testing.T) {
	message := "https://example.com/card/c1"

	data, err := EncodeQR(message)
	if err != nil {
		t.Fatalf("EncodeQR() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != QRImageWidth || bounds.Dy() != QRImageWidth {
		t.Fatalf("image is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), QRImageWidth, QRImageWidth)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if c := img.At(x, y); !isBlack(c) && !isWhite(c) {
				t.Fatalf("pixel (%d,%d) is neither black nor white: %v", x, y, c)
			}
		}
	}

	// the margin is white and the first module inside it is the dark corner of a finder pattern
	code, err := qrcode.New(message, qrcode.Medium)
	if err != nil {
		t.Fatalf("qrcode.New() error = %v", err)
	}
	code.DisableBorder = true
	modules := len(code.Bitmap()) + 2*qrMarginModules
	firstModule := int(1.5 * float64(QRImageWidth) / float64(modules))

	if !isWhite(img.At(0, 0)) {
		t.Error("expected the margin to be white")
	}
	if !isBlack(img.At(firstModule, firstModule)) {
		t.Errorf("expected pixel (%d,%d) inside the finder pattern to be black", firstModule, firstModule)
	}
}

func TestEncodeQR_TooLong(t *testing.T) {
	_, err := EncodeQR("https://example.com/" + strings.Repeat("a", 3000))
	if err == nil {
		t.Fatal("expected error for message exceeding QR capacity, got nil")
	}
	assertPassCode(t, err, ErrCodeEncoding)
}

func TestBundledIconSizes(t *testing.T) {
	for _, name := range iconFiles {
		t.Run(name, func(t *testing.T) {
			data, err := readIcon(name)
			if err != nil {
				t.Fatalf("readIcon() error = %v", err)
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("%s is not a PNG: %v", name, err)
			}
			want := iconSizes[name]
			if cfg.Width != want || cfg.Height != want {
				t.Errorf("%s is %dx%d, want %dx%d", name, cfg.Width, cfg.Height, want, want)
			}
		})
	}
}
