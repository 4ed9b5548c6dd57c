package vision

import (
	"context"

	"github.com/otiai10/gosseract/v2"
)

// TesseractOCR extracts raw text from images through the tesseract engine.
// Clients are cheap and not goroutine-safe, so one is created per call.
type TesseractOCR struct{}

func NewTesseractOCR() *TesseractOCR {
	return &TesseractOCR{}
}

func (t *TesseractOCR) ExtractText(ctx context.Context, image []byte) (string, error) {
	_ = ctx

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(image); err != nil {
		return "", err
	}
	return client.Text()
}
