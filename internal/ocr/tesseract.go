package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/OakwoodAI/Automagica/internal/cv"
	"github.com/OakwoodAI/Automagica/internal/screen"
)

// TesseractConfig selects the recognition language and, optionally, a
// non-default tessdata directory.
type TesseractConfig struct {
	Language    string // e.g. "eng"; empty uses the engine default
	TessdataDir string // empty uses the system install location
}

// Tesseract recognizes text through a local Tesseract install via gosseract.
// A fresh client is created per recognition pass; gosseract clients are not
// safe for reuse across goroutines and per-pass clients keep the adapter
// stateless, matching the one-pass contract of Recognizer.
type Tesseract struct {
	cfg TesseractConfig
}

// NewTesseract verifies the engine and language data are usable and returns
// the recognizer. Initialization problems surface as
// ErrRecognitionUnavailable and are not retried.
func NewTesseract(cfg TesseractConfig) (*Tesseract, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := configureClient(client, cfg); err != nil {
		return nil, err
	}

	// A language that has no traineddata only fails once an image is
	// processed, so probe with a minimal white bitmap up front.
	probe := screen.Bitmap{Img: whiteProbe()}
	if err := setImage(client, &probe); err != nil {
		return nil, err
	}
	if _, err := client.Text(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}

	return &Tesseract{cfg: cfg}, nil
}

// Recognize runs one recognition pass over the bitmap and returns every word
// Tesseract found, with bounding boxes in capture-space.
func (t *Tesseract) Recognize(bitmap *screen.Bitmap) ([]Word, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := configureClient(client, t.cfg); err != nil {
		return nil, err
	}
	if err := setImage(client, bitmap); err != nil {
		return nil, err
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		words = append(words, Word{
			Text:       text,
			Region:     cv.RegionFromRect(box.Box),
			Confidence: normalizeConfidence(box.Confidence),
		})
	}
	return words, nil
}

func configureClient(client *gosseract.Client, cfg TesseractConfig) error {
	if cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			return fmt.Errorf("%w: tessdata dir %s: %v", ErrRecognitionUnavailable, cfg.TessdataDir, err)
		}
	}
	if cfg.Language != "" {
		if err := client.SetLanguage(cfg.Language); err != nil {
			return fmt.Errorf("%w: language %s: %v", ErrRecognitionUnavailable, cfg.Language, err)
		}
	}
	return nil
}

func setImage(client *gosseract.Client, bitmap *screen.Bitmap) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, bitmap.Img); err != nil {
		return fmt.Errorf("%w: encode bitmap: %v", ErrRecognitionUnavailable, err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}
	return nil
}

func whiteProbe() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// normalizeConfidence maps Tesseract's 0-100 scores into [0, 1].
func normalizeConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 1
	}
	return c / 100
}
