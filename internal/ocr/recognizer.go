// Package ocr adapts an optical character recognition engine to the
// targeting pipeline: a bitmap in, recognized words with bounding boxes and
// confidences out.
package ocr

import (
	"errors"

	"github.com/OakwoodAI/Automagica/internal/cv"
	"github.com/OakwoodAI/Automagica/internal/screen"
)

// ErrRecognitionUnavailable indicates the OCR engine could not be
// initialized, for example missing language data. This is a configuration
// error and is never retried by the wait engine.
var ErrRecognitionUnavailable = errors.New("text recognition unavailable")

// Word is one recognized text fragment with its bounding box in
// capture-space and the engine's confidence in [0, 1].
type Word struct {
	Text       string
	Region     cv.Region
	Confidence float64
}

// Recognizer is the OCR capability consumed by the wait engine. Each
// Recognize call reflects exactly one recognition pass over the bitmap;
// results are never cached or reused across polls.
type Recognizer interface {
	Recognize(bitmap *screen.Bitmap) ([]Word, error)
}
