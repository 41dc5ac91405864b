package engine

import (
	"image"

	"github.com/OakwoodAI/Automagica/internal/cv"
	"github.com/OakwoodAI/Automagica/internal/ocr"
	"github.com/OakwoodAI/Automagica/internal/screen"
	"github.com/OakwoodAI/Automagica/internal/target"
)

// TemplateProducer yields at most one candidate per poll: the best placement
// of the reference image within the captured bitmap.
type TemplateProducer struct {
	Template *image.RGBA
	Options  []cv.Option
}

// Produce runs template matching against the bitmap. An oversized template
// yields no candidates, which the engine treats as "not found this poll".
func (p *TemplateProducer) Produce(bitmap *screen.Bitmap) ([]cv.MatchResult, error) {
	result := cv.FindTemplate(bitmap.Img, p.Template, p.Options...)
	if result == nil {
		return nil, nil
	}
	return []cv.MatchResult{*result}, nil
}

// TextProducer yields one candidate per recognized word that satisfies the
// predicate. Each poll is one fresh recognition pass.
type TextProducer struct {
	Recognizer ocr.Recognizer
	Predicate  target.Predicate
}

// Produce recognizes text in the bitmap and filters it by the predicate.
func (p *TextProducer) Produce(bitmap *screen.Bitmap) ([]cv.MatchResult, error) {
	words, err := p.Recognizer.Recognize(bitmap)
	if err != nil {
		return nil, err
	}
	return target.FromWords(words, p.Predicate), nil
}
