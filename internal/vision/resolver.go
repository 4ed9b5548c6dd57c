// Package vision resolves trading signals out of image messages. It tries a
// structured vision-model query first, then falls back to raw OCR, and runs
// every textual result back through the signal grammar.
package vision

import (
	"context"
	"log"
	"regexp"
	"strings"

	"tradewatch/internal/domain"
	"tradewatch/internal/parser"
)

// ImageQuerier classifies an image as trade setup vs. trade result and emits
// the labeled six-field reply described in the vision prompt.
type ImageQuerier interface {
	ClassifyAndExtract(ctx context.Context, image []byte) (string, error)
}

// TextExtractor runs plain OCR over an image.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

const tradeResultMarker = "TRADE_RESULT"

var unknownFieldPattern = regexp.MustCompile(`(?i)\bN/A\b`)

// Resolver is an ordered chain of optional image backends. A nil backend is
// skipped; backend failures are logged and treated as no result.
type Resolver struct {
	vision ImageQuerier
	ocr    TextExtractor
}

func NewResolver(vision ImageQuerier, ocr TextExtractor) *Resolver {
	return &Resolver{vision: vision, ocr: ocr}
}

// Resolve returns the first validated signal the backend chain produces, or
// nil when the image yields nothing.
func (r *Resolver) Resolve(ctx context.Context, image []byte) *domain.Signal {
	if r == nil || len(image) == 0 {
		return nil
	}

	if r.vision != nil {
		reply, err := r.vision.ClassifyAndExtract(ctx, image)
		if err != nil {
			log.Printf("vision backend failed: %v", err)
		} else if sig := signalFromReply(reply); sig != nil {
			return sig
		}
	}

	if r.ocr != nil {
		text, err := r.ocr.ExtractText(ctx, image)
		if err != nil {
			log.Printf("ocr extraction failed: %v", err)
			return nil
		}
		if sig := parser.Extract(text); parser.Validate(sig) {
			sig.Origin = domain.OriginImage
			return sig
		}
	}

	return nil
}

// signalFromReply turns the model's labeled reply into a validated signal.
// A TRADE_RESULT classification yields nothing regardless of the remaining
// fields; literal N/A fields are treated as absent.
func signalFromReply(reply string) *domain.Signal {
	if strings.Contains(strings.ToUpper(reply), tradeResultMarker) {
		return nil
	}
	cleaned := unknownFieldPattern.ReplaceAllString(reply, " ")
	sig := parser.Extract(cleaned)
	if !parser.Validate(sig) {
		return nil
	}
	sig.Origin = domain.OriginImage
	sig.RawText = reply
	return sig
}
