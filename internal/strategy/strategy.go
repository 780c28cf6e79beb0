// Package strategy turns one subject into a fixed number of English prompt candidates.
package strategy

import (
	"context"
	"strings"

	"ultimate-gen/internal/gemini"
	"ultimate-gen/internal/script"
)

// Brief is the per-request input shared by both strategies.
type Brief struct {
	Subject   string
	Count     int
	Reference *gemini.ImageInput
}

func (b Brief) Editing() bool {
	return b.Reference != nil
}

// Strategy returns exactly the number of prompts it promises, substituting fallbacks for failed branches.
// The only error is cancellation by the caller.
type Strategy interface {
	Prompts(ctx context.Context, brief Brief) ([]string, error)
}

const genericFallback = "artistic masterpiece, high quality"

const genericSubject = "a breathtaking scene"

// usableSubject returns the subject if it may be forwarded to the renderer as-is.
func usableSubject(subject string, detector script.Detector) (string, bool) {
	s := strings.Join(strings.Fields(subject), " ")
	if s == "" || detector.Contains(s) {
		return "", false
	}
	return s, true
}

// GenericFallback is the style-neutral placeholder used when no model prompt is usable.
func GenericFallback(subject string, detector script.Detector) string {
	if s, ok := usableSubject(subject, detector); ok {
		return s + ", " + genericFallback
	}
	return genericFallback
}

// StyleFallback is the label-specific placeholder for a failed style branch.
func StyleFallback(style string, subject string, detector script.Detector) string {
	s, ok := usableSubject(subject, detector)
	if !ok {
		s = genericSubject
	}
	return style + " style artwork of " + s
}
