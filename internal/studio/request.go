package studio

import (
	"fmt"
	"strings"

	"ultimate-gen/internal/gemini"
)

type Mode string

const (
	ModeCreative Mode = "creative"
	ModeStyles   Mode = "styles"
)

type AspectRatio string

const (
	Ratio9x16 AspectRatio = "9:16"
	Ratio16x9 AspectRatio = "16:9"
	Ratio1x1  AspectRatio = "1:1"
	Ratio4x3  AspectRatio = "4:3"
	Ratio3x4  AspectRatio = "3:4"
)

var aspectRatios = []AspectRatio{Ratio9x16, Ratio16x9, Ratio1x1, Ratio4x3, Ratio3x4}

// AspectRatios lists the supported ratios, default first.
func AspectRatios() []AspectRatio {
	out := make([]AspectRatio, len(aspectRatios))
	copy(out, aspectRatios)
	return out
}

// ParseMode accepts an empty string as the default creative mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeCreative:
		return ModeCreative, nil
	case ModeStyles:
		return ModeStyles, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, s)
	}
}

// ParseAspectRatio accepts an empty string as the default 9:16.
func ParseAspectRatio(s string) (AspectRatio, error) {
	v := AspectRatio(strings.TrimSpace(s))
	if v == "" {
		return Ratio9x16, nil
	}
	for _, r := range aspectRatios {
		if r == v {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported aspect ratio %q", ErrInvalidRequest, s)
}

type Request struct {
	Subject     string
	Reference   *gemini.ImageInput
	AspectRatio AspectRatio
	Mode        Mode
	// Count is ignored in styles mode.
	Count int
}

type Result struct {
	Images []string
	Text   string
	// Prompts are the texts embedded in Images, index for index.
	Prompts []string
}

func (s *Studio) normalize(req Request) (Request, error) {
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return Request{}, err
	}
	ratio, err := ParseAspectRatio(string(req.AspectRatio))
	if err != nil {
		return Request{}, err
	}
	req.Mode = mode
	req.AspectRatio = ratio

	if mode == ModeStyles {
		req.Count = s.catalog.Len()
		return req, nil
	}
	switch {
	case req.Count < 0:
		return Request{}, fmt.Errorf("%w: count must not be negative, got %d", ErrInvalidRequest, req.Count)
	case req.Count == 0:
		req.Count = 1
	case req.Count > s.maxVariations:
		return Request{}, fmt.Errorf("%w: count %d exceeds the limit of %d", ErrInvalidRequest, req.Count, s.maxVariations)
	}
	return req, nil
}
