package handlers

import (
	"strconv"
	"strings"

	"ultimate-gen/internal/session"
	"ultimate-gen/internal/studio"
)

// directives are leading message tokens that override saved settings for one request,
// e.g. "16:9 styles a lighthouse" or "x3 a red fox".
type directives struct {
	aspectRatio studio.AspectRatio
	mode        studio.Mode
	count       int
}

func parseDirectives(text string) (directives, string) {
	var d directives
	fields := strings.Fields(text)

	i := 0
	for ; i < len(fields); i++ {
		if !d.consume(fields[i]) {
			break
		}
	}
	return d, strings.Join(fields[i:], " ")
}

func (d *directives) consume(token string) bool {
	lower := strings.ToLower(token)

	if r, err := studio.ParseAspectRatio(lower); err == nil && lower != "" {
		d.aspectRatio = r
		return true
	}
	switch studio.Mode(lower) {
	case studio.ModeCreative, studio.ModeStyles:
		d.mode = studio.Mode(lower)
		return true
	}
	if len(lower) > 1 && (lower[0] == 'x' || strings.HasPrefix(lower, "×")) {
		digits := strings.TrimPrefix(strings.TrimPrefix(lower, "x"), "×")
		if n, err := strconv.Atoi(digits); err == nil {
			d.count = n
			return true
		}
	}
	return false
}

func (d directives) apply(s session.Settings) session.Settings {
	if d.aspectRatio != "" {
		s.AspectRatio = d.aspectRatio
	}
	if d.mode != "" {
		s.Mode = d.mode
	}
	if d.count != 0 {
		s.Count = d.count
		if d.mode == "" {
			s.Mode = studio.ModeCreative
		}
	}
	return s
}
