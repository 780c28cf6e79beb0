package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ultimate-gen/internal/session"
	"ultimate-gen/internal/studio"
)

func TestParseDirectives(t *testing.T) {
	cases := []struct {
		in      string
		want    directives
		subject string
	}{
		{in: "a lighthouse", subject: "a lighthouse"},
		{in: "16:9 styles a lighthouse", want: directives{aspectRatio: studio.Ratio16x9, mode: studio.ModeStyles}, subject: "a lighthouse"},
		{in: "x3  CREATIVE   a red fox", want: directives{mode: studio.ModeCreative, count: 3}, subject: "a red fox"},
		{in: "×2 חתול", want: directives{count: 2}, subject: "חתול"},
		{in: "a fox x3 16:9", subject: "a fox x3 16:9"},
		{in: "xray vision", subject: "xray vision"},
		{in: "1:1", want: directives{aspectRatio: studio.Ratio1x1}},
		{in: "", subject: ""},
	}
	for _, tc := range cases {
		got, subject := parseDirectives(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.subject, subject, tc.in)
	}
}

func TestDirectivesApply(t *testing.T) {
	saved := session.Settings{AspectRatio: studio.Ratio9x16, Mode: studio.ModeStyles, Count: 1, MenuMessageID: 4}

	assert.Equal(t, saved, directives{}.apply(saved))

	got := directives{count: 3}.apply(saved)
	assert.Equal(t, studio.ModeCreative, got.Mode)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, 4, got.MenuMessageID)

	got = directives{aspectRatio: studio.Ratio4x3, mode: studio.ModeStyles, count: 2}.apply(saved)
	assert.Equal(t, studio.Ratio4x3, got.AspectRatio)
	assert.Equal(t, studio.ModeStyles, got.Mode)
}
