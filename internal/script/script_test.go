package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHebrewContains(t *testing.T) {
	d := Hebrew()

	cases := []struct {
		name string
		text string
		want bool
	}{
		{name: "hebrew word", text: "חתול", want: true},
		{name: "mixed", text: "a cat named חתול on a roof", want: true},
		{name: "english", text: "a lighthouse at dusk", want: false},
		{name: "empty", text: "", want: false},
		{name: "cyrillic is not hebrew", text: "кошка", want: false},
		{name: "accented latin", text: "café crème", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, d.Contains(tc.text))
		})
	}
	assert.Equal(t, "Hebrew", d.Name())
}

func TestNewSwapsScripts(t *testing.T) {
	d, err := New("cyrillic", "Arabic", "Cyrillic")
	require.NoError(t, err)

	assert.True(t, d.Contains("кошка"))
	assert.True(t, d.Contains("قطة"))
	assert.False(t, d.Contains("חתול"))
	assert.Equal(t, "Cyrillic+Arabic", d.Name())
}

func TestNewRejectsUnknownScript(t *testing.T) {
	_, err := New("Klingon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Klingon")

	_, err = New(" ", "")
	require.Error(t, err)
}

func TestZeroDetectorMatchesNothing(t *testing.T) {
	var d Detector
	assert.False(t, d.Contains("חתול"))
}
