package studio

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ultimate-gen/internal/gemini"
	"ultimate-gen/internal/prompt"
	"ultimate-gen/internal/render"
	"ultimate-gen/internal/script"
	"ultimate-gen/internal/strategy"
)

var hebrew = script.Hebrew()

type generatorFunc func(req gemini.TextRequest) (string, error)

type countingGenerator struct {
	fn    generatorFunc
	mu    sync.Mutex
	count int
}

func (g *countingGenerator) GenerateText(_ context.Context, req gemini.TextRequest) (string, error) {
	g.mu.Lock()
	g.count++
	g.mu.Unlock()
	return g.fn(req)
}

func (g *countingGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}

func newStudio(gen gemini.TextGenerator, apiKey string) *Studio {
	client := prompt.NewClient(prompt.Options{Generator: gen})
	return New(Options{
		APIKey:      apiKey,
		Creative:    strategy.NewCreative(strategy.CreativeOptions{Client: client, Detector: hebrew}),
		Styles:      strategy.NewStyles(strategy.StylesOptions{Client: client, Detector: hebrew}),
		Synthesizer: render.New(render.Options{BaseURL: "https://render.test"}),
		Detector:    hebrew,
	})
}

// promptOf extracts the prompt embedded in a renderer URL.
func promptOf(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u.Path, "/prompt/"), raw)
	return strings.TrimPrefix(u.Path, "/prompt/")
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func TestScenarioHebrewCreativeSingle(t *testing.T) {
	gen := &countingGenerator{fn: func(gemini.TextRequest) (string, error) {
		return "```json\n[\"a fluffy cat curled on a sunny windowsill, soft light\"]\n```", nil
	}}
	s := newStudio(gen, "key")

	res, err := s.Generate(context.Background(), Request{Subject: "חתול", Mode: ModeCreative, Count: 1})
	require.NoError(t, err)

	require.Len(t, res.Images, 1)
	p := promptOf(t, res.Images[0])
	assert.True(t, isASCII(p), p)
	assert.Equal(t, "a fluffy cat curled on a sunny windowsill, soft light", p)
	assert.Equal(t, "Here is your wallpaper.", res.Text)
	assert.Equal(t, 1, gen.calls())
}

func TestScenarioHebrewCreativeWhenModelEchoes(t *testing.T) {
	gen := &countingGenerator{fn: func(gemini.TextRequest) (string, error) { return "חתול", nil }}
	s := newStudio(gen, "key")

	res, err := s.Generate(context.Background(), Request{Subject: "חתול", Count: 3})
	require.NoError(t, err)

	require.Len(t, res.Images, 3)
	for _, img := range res.Images {
		p := promptOf(t, img)
		assert.False(t, hebrew.Contains(p))
		assert.Equal(t, "artistic masterpiece, high quality", p)
	}
	assert.Equal(t, "I've created 3 variations based on your request.", res.Text)
}

func TestScenarioStylesInCatalogOrder(t *testing.T) {
	gen := &countingGenerator{fn: func(req gemini.TextRequest) (string, error) {
		const marker = "detailed prompt for a "
		rest := req.Instruction[strings.Index(req.Instruction, marker)+len(marker):]
		label := rest[:strings.Index(rest, " style image")]
		return "a lighthouse in " + label + " style", nil
	}}
	s := newStudio(gen, "key")

	res, err := s.Generate(context.Background(), Request{Subject: "a lighthouse", Mode: ModeStyles, Count: 2})
	require.NoError(t, err)

	labels := strategy.DefaultCatalog().Labels()
	require.Len(t, res.Images, len(labels))
	seen := make(map[string]struct{})
	for i, img := range res.Images {
		p := promptOf(t, img)
		assert.Equal(t, "a lighthouse in "+labels[i]+" style", p)
		seen[p] = struct{}{}
	}
	assert.Len(t, seen, len(labels))
	assert.Equal(t, len(labels), gen.calls())
	assert.Contains(t, res.Text, "7 distinct styles")
	assert.Contains(t, res.Text, "Japanese Ukiyo-e")
}

func TestScenarioStylesAllBranchesUnavailable(t *testing.T) {
	gen := &countingGenerator{fn: func(gemini.TextRequest) (string, error) {
		return "", errors.New("service unavailable")
	}}
	s := newStudio(gen, "key")

	res, err := s.Generate(context.Background(), Request{Subject: "a lighthouse", Mode: ModeStyles})
	require.NoError(t, err)

	labels := strategy.DefaultCatalog().Labels()
	require.Len(t, res.Images, len(labels))
	for i, img := range res.Images {
		assert.Equal(t, labels[i]+" style artwork of a lighthouse", promptOf(t, img))
	}
}

func TestScenarioMissingCredential(t *testing.T) {
	gen := &countingGenerator{fn: func(gemini.TextRequest) (string, error) { return `["x"]`, nil }}

	for _, key := range []string{"", "   "} {
		s := newStudio(gen, key)
		for _, mode := range []Mode{ModeCreative, ModeStyles} {
			_, err := s.Generate(context.Background(), Request{Subject: "cat", Mode: mode, Count: 1})
			assert.ErrorIs(t, err, ErrMissingCredential)
		}
	}
	assert.Zero(t, gen.calls())
}

func TestMissingCredentialCheckedBeforeValidation(t *testing.T) {
	s := newStudio(&countingGenerator{}, "")
	_, err := s.Generate(context.Background(), Request{Mode: "bogus", Count: -1})
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestCreativeCardinality(t *testing.T) {
	gen := &countingGenerator{fn: func(gemini.TextRequest) (string, error) { return `["one", "two"]`, nil }}
	s := newStudio(gen, "key")

	for count := 1; count <= 5; count++ {
		res, err := s.Generate(context.Background(), Request{Subject: "cat", Count: count})
		require.NoError(t, err)
		assert.Len(t, res.Images, count)
		assert.Len(t, res.Prompts, count)
	}
}

func TestInvalidRequests(t *testing.T) {
	gen := &countingGenerator{fn: func(gemini.TextRequest) (string, error) { return `["x"]`, nil }}
	s := newStudio(gen, "key")

	cases := []Request{
		{Subject: "cat", Count: -1},
		{Subject: "cat", Count: DefaultMaxVariations + 1},
		{Subject: "cat", Mode: "remix"},
		{Subject: "cat", AspectRatio: "21:9"},
	}
	for _, req := range cases {
		_, err := s.Generate(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest, "%+v", req)
	}
	assert.Zero(t, gen.calls())
}

func TestDefaultsAndResolution(t *testing.T) {
	gen := &countingGenerator{fn: func(gemini.TextRequest) (string, error) { return `["x"]`, nil }}
	s := newStudio(gen, "key")

	res, err := s.Generate(context.Background(), Request{Subject: "cat"})
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	u, err := url.Parse(res.Images[0])
	require.NoError(t, err)
	assert.Equal(t, "1080", u.Query().Get("width"))
	assert.Equal(t, "1920", u.Query().Get("height"))

	res, err = s.Generate(context.Background(), Request{Subject: "cat", AspectRatio: Ratio16x9})
	require.NoError(t, err)
	u, err = url.Parse(res.Images[0])
	require.NoError(t, err)
	assert.Equal(t, "1920", u.Query().Get("width"))
	assert.Equal(t, "1080", u.Query().Get("height"))
}

func TestReworkedSummary(t *testing.T) {
	gen := &countingGenerator{fn: func(gemini.TextRequest) (string, error) { return `["x"]`, nil }}
	s := newStudio(gen, "key")

	res, err := s.Generate(context.Background(), Request{
		Subject:   "make it night",
		Count:     1,
		Reference: &gemini.ImageInput{DataBase64: "AAAA", MimeType: "image/png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Here is your reworked wallpaper.", res.Text)
}

type stubStrategy struct {
	prompts []string
	err     error
}

func (s stubStrategy) Prompts(context.Context, strategy.Brief) ([]string, error) {
	return s.prompts, s.err
}

func TestGateReplacesLeakedPrompts(t *testing.T) {
	s := New(Options{
		APIKey:   "key",
		Creative: stubStrategy{prompts: []string{"a cat", "חתול", "  "}},
		Detector: hebrew,
	})

	res, err := s.Generate(context.Background(), Request{Subject: "a cat", Count: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a cat",
		"a cat, artistic masterpiece, high quality",
		"a cat, artistic masterpiece, high quality",
	}, res.Prompts)
	for _, img := range res.Images {
		assert.False(t, hebrew.Contains(promptOf(t, img)))
	}
}

func TestStrategyFailures(t *testing.T) {
	cause := errors.New("boom")

	s := New(Options{APIKey: "key", Creative: stubStrategy{err: cause}})
	_, err := s.Generate(context.Background(), Request{Subject: "cat", Count: 1})
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, cause)

	s = New(Options{APIKey: "key", Creative: stubStrategy{prompts: []string{"a"}}})
	_, err = s.Generate(context.Background(), Request{Subject: "cat", Count: 2})
	assert.ErrorIs(t, err, ErrGenerationFailed)

	s = New(Options{APIKey: "key"})
	_, err = s.Generate(context.Background(), Request{Subject: "cat", Mode: ModeStyles})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestCatalogTakenFromStyles(t *testing.T) {
	catalog, err := strategy.NewCatalog("Noir", "Pastel")
	require.NoError(t, err)
	styles := strategy.NewStyles(strategy.StylesOptions{Catalog: catalog})

	s := New(Options{APIKey: "key", Styles: styles})
	assert.Equal(t, []string{"Noir", "Pastel"}, s.Catalog().Labels())
}

func TestParseHelpers(t *testing.T) {
	m, err := ParseMode(" STYLES ")
	require.NoError(t, err)
	assert.Equal(t, ModeStyles, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeCreative, m)

	r, err := ParseAspectRatio("")
	require.NoError(t, err)
	assert.Equal(t, Ratio9x16, r)

	_, err = ParseAspectRatio("2:1")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.Len(t, AspectRatios(), 5)
}
