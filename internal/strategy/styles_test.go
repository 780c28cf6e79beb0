package strategy

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ultimate-gen/internal/gemini"
)

// labelOf recovers the style label from a StyleInstruction.
func labelOf(instruction string) string {
	const prefix = "detailed prompt for a "
	i := strings.Index(instruction, prefix)
	if i < 0 {
		return ""
	}
	rest := instruction[i+len(prefix):]
	return rest[:strings.Index(rest, " style image")]
}

func echoStyle() *scriptedGenerator {
	return &scriptedGenerator{respond: func(req gemini.TextRequest) (string, error) {
		return "a lighthouse, " + strings.ToLower(labelOf(req.Instruction)) + " rendition", nil
	}}
}

func TestStylesOnePromptPerLabelInOrder(t *testing.T) {
	gen := echoStyle()
	s := NewStyles(StylesOptions{Client: newClient(gen), Detector: hebrew})

	prompts, err := s.Prompts(context.Background(), Brief{Subject: "a lighthouse", Count: 1})
	require.NoError(t, err)

	labels := DefaultCatalog().Labels()
	require.Len(t, prompts, len(labels))
	for i, label := range labels {
		assert.Equal(t, "a lighthouse, "+strings.ToLower(label)+" rendition", prompts[i])
	}
	assert.Equal(t, len(labels), gen.calls())
}

func TestStylesOrderSurvivesReversedCompletion(t *testing.T) {
	catalog, err := NewCatalog("First", "Second", "Third")
	require.NoError(t, err)

	gen := echoStyle()
	gen.delay = func(req gemini.TextRequest) time.Duration {
		switch labelOf(req.Instruction) {
		case "First":
			return 60 * time.Millisecond
		case "Second":
			return 30 * time.Millisecond
		default:
			return 0
		}
	}

	s := NewStyles(StylesOptions{Client: newClient(gen), Detector: hebrew, Catalog: catalog})
	prompts, err := s.Prompts(context.Background(), Brief{Subject: "x"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a lighthouse, first rendition",
		"a lighthouse, second rendition",
		"a lighthouse, third rendition",
	}, prompts)
}

func TestStylesBranchesRunConcurrently(t *testing.T) {
	catalog, err := NewCatalog("One", "Two", "Three", "Four")
	require.NoError(t, err)

	arrived := make(chan struct{}, catalog.Len())
	release := make(chan struct{})
	go func() {
		for i := 0; i < catalog.Len(); i++ {
			select {
			case <-arrived:
			case <-time.After(2 * time.Second):
				close(release)
				return
			}
		}
		close(release)
	}()

	gen := &scriptedGenerator{respond: func(req gemini.TextRequest) (string, error) {
		arrived <- struct{}{}
		<-release
		return "ok " + labelOf(req.Instruction), nil
	}}

	s := NewStyles(StylesOptions{Client: newClient(gen), Detector: hebrew, Catalog: catalog})
	prompts, err := s.Prompts(context.Background(), Brief{Subject: "x"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ok One", "ok Two", "ok Three", "ok Four"}, prompts)
	assert.Equal(t, int32(4), gen.maxInFlight.Load())
}

func TestStylesAllBranchesFail(t *testing.T) {
	s := NewStyles(StylesOptions{Client: newClient(failing()), Detector: hebrew})

	for _, subject := range []string{"a lighthouse", "", "   ", "חתול", "say \"hi\"\nthere"} {
		prompts, err := s.Prompts(context.Background(), Brief{Subject: subject})
		require.NoError(t, err)

		labels := DefaultCatalog().Labels()
		require.Len(t, prompts, len(labels), "subject %q", subject)
		for i, label := range labels {
			assert.True(t, strings.HasPrefix(prompts[i], label+" style artwork"), prompts[i])
			assert.False(t, hebrew.Contains(prompts[i]))
		}
	}
}

func TestStylesFallbackText(t *testing.T) {
	assert.Equal(t, "Anime style artwork of a lighthouse", StyleFallback("Anime", " a  lighthouse ", hebrew))
	assert.Equal(t, "Anime style artwork of a breathtaking scene", StyleFallback("Anime", "חתול", hebrew))
	assert.Equal(t, "Anime style artwork of a breathtaking scene", StyleFallback("Anime", "", hebrew))
}

func TestStylesMixedBranchOutcomes(t *testing.T) {
	catalog, err := NewCatalog("Good", "Hebrew", "Broken", "Down", "Panics")
	require.NoError(t, err)

	gen := &scriptedGenerator{respond: func(req gemini.TextRequest) (string, error) {
		switch labelOf(req.Instruction) {
		case "Good":
			return "```\n\"a crisp lighthouse photo\"\n```", nil
		case "Hebrew":
			return "מגדלור", nil
		case "Broken":
			return `["unterminated`, nil
		case "Down":
			return "", errUnavailable
		default:
			panic("unexpected")
		}
	}}

	s := NewStyles(StylesOptions{Client: newClient(gen), Detector: hebrew, Catalog: catalog, MaxParallel: 2})
	prompts, err := s.Prompts(context.Background(), Brief{Subject: "מגדלור"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a crisp lighthouse photo",
		"Hebrew style artwork of a breathtaking scene",
		"Broken style artwork of a breathtaking scene",
		"Down style artwork of a breathtaking scene",
		"Panics style artwork of a breathtaking scene",
	}, prompts)
	assert.LessOrEqual(t, gen.maxInFlight.Load(), int32(2))
}

func TestStylesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewStyles(StylesOptions{Client: newClient(echoStyle()), Detector: hebrew})
	_, err := s.Prompts(ctx, Brief{Subject: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCatalog(t *testing.T) {
	c, err := ParseCatalog(" Realistic, anime ,,Anime, Oil   Painting ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Realistic", "anime", "Oil Painting"}, c.Labels())

	c, err = ParseCatalog("")
	require.NoError(t, err)
	assert.Equal(t, 7, c.Len())

	_, err = ParseCatalog(" , ")
	assert.Error(t, err)

	labels := c.Labels()
	labels[0] = "mutated"
	assert.Equal(t, "Realistic", c.Labels()[0])
}
