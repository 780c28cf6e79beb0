// Package render builds request URLs for the prompt-keyed image renderer.
package render

import (
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

const DefaultBaseURL = "https://image.pollinations.ai"

// MaxSeed bounds drawn seeds to [0, MaxSeed).
const MaxSeed = 1_000_000_000

type Resolution struct {
	Width  int
	Height int
}

var (
	Landscape = Resolution{Width: 1920, Height: 1080}
	Portrait  = Resolution{Width: 1080, Height: 1920}
)

// ResolutionFor maps "16:9" to landscape; every other ratio is rendered portrait.
func ResolutionFor(aspectRatio string) Resolution {
	if strings.TrimSpace(aspectRatio) == "16:9" {
		return Landscape
	}
	return Portrait
}

// SeedSource yields one seed per rendered image.
type SeedSource interface {
	Seed() int64
}

type randomSeeds struct{}

func (randomSeeds) Seed() int64 {
	return rand.Int64N(MaxSeed)
}

// RandomSeeds is safe for concurrent use.
func RandomSeeds() SeedSource {
	return randomSeeds{}
}

// FixedSeeds replays seeds in order and then repeats the last one.
type FixedSeeds struct {
	mu    sync.Mutex
	seeds []int64
	next  int
}

func NewFixedSeeds(seeds ...int64) *FixedSeeds {
	return &FixedSeeds{seeds: seeds}
}

func (f *FixedSeeds) Seed() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.seeds) == 0 {
		return 0
	}
	i := f.next
	if i >= len(f.seeds) {
		i = len(f.seeds) - 1
	} else {
		f.next++
	}
	return f.seeds[i]
}

type Options struct {
	BaseURL string
	Model   string
	Seeds   SeedSource
}

type Synthesizer struct {
	baseURL string
	model   string
	seeds   SeedSource
}

func New(opts Options) *Synthesizer {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	seeds := opts.Seeds
	if seeds == nil {
		seeds = RandomSeeds()
	}
	return &Synthesizer{
		baseURL: baseURL,
		model:   strings.TrimSpace(opts.Model),
		seeds:   seeds,
	}
}

// URL embeds the prompt in the path and draws a fresh seed for every call.
func (s *Synthesizer) URL(prompt string, res Resolution) string {
	q := url.Values{}
	q.Set("width", strconv.Itoa(res.Width))
	q.Set("height", strconv.Itoa(res.Height))
	q.Set("seed", strconv.FormatInt(s.seeds.Seed(), 10))
	q.Set("nologo", "true")
	if s.model != "" {
		q.Set("model", s.model)
	}
	return s.baseURL + "/prompt/" + url.PathEscape(prompt) + "?" + q.Encode()
}
