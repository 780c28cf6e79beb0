package strategy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"ultimate-gen/internal/gemini"
	"ultimate-gen/internal/prompt"
	"ultimate-gen/internal/script"
)

var errUnavailable = errors.New("text model unavailable")

// scriptedGenerator answers with respond(instruction); it is safe for concurrent use.
type scriptedGenerator struct {
	respond func(req gemini.TextRequest) (string, error)

	mu       sync.Mutex
	requests []gemini.TextRequest

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       func(req gemini.TextRequest) time.Duration
}

func (g *scriptedGenerator) GenerateText(ctx context.Context, req gemini.TextRequest) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		cur := g.maxInFlight.Load()
		if n <= cur || g.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	if g.delay != nil {
		select {
		case <-time.After(g.delay(req)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.respond(req)
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func fixed(text string) *scriptedGenerator {
	return &scriptedGenerator{respond: func(gemini.TextRequest) (string, error) { return text, nil }}
}

func failing() *scriptedGenerator {
	return &scriptedGenerator{respond: func(gemini.TextRequest) (string, error) { return "", errUnavailable }}
}

func newClient(gen gemini.TextGenerator) *prompt.Client {
	return prompt.NewClient(prompt.Options{Generator: gen})
}

var hebrew = script.Hebrew()
