package gemini

import (
	"context"
	"fmt"
)

// TextGenerator is the narrow text-generation capability the prompt pipeline depends on.
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

type TextRequest struct {
	Instruction string
	Images      []ImageInput
	Temperature float64
	// JSON asks the model for an application/json response.
	JSON bool
}

type ImageInput struct {
	DataBase64 string
	MimeType   string
}

type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API %s: %s", e.Status, e.Body)
}
