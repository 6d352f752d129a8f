package embedding

import "context"

// Task types hint the provider how the text will be used.
const (
	TaskTypeQuery    = "RETRIEVAL_QUERY"
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
)

// Provider converts text into a fixed-length vector.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
}
