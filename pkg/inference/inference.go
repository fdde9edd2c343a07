// Package inference is a small client for OpenAI-compatible vision
// endpoints.
//
// go-focus only needs one thing from a hosted model: a short text answer
// about a face crop. The Provider interface is kept narrow so local servers
// (Ollama, vLLM) and hosted APIs are interchangeable.
//
//	client, _ := inference.NewClient(
//	    inference.WithBaseURL("http://localhost:11434/v1"),
//	    inference.WithVisionModel("llava"),
//	)
//	resp, _ := client.Vision(ctx, &inference.VisionRequest{
//	    Image:  faceJPEG,
//	    Prompt: "Which emotion is this face showing?",
//	})
package inference

import "context"

// Provider analyzes images with a text prompt.
type Provider interface {
	// Vision analyzes a JPEG image with a text prompt.
	Vision(ctx context.Context, req *VisionRequest) (*VisionResponse, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// VisionRequest for image analysis.
type VisionRequest struct {
	// Image is a JPEG-encoded image.
	Image []byte

	// Prompt describing what to analyze or ask about the image.
	Prompt string

	// Model overrides the default vision model.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness.
	Temperature float64
}

// VisionResponse from image analysis.
type VisionResponse struct {
	// Content is the natural language response.
	Content string

	// Usage tracks token consumption.
	Usage Usage

	// Model used for analysis.
	Model string

	// LatencyMs is the response time in milliseconds.
	LatencyMs int64
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
