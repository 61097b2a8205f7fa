package detector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"gocv.io/x/gocv"
)

const ollamaTimeout = 30 * time.Second

// OllamaFaceDetector asks an Ollama vision model whether a face is
// visible in the frame. A model round trip is far slower than a tick,
// so this backend is meant for hosts without a usable cascade file or
// for offline debugging, not for the live 15Hz stream.
type OllamaFaceDetector struct {
	client *api.Client
	model  string
}

// NewOllamaFaceDetector creates a detector backed by the Ollama server
// at the given URL (e.g. http://127.0.0.1:11434).
func NewOllamaFaceDetector(ollamaURL, model string) (*OllamaFaceDetector, error) {
	parsed, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama URL: %w", err)
	}

	baseURL := &url.URL{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
	}

	return &OllamaFaceDetector{
		client: api.NewClient(baseURL, http.DefaultClient),
		model:  model,
	}, nil
}

// Detect sends the frame to the vision model and interprets its answer.
func (d *OllamaFaceDetector) Detect(frame *gocv.Mat) (bool, error) {
	if frame == nil || frame.Empty() {
		return false, fmt.Errorf("empty frame")
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return false, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	ctx, cancel := context.WithTimeout(context.Background(), ollamaTimeout)
	defer cancel()

	stream := false
	req := &api.GenerateRequest{
		Model:  d.model,
		Prompt: "Does this image contain a human face? Answer with exactly one word: yes or no.",
		Images: []api.ImageData{buf.GetBytes()},
		Stream: &stream,
	}

	var answer strings.Builder
	err = d.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		answer.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("ollama generate: %w", err)
	}

	return strings.Contains(strings.ToLower(answer.String()), "yes"), nil
}

// Close is a no-op; the detector holds no local resources.
func (d *OllamaFaceDetector) Close() error {
	return nil
}
