package client

import "context"

// VisionClient is the abstract vision-model capability injected into the
// pipeline. Implementations send one prompt plus one base64-encoded image
// and return the model's text reply. Calls can run for tens of seconds;
// implementations apply a generous default timeout when the context carries
// no deadline.
type VisionClient interface {
	Invoke(ctx context.Context, model, prompt, imgB64 string) (string, error)
}
