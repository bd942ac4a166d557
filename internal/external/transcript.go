package external

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const transcriptProvider = "transcript"

// TranscriptSegment is one caption line.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Offset   float64 `json:"offset"`
	Duration float64 `json:"duration"`
}

type transcriptResponse struct {
	Segments []TranscriptSegment `json:"segments"`
}

// TranscriptClient talks to the caption-extraction sidecar at a single endpoint URL.
type TranscriptClient struct {
	http     *resty.Client
	endpoint string
}

func NewTranscriptClient(endpoint string) *TranscriptClient {
	return &TranscriptClient{http: newRestyClient("", 0), endpoint: endpoint}
}

// Fetch returns the caption segments of videoURL in playback order.
func (c *TranscriptClient) Fetch(ctx context.Context, videoURL string) ([]TranscriptSegment, error) {
	var out transcriptResponse
	_, err := call(ctx, transcriptProvider, "fetch", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().SetContext(ctx).
			SetBody(map[string]string{"videoUrl": videoURL}).
			SetResult(&out).
			Post(c.endpoint)
	})
	if err != nil {
		return nil, err
	}
	if len(out.Segments) == 0 {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("%s: no captions for %s", transcriptProvider, videoURL))
	}
	return out.Segments, nil
}
