package external

import (
	"bytes"
	"context"
	"errors"

	"github.com/go-resty/resty/v2"
)

const imgbbProvider = "imgbb"

// ImgBBBaseURL is the public upload API.
var ImgBBBaseURL = "https://api.imgbb.com"

type imgbbResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
}

// ImgBBUploader hosts banner and profile images on ImgBB.
type ImgBBUploader struct {
	http   *resty.Client
	apiKey string
}

func NewImgBBUploader(apiKey string) *ImgBBUploader {
	return &ImgBBUploader{http: newRestyClient(ImgBBBaseURL, 0), apiKey: apiKey}
}

func (u *ImgBBUploader) Configured() bool { return u.apiKey != "" }

// Upload posts the file and returns its public URL.
func (u *ImgBBUploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	var out imgbbResponse
	_, err := call(ctx, imgbbProvider, "upload", func(ctx context.Context) (*resty.Response, error) {
		return u.http.R().SetContext(ctx).
			SetQueryParam("key", u.apiKey).
			SetFileReader("image", filename, bytes.NewReader(data)).
			SetResult(&out).
			Post("/1/upload")
	})
	if err != nil {
		return "", err
	}
	if !out.Success || out.Data.URL == "" {
		return "", errors.Join(ErrUpstream, errors.New("imgbb: upload rejected"))
	}
	return out.Data.URL, nil
}
