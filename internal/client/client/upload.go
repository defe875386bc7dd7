package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/filex"
	"github.com/dmitrijs2005/testimonykeeper/internal/netx"
)

// UploadFieldName is the multipart field carrying the file on /upload/*.
const UploadFieldName = "file"

func (c *HTTPClient) UploadImage(ctx context.Context, file *models.LocalFile) (*models.ImageUploadResponse, error) {
	body, err := c.upload(ctx, "/upload/images", file, c.timeouts.ImageUpload)
	return uploadResult(c, ctx, "/upload/images", body, err, func(r models.ImageUploadResponse) string { return r.URL })
}

func (c *HTTPClient) UploadAudio(ctx context.Context, file *models.LocalFile) (*models.AudioUploadResponse, error) {
	body, err := c.upload(ctx, "/upload/audio", file, c.timeouts.AudioUpload)
	return uploadResult(c, ctx, "/upload/audio", body, err, func(r models.AudioUploadResponse) string { return r.URL })
}

func (c *HTTPClient) UploadVideo(ctx context.Context, file *models.LocalFile) (*models.AudioUploadResponse, error) {
	body, err := c.upload(ctx, "/upload/video", file, c.timeouts.VideoUpload)
	return uploadResult(c, ctx, "/upload/video", body, err, func(r models.AudioUploadResponse) string { return r.URL })
}

// upload streams file as a single multipart part.
func (c *HTTPClient) upload(ctx context.Context, path string, file *models.LocalFile, timeout time.Duration) ([]byte, error) {
	if file == nil {
		return nil, fmt.Errorf("upload %s: no file", path)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := filex.WriteFormFile(mw, UploadFieldName, file)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return c.send(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        pr,
		contentType: mw.FormDataContentType(),
		timeout:     timeout,
	})
}

// uploadResult decodes an upload answer. When the deadline hit while the
// body was being read but what arrived still decodes to a result with a URL,
// the upload is treated as done.
func uploadResult[T any](c *HTTPClient, ctx context.Context, path string, body []byte, err error, urlOf func(T) string) (*T, error) {
	if err != nil {
		var readErr *bodyReadError
		if !errors.As(err, &readErr) || !netx.IsTimeout(err) {
			return nil, err
		}
	}

	var out T
	if decodeErr := json.Unmarshal(body, &out); decodeErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("decode %s: %w", path, decodeErr)
	}

	if err != nil {
		if urlOf(out) == "" {
			return nil, err
		}
		c.log.Warn(ctx, "upload response timed out but carried a result", "path", path, "url", urlOf(out))
	}
	return &out, nil
}
