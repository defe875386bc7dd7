package client

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
)

func (c *HTTPClient) ListTestimonies(ctx context.Context, filter models.TestimonyFilter) (*models.TestimonyPage, error) {
	body, err := c.send(ctx, request{
		method: http.MethodGet,
		path:   "/testimonies",
		query:  filter.Values(),
	})
	if err != nil {
		return nil, err
	}
	items, total, err := decodeList[models.Testimony](body)
	if err != nil {
		return nil, err
	}
	return &models.TestimonyPage{Items: items, Total: total}, nil
}

func (c *HTTPClient) GetTestimony(ctx context.Context, id int) (*models.Testimony, error) {
	var t models.Testimony
	err := c.call(ctx, request{method: http.MethodGet, path: "/testimonies/" + strconv.Itoa(id)}, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetDrafts returns the caller's drafts exactly as the server lists them.
// Filtering on IsDraft is left to the service layer.
func (c *HTTPClient) GetDrafts(ctx context.Context) ([]models.Testimony, error) {
	body, err := c.send(ctx, request{method: http.MethodGet, path: "/testimonies/drafts"})
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList[models.Testimony](body)
	return items, err
}

func (c *HTTPClient) CreateTestimony(ctx context.Context, req *models.CreateOrUpdateTestimonyRequest) (*models.Testimony, error) {
	return c.writeTestimony(ctx, http.MethodPost, "/testimonies", req)
}

func (c *HTTPClient) UpdateTestimony(ctx context.Context, id int, req *models.CreateOrUpdateTestimonyRequest) (*models.Testimony, error) {
	return c.writeTestimony(ctx, http.MethodPatch, "/testimonies/"+strconv.Itoa(id), req)
}

func (c *HTTPClient) writeTestimony(ctx context.Context, method, path string, req *models.CreateOrUpdateTestimonyRequest) (*models.Testimony, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	return c.sendTestimony(ctx, method, path, body, "application/json")
}

// CreateTestimonyForm posts a multipart testimony carrying its media inline.
func (c *HTTPClient) CreateTestimonyForm(ctx context.Context, body io.Reader, contentType string) (*models.Testimony, error) {
	return c.sendTestimony(ctx, http.MethodPost, "/testimonies", body, contentType)
}

func (c *HTTPClient) UpdateTestimonyForm(ctx context.Context, id int, body io.Reader, contentType string) (*models.Testimony, error) {
	return c.sendTestimony(ctx, http.MethodPatch, "/testimonies/"+strconv.Itoa(id), body, contentType)
}

func (c *HTTPClient) sendTestimony(ctx context.Context, method, path string, body io.Reader, contentType string) (*models.Testimony, error) {
	var t models.Testimony
	err := c.call(ctx, request{
		method:      method,
		path:        path,
		body:        body,
		contentType: contentType,
		timeout:     c.timeouts.Submit,
	}, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
