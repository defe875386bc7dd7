package upload

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/client"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failing(names ...string) func(context.Context, *models.LocalFile, int) (*models.ImageUploadResponse, error) {
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	return func(ctx context.Context, f *models.LocalFile, call int) (*models.ImageUploadResponse, error) {
		if set[f.Name] {
			return nil, &client.APIError{Status: 422, Message: "bad image " + f.Name}
		}
		return &models.ImageUploadResponse{URL: "https://cdn/" + f.Name, FileName: f.Name}, nil
	}
}

func TestUploadMultipleImages_PartialSuccess(t *testing.T) {
	fc := newFakeClient()
	fc.uploadImage = failing("f2.png")
	u := newTestUploader(fc)

	outcomes, err := u.UploadMultipleImages(context.Background(),
		[]*models.LocalFile{image("f1.png"), image("f2.png"), image("f3.png")})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	for i, o := range outcomes {
		assert.Equal(t, i, o.Index)
	}
	assert.Error(t, outcomes[1].Err)

	ok := Succeeded(outcomes)
	require.Len(t, ok, 2)
	assert.Equal(t, 0, ok[0].Index)
	assert.Equal(t, "https://cdn/f1.png", ok[0].URL)
	assert.Equal(t, 2, ok[1].Index)
	assert.Equal(t, "https://cdn/f3.png", ok[1].URL)
}

func TestUploadMultipleImages_AllFail(t *testing.T) {
	fc := newFakeClient()
	fc.uploadImage = failing("f1.png", "f2.png")
	u := newTestUploader(fc)

	outcomes, err := u.UploadMultipleImages(context.Background(),
		[]*models.LocalFile{image("f1.png"), image("f2.png")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "f1.png")
	assert.Contains(t, err.Error(), "f2.png")

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, []string{"f1.png", "f2.png"}, batchErr.Files)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Len(t, outcomes, 2)
	assert.Empty(t, Succeeded(outcomes))
}

func TestUploadMultipleImages_Empty(t *testing.T) {
	u := newTestUploader(newFakeClient())
	outcomes, err := u.UploadMultipleImages(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestUploadMultipleImages_RunsConcurrently(t *testing.T) {
	fc := newFakeClient()
	var inFlight, peak atomic.Int32
	fc.uploadImage = func(ctx context.Context, f *models.LocalFile, call int) (*models.ImageUploadResponse, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return &models.ImageUploadResponse{URL: f.Name}, nil
	}
	u := newTestUploader(fc)

	files := []*models.LocalFile{image("a.png"), image("b.png"), image("c.png"), image("d.png")}
	_, err := u.UploadMultipleImages(context.Background(), files)
	require.NoError(t, err)
	assert.Greater(t, peak.Load(), int32(1))
}

func TestUploadMultipleImages_ConcurrencyLimit(t *testing.T) {
	fc := newFakeClient()
	var inFlight, peak atomic.Int32
	fc.uploadImage = func(ctx context.Context, f *models.LocalFile, call int) (*models.ImageUploadResponse, error) {
		n := inFlight.Add(1)
		if n > peak.Load() {
			peak.Store(n)
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return &models.ImageUploadResponse{URL: f.Name}, nil
	}
	u := newTestUploader(fc, WithConcurrency(1))

	files := []*models.LocalFile{image("a.png"), image("b.png"), image("c.png")}
	_, err := u.UploadMultipleImages(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, int32(1), peak.Load())
}

func TestBatchError_UnwrapsEach(t *testing.T) {
	e1, e2 := errors.New("one"), errors.New("two")
	fc := newFakeClient()
	fc.uploadImage = func(ctx context.Context, f *models.LocalFile, call int) (*models.ImageUploadResponse, error) {
		if f.Name == "a.png" {
			return nil, e1
		}
		return nil, e2
	}
	u := newTestUploader(fc)

	_, err := u.UploadMultipleImages(context.Background(), []*models.LocalFile{image("a.png"), image("b.png")})
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
}
