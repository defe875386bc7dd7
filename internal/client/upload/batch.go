package upload

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Outcome is the result for the file at Index of the batch input.
type Outcome struct {
	Index  int
	File   *models.LocalFile
	Result *models.ImageUploadResponse
	Err    error
}

// BatchError is returned when every file of a batch failed.
type BatchError struct {
	Files []string
	errs  error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("all %d image uploads failed: %s", len(e.Files), strings.Join(e.Files, ", "))
}

func (e *BatchError) Unwrap() []error {
	return multierr.Errors(e.errs)
}

func fileName(f *models.LocalFile) string {
	if f == nil {
		return "<nil>"
	}
	return f.Name
}

// UploadMultipleImages uploads all files concurrently and waits for every
// one of them. Outcomes are in input order. The error is non-nil only when
// no file succeeded.
func (u *Uploader) UploadMultipleImages(ctx context.Context, files []*models.LocalFile) ([]Outcome, error) {
	outcomes := make([]Outcome, len(files))
	if len(files) == 0 {
		return outcomes, nil
	}

	var g errgroup.Group
	if u.concurrency > 0 {
		g.SetLimit(u.concurrency)
	}
	for i, f := range files {
		g.Go(func() error {
			res, err := u.UploadImage(ctx, f)
			outcomes[i] = Outcome{Index: i, File: f, Result: res, Err: err}
			if err != nil {
				u.log.Warn(ctx, "image upload failed", "file", fileName(f), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var (
		errs   error
		failed []string
	)
	for _, o := range outcomes {
		if o.Err != nil {
			errs = multierr.Append(errs, o.Err)
			failed = append(failed, fileName(o.File))
		}
	}
	if len(failed) == len(files) {
		return outcomes, &BatchError{Files: failed, errs: errs}
	}
	if len(failed) > 0 {
		u.log.Info(ctx, "image batch partially uploaded", "ok", len(files)-len(failed), "failed", len(failed))
	}
	return outcomes, nil
}

// Succeeded keeps the successful outcomes, each tagged with its input index.
func Succeeded(outcomes []Outcome) []models.UploadedImage {
	var out []models.UploadedImage
	for _, o := range outcomes {
		if o.Err == nil && o.Result != nil {
			out = append(out, models.UploadedImage{Index: o.Index, ImageUploadResponse: *o.Result})
		}
	}
	return out
}
