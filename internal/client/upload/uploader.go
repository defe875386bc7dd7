// Package upload applies the client-side upload policy on top of the raw
// transport: size pre-checks, bounded image retries, a reachability probe
// after timeouts, and concurrent batch uploads of images.
package upload

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/client"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/media"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/common"
	"github.com/dmitrijs2005/testimonykeeper/internal/logging"
	"github.com/dmitrijs2005/testimonykeeper/internal/netx"
	"github.com/dustin/go-humanize"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultRetryBase   = 2 * time.Second
	DefaultMaxAttempts = 3

	probeTimeout = 5 * time.Second
)

type Uploader struct {
	client      client.Client
	log         logging.Logger
	retryBase   time.Duration
	maxAttempts int
	concurrency int

	probes sync.WaitGroup
}

type Option func(*Uploader)

// WithRetryBase sets the unit of the linear image retry backoff.
func WithRetryBase(d time.Duration) Option {
	return func(u *Uploader) { u.retryBase = d }
}

// WithMaxAttempts bounds image upload attempts, the first one included.
func WithMaxAttempts(n int) Option {
	return func(u *Uploader) { u.maxAttempts = n }
}

// WithConcurrency caps parallel batch uploads; 0 means unlimited.
func WithConcurrency(n int) Option {
	return func(u *Uploader) { u.concurrency = n }
}

func New(c client.Client, log logging.Logger, opts ...Option) *Uploader {
	u := &Uploader{
		client:      c,
		log:         log,
		retryBase:   DefaultRetryBase,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, o := range opts {
		o(u)
	}
	if u.maxAttempts < 1 {
		u.maxAttempts = 1
	}
	return u
}

// CheckSize rejects file before any network call when it exceeds the
// ceiling of category c.
func CheckSize(file *models.LocalFile, c media.Category) error {
	if file == nil {
		return fmt.Errorf("upload %s: no file", c)
	}
	lim := media.Limits(c)
	if file.Size > lim.MaxBytes() {
		return fmt.Errorf("%w: %s is %s, %s files must be at most %dMB",
			common.ErrFileTooLarge, file.Name, humanize.IBytes(uint64(file.Size)), c, lim.MaxSizeMB)
	}
	return nil
}

// linearBackoff waits base, 2*base, 3*base, ...
func linearBackoff(base time.Duration) retry.Backoff {
	var attempt atomic.Int64
	return retry.BackoffFunc(func() (time.Duration, bool) {
		return time.Duration(attempt.Add(1)) * base, false
	})
}

// UploadImage uploads one image, retrying timeouts and connection failures.
func (u *Uploader) UploadImage(ctx context.Context, file *models.LocalFile) (*models.ImageUploadResponse, error) {
	if err := CheckSize(file, media.CategoryImage); err != nil {
		return nil, err
	}

	var (
		res     *models.ImageUploadResponse
		attempt int
	)
	backoff := retry.WithMaxRetries(uint64(u.maxAttempts-1), linearBackoff(u.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		r, err := u.client.UploadImage(ctx, file)
		if err == nil {
			res = r
			return nil
		}
		if netx.IsTimeout(err) {
			u.probe(ctx, true)
		}
		if netx.IsRetryable(err) {
			u.log.Warn(ctx, "image upload failed, will retry", "file", file.Name, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("upload image %s: %w", file.Name, err)
	}
	return res, nil
}

// UploadAudio uploads once; a timeout triggers a background health probe.
func (u *Uploader) UploadAudio(ctx context.Context, file *models.LocalFile) (*models.AudioUploadResponse, error) {
	return u.uploadMedia(ctx, media.CategoryAudio, file, u.client.UploadAudio)
}

func (u *Uploader) UploadVideo(ctx context.Context, file *models.LocalFile) (*models.AudioUploadResponse, error) {
	return u.uploadMedia(ctx, media.CategoryVideo, file, u.client.UploadVideo)
}

func (u *Uploader) uploadMedia(ctx context.Context, c media.Category, file *models.LocalFile,
	send func(context.Context, *models.LocalFile) (*models.AudioUploadResponse, error)) (*models.AudioUploadResponse, error) {

	if err := CheckSize(file, c); err != nil {
		return nil, err
	}
	res, err := send(ctx, file)
	if err != nil {
		if netx.IsTimeout(err) {
			u.probe(ctx, false)
		}
		return nil, fmt.Errorf("upload %s %s: %w", c, file.Name, err)
	}
	return res, nil
}

// probe checks /health after a timeout and only logs the result. With
// wait false it runs in the background and never delays the caller.
func (u *Uploader) probe(ctx context.Context, wait bool) {
	run := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		if err := u.client.Ping(ctx); err != nil {
			u.log.Warn(ctx, "server unreachable after upload timeout", "error", err)
			return
		}
		u.log.Info(ctx, "server reachable, upload timed out on the way")
	}

	if wait {
		run(ctx)
		return
	}
	u.probes.Add(1)
	go func() {
		defer u.probes.Done()
		run(context.WithoutCancel(ctx))
	}()
}

// Wait blocks until background probes finish.
func (u *Uploader) Wait() {
	u.probes.Wait()
}
