package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/cache"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/client"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/session"
	"github.com/dmitrijs2005/testimonykeeper/internal/logging"
	"github.com/dmitrijs2005/testimonykeeper/internal/slugx"
)

// CachePrefix namespaces every cached testimony query. Keys continue with
// the owner (the token subject, or "anonymous") so processes sharing one
// Redis never serve one user's results to another.
const CachePrefix = "testimonies:"

const anonymousOwner = "anonymous"

const (
	MsgDraftSaved   = "Draft saved"
	MsgSubmitted    = "Testimony submitted for review"
	MsgSaveFailed   = "Could not save your testimony. Please try again."
	MsgLoadFailed   = "Could not load the testimony."
	MsgListFailed   = "Could not load testimonies."
	MsgUploadFailed = "Could not upload your media. Please try again."

	// MsgImagesPending takes the comma-separated names of images that were
	// not uploaded.
	MsgImagesPending = "Not uploaded: %s. They are kept and will be retried on the next save."
)

var ErrInvalidSlug = errors.New("invalid testimony slug")

// TestimonyService wraps the testimony endpoints with user notifications
// and the query cache.
//
// Contract:
//   - Create (POST) and Update (PATCH) notify success with a message that
//     depends on IsDraft, notify failures with the server message when
//     there is one, and invalidate cached testimony queries on success.
//   - Get, GetBySlug, List and GetDrafts read through the cache, keyed by
//     the session owner.
//   - GetDrafts never fails: any error yields an empty list, and only rows
//     flagged as drafts are returned.
type TestimonyService interface {
	Create(ctx context.Context, req *models.CreateOrUpdateTestimonyRequest) (*models.Testimony, error)
	Update(ctx context.Context, id int, req *models.CreateOrUpdateTestimonyRequest) (*models.Testimony, error)
	CreateForm(ctx context.Context, body io.Reader, contentType string, isDraft bool) (*models.Testimony, error)
	UpdateForm(ctx context.Context, id int, body io.Reader, contentType string, isDraft bool) (*models.Testimony, error)
	Get(ctx context.Context, id int) (*models.Testimony, error)
	GetBySlug(ctx context.Context, slug string) (*models.Testimony, error)
	List(ctx context.Context, filter models.TestimonyFilter) (*models.TestimonyPage, error)
	GetDrafts(ctx context.Context) []models.Testimony
}

type testimonyService struct {
	client   client.Client
	session  *session.Session
	cache    cache.Cache
	ttl      time.Duration
	notifier Notifier
	log      logging.Logger
}

// NewTestimonyService returns a TestimonyService. sess may be nil, in which
// case every cached read is stored as anonymous.
func NewTestimonyService(c client.Client, sess *session.Session, qc cache.Cache, ttl time.Duration, n Notifier, log logging.Logger) TestimonyService {
	if n == nil {
		n = discardNotifier{}
	}
	return &testimonyService{client: c, session: sess, cache: qc, ttl: ttl, notifier: n, log: log}
}

// CacheKey builds the cache key of a query made by owner.
func CacheKey(owner string, parts ...string) string {
	return CachePrefix + owner + ":" + strings.Join(parts, ":")
}

// key returns the cache key for the current owner. It reports false when a
// token is held but names nobody, in which case the read skips the cache.
func (s *testimonyService) key(parts ...string) (string, bool) {
	if s.session == nil {
		return CacheKey(anonymousOwner, parts...), true
	}
	if tok, _ := s.session.Token(); tok == "" {
		return CacheKey(anonymousOwner, parts...), true
	}
	c := s.session.Claims()
	switch {
	case c == nil:
		return "", false
	case c.Subject != "":
		return CacheKey("user-"+c.Subject, parts...), true
	case c.Email != "":
		return CacheKey("email-"+c.Email, parts...), true
	}
	return "", false
}

func (s *testimonyService) Create(ctx context.Context, req *models.CreateOrUpdateTestimonyRequest) (*models.Testimony, error) {
	t, err := s.client.CreateTestimony(ctx, req)
	return s.afterWrite(ctx, t, err, req.IsDraft)
}

func (s *testimonyService) Update(ctx context.Context, id int, req *models.CreateOrUpdateTestimonyRequest) (*models.Testimony, error) {
	t, err := s.client.UpdateTestimony(ctx, id, req)
	return s.afterWrite(ctx, t, err, req.IsDraft)
}

func (s *testimonyService) CreateForm(ctx context.Context, body io.Reader, contentType string, isDraft bool) (*models.Testimony, error) {
	t, err := s.client.CreateTestimonyForm(ctx, body, contentType)
	return s.afterWrite(ctx, t, err, isDraft)
}

func (s *testimonyService) UpdateForm(ctx context.Context, id int, body io.Reader, contentType string, isDraft bool) (*models.Testimony, error) {
	t, err := s.client.UpdateTestimonyForm(ctx, id, body, contentType)
	return s.afterWrite(ctx, t, err, isDraft)
}

func (s *testimonyService) afterWrite(ctx context.Context, t *models.Testimony, err error, isDraft bool) (*models.Testimony, error) {
	if err != nil {
		s.log.Error(ctx, "saving testimony failed", "draft", isDraft, "error", err)
		s.notifier.Notify(ctx, LevelError, userMessage(err, MsgSaveFailed))
		return nil, err
	}

	if err := s.cache.InvalidatePrefix(ctx, CachePrefix); err != nil {
		s.log.Warn(ctx, "cache invalidation failed", "error", err)
	}

	if isDraft {
		s.notifier.Notify(ctx, LevelSuccess, MsgDraftSaved)
	} else {
		s.notifier.Notify(ctx, LevelSuccess, MsgSubmitted)
	}
	return t, nil
}

func (s *testimonyService) Get(ctx context.Context, id int) (*models.Testimony, error) {
	key, cacheable := s.key("id", strconv.Itoa(id))
	if t, ok := cachedJSON[models.Testimony](ctx, s, key, cacheable); ok {
		return &t, nil
	}

	t, err := s.client.GetTestimony(ctx, id)
	if err != nil {
		s.notifier.Notify(ctx, LevelError, userMessage(err, MsgLoadFailed))
		return nil, fmt.Errorf("get testimony %d: %w", id, err)
	}
	s.store(ctx, key, cacheable, t)
	return t, nil
}

func (s *testimonyService) GetBySlug(ctx context.Context, slug string) (*models.Testimony, error) {
	id, ok := slugx.ParseTestimonySlug(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return s.Get(ctx, id)
}

func (s *testimonyService) List(ctx context.Context, filter models.TestimonyFilter) (*models.TestimonyPage, error) {
	key, cacheable := s.key("list", filter.Values().Encode())
	if p, ok := cachedJSON[models.TestimonyPage](ctx, s, key, cacheable); ok {
		return &p, nil
	}

	p, err := s.client.ListTestimonies(ctx, filter)
	if err != nil {
		s.notifier.Notify(ctx, LevelError, userMessage(err, MsgListFailed))
		return nil, fmt.Errorf("list testimonies: %w", err)
	}
	s.store(ctx, key, cacheable, p)
	return p, nil
}

func (s *testimonyService) GetDrafts(ctx context.Context) []models.Testimony {
	key, cacheable := s.key("drafts")
	if cached, ok := cachedJSON[[]models.Testimony](ctx, s, key, cacheable); ok {
		return cached
	}

	rows, err := s.client.GetDrafts(ctx)
	if err != nil {
		s.log.Debug(ctx, "drafts unavailable", "error", err)
		return []models.Testimony{}
	}

	drafts := make([]models.Testimony, 0, len(rows))
	for _, t := range rows {
		if t.IsDraft {
			drafts = append(drafts, t)
		}
	}
	s.store(ctx, key, cacheable, drafts)
	return drafts
}

// cachedJSON reads key from the query cache. Cache failures count as
// misses.
func cachedJSON[T any](ctx context.Context, s *testimonyService, key string, cacheable bool) (T, bool) {
	if !cacheable {
		var zero T
		return zero, false
	}
	v, ok, err := cache.GetJSON[T](ctx, s.cache, key)
	if err != nil {
		s.log.Warn(ctx, "cache read failed", "key", key, "error", err)
		return v, false
	}
	return v, ok
}

func (s *testimonyService) store(ctx context.Context, key string, cacheable bool, v any) {
	if !cacheable {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, v, s.ttl); err != nil {
		s.log.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
}
