package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/draft"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/media"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/transform"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/upload"
	"github.com/dmitrijs2005/testimonykeeper/internal/common"
	"github.com/dmitrijs2005/testimonykeeper/internal/logging"
)

// ValidationError lists the problems that stopped a save before any
// network call.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return common.ErrValidation
}

// SubmissionService turns a wizard into a stored testimony.
//
// Contract:
//   - SaveDraft validates only what a draft needs; Submit requires every
//     field and consent.
//   - Files are checked against the media policy, then uploaded (images as
//     one concurrent batch) unless inline mode sends them in the same
//     multipart request as the testimony.
//   - The testimony is created when the wizard has no id yet, else updated.
//   - On success the wizard records the server copy and its new phase.
type SubmissionService interface {
	SaveDraft(ctx context.Context, w *draft.Wizard) (*models.Testimony, error)
	Submit(ctx context.Context, w *draft.Wizard) (*models.Testimony, error)
}

type submissionService struct {
	testimonies TestimonyService
	uploader    *upload.Uploader
	notifier    Notifier
	log         logging.Logger
	inline      bool
}

// NewSubmissionService returns a SubmissionService. With inline set, media
// travels inside the create/update request instead of being uploaded first.
func NewSubmissionService(ts TestimonyService, u *upload.Uploader, n Notifier, log logging.Logger, inline bool) SubmissionService {
	if n == nil {
		n = discardNotifier{}
	}
	return &submissionService{testimonies: ts, uploader: u, notifier: n, log: log, inline: inline}
}

func (s *submissionService) SaveDraft(ctx context.Context, w *draft.Wizard) (*models.Testimony, error) {
	return s.save(ctx, w, true)
}

func (s *submissionService) Submit(ctx context.Context, w *draft.Wizard) (*models.Testimony, error) {
	return s.save(ctx, w, false)
}

func (s *submissionService) save(ctx context.Context, w *draft.Wizard, isDraft bool) (*models.Testimony, error) {
	d := mediaForType(w.Draft())

	problems := draft.ValidateForDraft(d)
	if !isDraft {
		problems = draft.ValidateForSubmit(d)
	}
	problems = append(problems, validateFiles(d)...)
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	var (
		t       *models.Testimony
		pending []models.DraftImage
		err     error
	)
	if s.inline {
		t, err = s.sendInline(ctx, w.ID(), d, isDraft)
	} else {
		t, pending, err = s.sendUploaded(ctx, w.ID(), d, isDraft)
	}
	if err != nil {
		return nil, err
	}

	w.MarkSaved(t, pending...)
	if len(pending) > 0 {
		s.notifier.Notify(ctx, LevelInfo, pendingMessage(pending))
	}
	s.log.Info(ctx, "testimony saved", "id", t.ID, "draft", isDraft)
	return t, nil
}

func (s *submissionService) sendInline(ctx context.Context, id int, d *models.Draft, isDraft bool) (*models.Testimony, error) {
	body, contentType, err := transform.BuildTestimonyFormData(d, isDraft)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	defer body.Close()

	if id == 0 {
		return s.testimonies.CreateForm(ctx, body, contentType, isDraft)
	}
	return s.testimonies.UpdateForm(ctx, id, body, contentType, isDraft)
}

// sendUploaded uploads the media, then stores the testimony. It also
// returns the images whose upload failed in a partially successful batch.
func (s *submissionService) sendUploaded(ctx context.Context, id int, d *models.Draft, isDraft bool) (*models.Testimony, []models.DraftImage, error) {
	var (
		images []models.UploadedImage
		failed []models.DraftImage
	)
	if len(d.Images) > 0 {
		files := make([]*models.LocalFile, len(d.Images))
		for i, img := range d.Images {
			files[i] = img.File
		}
		outcomes, err := s.uploader.UploadMultipleImages(ctx, files)
		if err != nil {
			return nil, nil, s.uploadFailed(ctx, err)
		}
		images = upload.Succeeded(outcomes)
		for _, o := range outcomes {
			if o.Err != nil {
				failed = append(failed, d.Images[o.Index])
			}
		}
	}

	var audio, video *models.AudioUploadResponse
	var err error
	if d.AudioFile != nil {
		if audio, err = s.uploader.UploadAudio(ctx, d.AudioFile); err != nil {
			return nil, nil, s.uploadFailed(ctx, err)
		}
	}
	if d.VideoFile != nil {
		if video, err = s.uploader.UploadVideo(ctx, d.VideoFile); err != nil {
			return nil, nil, s.uploadFailed(ctx, err)
		}
	}

	req := transform.ToAPIRequest(d, images, audio, video, isDraft)
	var t *models.Testimony
	if id == 0 {
		t, err = s.testimonies.Create(ctx, req)
	} else {
		t, err = s.testimonies.Update(ctx, id, req)
	}
	if err != nil {
		return nil, nil, err
	}
	return t, failed, nil
}

func pendingMessage(pending []models.DraftImage) string {
	names := make([]string, len(pending))
	for i, img := range pending {
		names[i] = img.File.Name
	}
	return fmt.Sprintf(MsgImagesPending, strings.Join(names, ", "))
}

func (s *submissionService) uploadFailed(ctx context.Context, err error) error {
	s.log.Error(ctx, "media upload failed", "error", err)
	s.notifier.Notify(ctx, LevelError, userMessage(err, MsgUploadFailed))
	return err
}

// mediaForType returns a copy of d carrying only the recording that
// matches its submission type.
func mediaForType(d *models.Draft) *models.Draft {
	c := *d
	if c.Type != models.SubmissionAudio {
		c.AudioFile = nil
	}
	if c.Type != models.SubmissionVideo {
		c.VideoFile = nil
	}
	return &c
}

func validateFiles(d *models.Draft) []string {
	var problems []string
	check := func(f *models.LocalFile, c media.Category) {
		if f == nil {
			return
		}
		if r := media.ValidateFor(f, c); !r.IsValid {
			problems = append(problems, r.Error)
		}
	}
	for _, img := range d.Images {
		if img.File == nil {
			problems = append(problems, "image without a file")
			continue
		}
		check(img.File, media.CategoryImage)
	}
	check(d.AudioFile, media.CategoryAudio)
	check(d.VideoFile, media.CategoryVideo)
	return problems
}
