// Package draft holds the multi-step state of a testimony being written:
// the working draft, the current step and whether it has been saved.
// Navigation is free and every field can be changed at any time.
package draft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/transform"
)

type Step int

const (
	StepType Step = iota
	StepIdentity
	StepDetails
	StepRelatives
	StepContent
	StepReview
)

var stepNames = [...]string{"type", "identity", "details", "relatives", "content", "review"}

func (s Step) String() string {
	if s < StepType || s > StepReview {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// Steps lists all steps in display order.
func Steps() []Step {
	return []Step{StepType, StepIdentity, StepDetails, StepRelatives, StepContent, StepReview}
}

type Phase int

const (
	PhaseEditing Phase = iota
	PhaseDraftSaved
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseDraftSaved:
		return "draft-saved"
	case PhaseSubmitted:
		return "submitted"
	}
	return "editing"
}

var ErrIndexOutOfRange = errors.New("index out of range")

type Wizard struct {
	draft models.Draft
	step  Step
	phase Phase
}

func New() *Wizard {
	return &Wizard{}
}

// Hydrate builds a wizard from a stored testimony. Stored media stays on
// the server and is referenced through the Existing* fields. A nil
// testimony yields a fresh wizard.
func Hydrate(t *models.Testimony) *Wizard {
	if t == nil {
		return New()
	}
	w := &Wizard{
		draft: models.Draft{
			ID:               t.ID,
			Type:             t.SubmissionType,
			Identity:         t.IdentityPreference,
			FullName:         t.FullName,
			RelationToEvent:  t.RelationToEvent,
			Location:         t.Location,
			EventTitle:       t.EventTitle,
			Testimony:        t.TestimonyText,
			DateOfEventFrom:  NormalizeDate(t.DateOfEventFrom),
			DateOfEventTo:    NormalizeDate(t.DateOfEventTo),
			Relatives:        transform.RelativesFromAPI(t.Relatives),
			ExistingImages:   append([]models.ImageRecord(nil), t.Images...),
			ExistingAudioURL: t.AudioURL,
			ExistingVideoURL: t.VideoURL,
			Consent:          t.Consent,
		},
		phase: PhaseSubmitted,
	}
	if t.IsDraft {
		w.phase = PhaseDraftSaved
	}
	return w
}

// Draft returns the working draft. Changes made through the pointer do not
// reset the phase; use the setters for that.
func (w *Wizard) Draft() *models.Draft { return &w.draft }
func (w *Wizard) Step() Step           { return w.step }
func (w *Wizard) Phase() Phase         { return w.phase }

// ID is the server id, 0 until the first save.
func (w *Wizard) ID() int { return w.draft.ID }

func (w *Wizard) Next() Step {
	if w.step < StepReview {
		w.step++
	}
	return w.step
}

func (w *Wizard) Back() Step {
	if w.step > StepType {
		w.step--
	}
	return w.step
}

func (w *Wizard) GoTo(s Step) error {
	if s < StepType || s > StepReview {
		return fmt.Errorf("unknown step %d", int(s))
	}
	w.step = s
	return nil
}

func (w *Wizard) touch() {
	w.phase = PhaseEditing
}

func (w *Wizard) SetType(t models.SubmissionType) error {
	if !t.Valid() {
		return fmt.Errorf("unknown submission type %q", t)
	}
	w.draft.Type = t
	w.touch()
	return nil
}

func (w *Wizard) SetIdentity(i models.Identity) error {
	if !i.Valid() {
		return fmt.Errorf("unknown identity preference %q", i)
	}
	w.draft.Identity = i
	w.touch()
	return nil
}

func (w *Wizard) SetFullName(v string)        { w.draft.FullName = v; w.touch() }
func (w *Wizard) SetRelationToEvent(v string) { w.draft.RelationToEvent = v; w.touch() }
func (w *Wizard) SetLocation(v string)        { w.draft.Location = v; w.touch() }
func (w *Wizard) SetEventTitle(v string)      { w.draft.EventTitle = v; w.touch() }
func (w *Wizard) SetTestimony(v string)       { w.draft.Testimony = v; w.touch() }
func (w *Wizard) SetConsent(v bool)           { w.draft.Consent = v; w.touch() }

// SetDates stores both event dates as entered; they are checked by the
// validators, not here.
func (w *Wizard) SetDates(from, to string) {
	w.draft.DateOfEventFrom = strings.TrimSpace(from)
	w.draft.DateOfEventTo = strings.TrimSpace(to)
	w.touch()
}

func (w *Wizard) AddRelative(tag, name string) int {
	w.draft.Relatives = append(w.draft.Relatives, models.DraftRelative{Value: tag, Name: name})
	w.touch()
	return len(w.draft.Relatives) - 1
}

func (w *Wizard) UpdateRelative(i int, tag, name string) error {
	if i < 0 || i >= len(w.draft.Relatives) {
		return fmt.Errorf("relative %d: %w", i, ErrIndexOutOfRange)
	}
	w.draft.Relatives[i] = models.DraftRelative{Value: tag, Name: name}
	w.touch()
	return nil
}

func (w *Wizard) RemoveRelative(i int) error {
	rels, err := removeAt(w.draft.Relatives, i)
	if err != nil {
		return fmt.Errorf("relative %d: %w", i, err)
	}
	w.draft.Relatives = rels
	w.touch()
	return nil
}

func (w *Wizard) AddImage(f *models.LocalFile, description string) int {
	w.draft.Images = append(w.draft.Images, models.DraftImage{File: f, Description: description})
	w.touch()
	return len(w.draft.Images) - 1
}

func (w *Wizard) SetImageDescription(i int, description string) error {
	if i < 0 || i >= len(w.draft.Images) {
		return fmt.Errorf("image %d: %w", i, ErrIndexOutOfRange)
	}
	w.draft.Images[i].Description = description
	w.touch()
	return nil
}

func (w *Wizard) RemoveImage(i int) error {
	imgs, err := removeAt(w.draft.Images, i)
	if err != nil {
		return fmt.Errorf("image %d: %w", i, err)
	}
	w.draft.Images = imgs
	w.touch()
	return nil
}

func (w *Wizard) RemoveExistingImage(i int) error {
	imgs, err := removeAt(w.draft.ExistingImages, i)
	if err != nil {
		return fmt.Errorf("existing image %d: %w", i, err)
	}
	w.draft.ExistingImages = imgs
	w.touch()
	return nil
}

// SetAudioFile replaces any stored recording; nil clears the new file only.
func (w *Wizard) SetAudioFile(f *models.LocalFile) {
	w.draft.AudioFile = f
	if f != nil {
		w.draft.ExistingAudioURL = ""
	}
	w.touch()
}

func (w *Wizard) SetVideoFile(f *models.LocalFile) {
	w.draft.VideoFile = f
	if f != nil {
		w.draft.ExistingVideoURL = ""
	}
	w.touch()
}

// MarkSaved records the server's copy after a save: the id, and the media
// now stored remotely, so a later save does not upload it again. pending
// lists new images the server did not receive; they stay in the draft so
// the next save retries them.
func (w *Wizard) MarkSaved(t *models.Testimony, pending ...models.DraftImage) {
	w.draft.ID = t.ID
	w.draft.ExistingImages = append([]models.ImageRecord(nil), t.Images...)
	w.draft.Images = append([]models.DraftImage(nil), pending...)
	if t.AudioURL != "" {
		w.draft.ExistingAudioURL, w.draft.AudioFile = t.AudioURL, nil
	}
	if t.VideoURL != "" {
		w.draft.ExistingVideoURL, w.draft.VideoFile = t.VideoURL, nil
	}

	if t.IsDraft {
		w.phase = PhaseDraftSaved
		return
	}
	w.phase = PhaseSubmitted
}

func removeAt[T any](s []T, i int) ([]T, error) {
	if i < 0 || i >= len(s) {
		return s, ErrIndexOutOfRange
	}
	return append(s[:i:i], s[i+1:]...), nil
}
