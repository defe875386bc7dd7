package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/draft"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/media"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/services"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/transform"
	"github.com/dmitrijs2005/testimonykeeper/internal/filex"
	"github.com/dmitrijs2005/testimonykeeper/internal/slugx"
)

// loadFile and getMultiline are test seams.
var (
	loadFile     = filex.Load
	getMultiline = GetMultiline
)

// Navigation answers accepted at every wizard prompt.
const (
	navBack = ":b"
	navSave = ":s"
	navQuit = ":q"
)

var (
	errBack = errors.New("wizard: back")
	errSave = errors.New("wizard: save draft")
	errQuit = errors.New("wizard: quit")
	errStay = errors.New("wizard: stay on step")
)

// Share starts a new testimony. Visitors are asked to log in first.
func (a *App) Share(ctx context.Context) error {
	return a.RequireAuth(ctx, func(ctx context.Context) error {
		return a.runWizard(ctx, draft.New())
	})
}

// runWizard walks w through its steps until the testimony is submitted or
// the user leaves.
func (a *App) runWizard(ctx context.Context, w *draft.Wizard) error {
	fmt.Fprintf(a.out, "Enter keeps the value in brackets. %s goes back, %s saves a draft, %s leaves.\n", navBack, navSave, navQuit)

	for {
		fmt.Fprintf(a.out, "\n== Step %d/%d: %s ==\n", int(w.Step())+1, len(draft.Steps()), w.Step())

		err := a.runStep(ctx, w)
		switch {
		case err == nil:
			if w.Step() == draft.StepReview {
				return nil
			}
			w.Next()
		case errors.Is(err, errStay):
		case errors.Is(err, errBack):
			w.Back()
		case errors.Is(err, errSave):
			_ = a.saveDraft(ctx, w)
		case errors.Is(err, errQuit):
			return a.leaveWizard(ctx, w)
		default:
			return err
		}
	}
}

func (a *App) runStep(ctx context.Context, w *draft.Wizard) error {
	switch w.Step() {
	case draft.StepType:
		return a.stepType(w)
	case draft.StepIdentity:
		return a.stepIdentity(w)
	case draft.StepDetails:
		return a.stepDetails(w)
	case draft.StepRelatives:
		return a.stepRelatives(w)
	case draft.StepContent:
		return a.stepContent(w)
	default:
		return a.stepReview(ctx, w)
	}
}

// ask prompts for one value. An empty answer keeps current; the navigation
// answers come back as errBack, errSave and errQuit.
func (a *App) ask(label, current string) (string, error) {
	prompt := label
	if current != "" {
		prompt += fmt.Sprintf(" [%s]", current)
	}
	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	switch v {
	case navBack:
		return "", errBack
	case navSave:
		return "", errSave
	case navQuit:
		return "", errQuit
	case "":
		return current, nil
	}
	return v, nil
}

func (a *App) stepType(w *draft.Wizard) error {
	for {
		v, err := a.ask("Submission type (written, audio, video)", string(w.Draft().Type))
		if err != nil {
			return err
		}
		if err := w.SetType(models.SubmissionType(strings.ToLower(v))); err != nil {
			fmt.Fprintln(a.out, draft.MsgType)
			continue
		}
		return nil
	}
}

func (a *App) stepIdentity(w *draft.Wizard) error {
	for {
		v, err := a.ask("Show your name publicly? (public, anonymous)", string(w.Draft().Identity))
		if err != nil {
			return err
		}
		if err := w.SetIdentity(models.Identity(strings.ToLower(v))); err != nil {
			fmt.Fprintln(a.out, draft.MsgIdentity)
			continue
		}
		return nil
	}
}

func (a *App) stepDetails(w *draft.Wizard) error {
	d := w.Draft()

	fields := []struct {
		label string
		cur   string
		set   func(string)
	}{
		{"Full name", d.FullName, w.SetFullName},
		{"Your relation to the event", d.RelationToEvent, w.SetRelationToEvent},
		{"Location", d.Location, w.SetLocation},
		{"Event title", d.EventTitle, w.SetEventTitle},
	}
	for _, f := range fields {
		v, err := a.ask(f.label, f.cur)
		if err != nil {
			return err
		}
		f.set(v)
	}

	for {
		from, err := a.ask("Event start date (YYYY-MM-DD)", d.DateOfEventFrom)
		if err != nil {
			return err
		}
		to, err := a.ask("Event end date (YYYY-MM-DD)", firstNonEmpty(d.DateOfEventTo, from))
		if err != nil {
			return err
		}
		w.SetDates(from, to)
		if problems := draft.ValidateForDraft(d); containsAny(problems, draft.MsgDateFormat, draft.MsgDateOrder) {
			printProblems(a.out, problems)
			continue
		}
		return nil
	}
}

func (a *App) stepRelatives(w *draft.Wizard) error {
	fmt.Fprintf(a.out, "Relatives you lost or who were affected. Known relations: %s\n", strings.Join(transform.RelativeTags(), ", "))
	for {
		for i, r := range w.Draft().Relatives {
			fmt.Fprintf(a.out, "  %d. %s: %s\n", i+1, r.Value, r.Name)
		}
		v, err := a.ask("Add '<relation> <name>', 'rm <n>' to remove, Enter to continue", "")
		if err != nil {
			return err
		}
		if v == "" {
			return nil
		}

		if n, ok := strings.CutPrefix(v, "rm "); ok {
			i, convErr := strconv.Atoi(strings.TrimSpace(n))
			if convErr != nil || w.RemoveRelative(i-1) != nil {
				fmt.Fprintln(a.out, "No such relative")
			}
			continue
		}

		tag, name, _ := strings.Cut(v, " ")
		if strings.TrimSpace(name) == "" {
			fmt.Fprintln(a.out, "Please enter both the relation and the name")
			continue
		}
		w.AddRelative(strings.ToLower(tag), strings.TrimSpace(name))
	}
}

func (a *App) stepContent(w *draft.Wizard) error {
	d := w.Draft()

	switch d.Type {
	case models.SubmissionWritten:
		if err := a.askTestimony(w); err != nil {
			return err
		}
	case models.SubmissionAudio:
		if err := a.askRecording(media.CategoryAudio, firstNonEmpty(fileName(d.AudioFile), d.ExistingAudioURL), w.SetAudioFile); err != nil {
			return err
		}
	case models.SubmissionVideo:
		if err := a.askRecording(media.CategoryVideo, firstNonEmpty(fileName(d.VideoFile), d.ExistingVideoURL), w.SetVideoFile); err != nil {
			return err
		}
	}

	if err := a.askImages(w); err != nil {
		return err
	}

	current := "no"
	if d.Consent {
		current = "yes"
	}
	v, err := a.ask("Do you consent to the archive publishing this testimony? (yes/no)", current)
	if err != nil {
		return err
	}
	w.SetConsent(strings.HasPrefix(strings.ToLower(v), "y"))
	return nil
}

func (a *App) askTestimony(w *draft.Wizard) error {
	current := w.Draft().Testimony
	v, err := a.ask("Your testimony (:m for several lines)", preview(current))
	if err != nil {
		return err
	}
	switch v {
	case preview(current):
		return nil
	case ":m":
		v, err = getMultiline(a.reader, "Write your testimony", a.out)
		if err != nil {
			return err
		}
	}
	w.SetTestimony(v)
	return nil
}

func (a *App) askRecording(c media.Category, current string, set func(*models.LocalFile)) error {
	for {
		path, err := a.ask(fmt.Sprintf("Path to the %s file", c), current)
		if err != nil {
			return err
		}
		if path == current {
			return nil
		}
		f, ok := a.pickFile(path, c)
		if !ok {
			continue
		}
		set(f)
		return nil
	}
}

func (a *App) askImages(w *draft.Wizard) error {
	for {
		d := w.Draft()
		for i, img := range d.ExistingImages {
			fmt.Fprintf(a.out, "  e%d. %s %s\n", i+1, firstNonEmpty(img.FileName, img.URL), img.Description)
		}
		for i, img := range d.Images {
			fmt.Fprintf(a.out, "  %d. %s %s\n", i+1, fileName(img.File), img.Description)
		}

		v, err := a.ask("Add an image path, 'rm <n>' or 'rm e<n>' to remove, Enter to continue", "")
		if err != nil {
			return err
		}
		if v == "" {
			return nil
		}

		if n, ok := strings.CutPrefix(v, "rm "); ok {
			n = strings.TrimSpace(n)
			remove := w.RemoveImage
			if e, ok := strings.CutPrefix(n, "e"); ok {
				n, remove = e, w.RemoveExistingImage
			}
			i, convErr := strconv.Atoi(n)
			if convErr != nil || remove(i-1) != nil {
				fmt.Fprintln(a.out, "No such image")
			}
			continue
		}

		f, ok := a.pickFile(v, media.CategoryImage)
		if !ok {
			continue
		}
		desc, err := a.ask("Image description (optional)", "")
		if err != nil {
			return err
		}
		w.AddImage(f, desc)
	}
}

// pickFile loads path and checks it against the media policy, printing the
// reason when it cannot be used.
func (a *App) pickFile(path string, c media.Category) (*models.LocalFile, bool) {
	f, err := loadFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot use %s: %v\n", path, err)
		return nil, false
	}
	if r := media.ValidateFor(f, c); !r.IsValid {
		fmt.Fprintln(a.out, r.Error)
		return nil, false
	}
	return f, true
}

func (a *App) stepReview(ctx context.Context, w *draft.Wizard) error {
	d := w.Draft()
	printDraft(a.out, d)

	problems := draft.ValidateForSubmit(d)
	if len(problems) > 0 {
		fmt.Fprintln(a.out, "Before submitting:")
		printProblems(a.out, problems)
	}

	v, err := a.ask("submit, save, edit <step>, back or quit", "")
	if err != nil {
		return err
	}

	cmd, arg, _ := strings.Cut(v, " ")
	switch cmd {
	case "submit":
		t, err := a.submissions.Submit(ctx, w)
		if err != nil {
			a.printSaveError(err)
			return errStay
		}
		fmt.Fprintf(a.out, "Thank you. Your testimony is pending review: show %s\n", slugx.GenerateTestimonySlug(t.ID, t.EventTitle))
		return nil
	case "save":
		return errSave
	case "edit":
		for _, s := range draft.Steps() {
			if s.String() == strings.TrimSpace(arg) {
				_ = w.GoTo(s)
				return errStay
			}
		}
		fmt.Fprintln(a.out, "Unknown step:", arg)
		return errStay
	case "back":
		return errBack
	case "quit":
		return errQuit
	}
	return errStay
}

func (a *App) saveDraft(ctx context.Context, w *draft.Wizard) error {
	t, err := a.submissions.SaveDraft(ctx, w)
	if err != nil {
		a.printSaveError(err)
		return err
	}
	fmt.Fprintf(a.out, "Continue later with: resume %d\n", t.ID)
	return nil
}

// leaveWizard offers to keep unsaved work as a draft.
func (a *App) leaveWizard(ctx context.Context, w *draft.Wizard) error {
	if w.Phase() != draft.PhaseEditing || !w.Draft().Type.Valid() {
		return nil
	}
	keep, err := GetYesNo(a.reader, "Save your changes as a draft?", true, a.out)
	if err != nil || !keep {
		return err
	}
	return a.saveDraft(ctx, w)
}

// printSaveError shows validation problems. Other failures were already
// reported by the services' notifier.
func (a *App) printSaveError(err error) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		printProblems(a.out, vErr.Problems)
	}
}

func fileName(f *models.LocalFile) string {
	if f == nil {
		return ""
	}
	return f.Name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func containsAny(list []string, values ...string) bool {
	for _, s := range list {
		for _, v := range values {
			if s == v {
				return true
			}
		}
	}
	return false
}

// preview shortens long text for a prompt.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 40 {
		return string(r[:40]) + "..."
	}
	return s
}
