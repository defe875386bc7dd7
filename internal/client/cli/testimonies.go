package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/draft"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/transform"
	"github.com/dmitrijs2005/testimonykeeper/internal/slugx"
)

// Drafts lists the user's saved drafts.
func (a *App) Drafts(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Log in to see your drafts")
		return nil
	}

	drafts := a.testimonies.GetDrafts(ctx)
	if len(drafts) == 0 {
		fmt.Fprintln(a.out, "No drafts")
		return nil
	}
	for _, t := range drafts {
		fmt.Fprintf(a.out, "#%d  %-8s %s (updated %s)\n", t.ID, t.SubmissionType, firstNonEmpty(t.EventTitle, "untitled"), t.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(a.out, "Continue one with: resume <id>")
	return nil
}

// Resume reopens a saved draft in the wizard.
func (a *App) Resume(ctx context.Context, arg string) error {
	id, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid draft id %q", arg)
	}

	return a.RequireAuth(ctx, func(ctx context.Context) error {
		t, err := a.testimonies.Get(ctx, id)
		if err != nil {
			return err
		}
		if !t.IsDraft {
			fmt.Fprintf(a.out, "Testimony %d was already submitted\n", id)
			return nil
		}
		return a.runWizard(ctx, draft.Hydrate(t))
	})
}

// Show prints one testimony addressed by slug or id.
func (a *App) Show(ctx context.Context, arg string) error {
	t, err := a.testimonies.GetBySlug(ctx, arg)
	if err != nil {
		return err
	}
	printTestimony(a.out, t)
	return nil
}

// List prints one page of published testimonies. arg is the 1-based page.
func (a *App) List(ctx context.Context, arg string) error {
	page := 1
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid page %q", arg)
		}
		page = n
	}

	p, err := a.testimonies.List(ctx, models.TestimonyFilter{Page: models.PageFor(page, models.DefaultPageSize)})
	if err != nil {
		return err
	}
	if len(p.Items) == 0 {
		fmt.Fprintln(a.out, "No testimonies")
		return nil
	}
	for _, t := range p.Items {
		fmt.Fprintf(a.out, "%-40s %-8s %s\n", slugx.GenerateTestimonySlug(t.ID, t.EventTitle), t.SubmissionType, author(&t))
	}
	fmt.Fprintf(a.out, "Page %d of %d (%d testimonies)\n", page, models.TotalPages(p.Total, models.DefaultPageSize), p.Total)
	return nil
}

func author(t *models.Testimony) string {
	if t.IdentityPreference == models.IdentityAnonymous || t.FullName == "" {
		return "Anonymous"
	}
	return t.FullName
}

func printTestimony(w io.Writer, t *models.Testimony) {
	fmt.Fprintf(w, "%s\n%s\n", t.EventTitle, strings.Repeat("=", len([]rune(t.EventTitle))))
	fmt.Fprintf(w, "By %s, %s\n", author(t), t.RelationToEvent)
	fmt.Fprintf(w, "%s, %s\n", t.Location, dateRange(t.DateOfEventFrom, t.DateOfEventTo))
	if len(t.Relatives) > 0 {
		fmt.Fprintln(w, "In memory of:")
		for _, r := range transform.RelativesFromAPI(t.Relatives) {
			fmt.Fprintf(w, "  %s (%s)\n", r.Name, r.Value)
		}
	}
	if t.TestimonyText != "" {
		fmt.Fprintf(w, "\n%s\n\n", t.TestimonyText)
	}
	if t.AudioURL != "" {
		fmt.Fprintf(w, "Audio: %s%s\n", t.AudioURL, duration(t.AudioDuration))
	}
	if t.VideoURL != "" {
		fmt.Fprintf(w, "Video: %s%s\n", t.VideoURL, duration(t.VideoDuration))
	}
	for _, img := range t.Images {
		fmt.Fprintf(w, "Image: %s %s\n", img.URL, img.Description)
	}
	if t.Summary != "" {
		fmt.Fprintf(w, "Summary: %s\n", t.Summary)
	}
	for _, c := range t.Connections {
		fmt.Fprintf(w, "Related: %s\n", slugx.GenerateTestimonySlug(c.TestimonyID, c.Title))
	}
}

// printDraft summarizes the wizard state on the review step.
func printDraft(w io.Writer, d *models.Draft) {
	fmt.Fprintf(w, "Type:      %s\n", d.Type)
	fmt.Fprintf(w, "Identity:  %s\n", d.Identity)
	fmt.Fprintf(w, "Name:      %s\n", d.FullName)
	fmt.Fprintf(w, "Relation:  %s\n", d.RelationToEvent)
	fmt.Fprintf(w, "Location:  %s\n", d.Location)
	fmt.Fprintf(w, "Dates:     %s\n", dateRange(d.DateOfEventFrom, d.DateOfEventTo))
	fmt.Fprintf(w, "Title:     %s\n", d.EventTitle)
	for _, r := range d.Relatives {
		fmt.Fprintf(w, "Relative:  %s (%s)\n", r.Name, r.Value)
	}
	switch d.Type {
	case models.SubmissionWritten:
		fmt.Fprintf(w, "Testimony: %s\n", preview(d.Testimony))
	case models.SubmissionAudio:
		fmt.Fprintf(w, "Audio:     %s\n", firstNonEmpty(fileName(d.AudioFile), d.ExistingAudioURL))
	case models.SubmissionVideo:
		fmt.Fprintf(w, "Video:     %s\n", firstNonEmpty(fileName(d.VideoFile), d.ExistingVideoURL))
	}
	fmt.Fprintf(w, "Images:    %d\n", len(d.ExistingImages)+len(d.Images))
	fmt.Fprintf(w, "Consent:   %t\n", d.Consent)
}

func printProblems(w io.Writer, problems []string) {
	for _, p := range problems {
		fmt.Fprintf(w, "  - %s\n", p)
	}
}

func dateRange(from, to string) string {
	from, to = draft.NormalizeDate(from), draft.NormalizeDate(to)
	if from == to || to == "" {
		return from
	}
	return from + " to " + to
}

func duration(seconds *float64) string {
	if seconds == nil {
		return ""
	}
	return fmt.Sprintf(" (%d:%02d)", int(*seconds)/60, int(*seconds)%60)
}
