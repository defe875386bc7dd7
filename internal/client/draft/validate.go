package draft

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
)

// DateLayout is the wire format of event dates.
const DateLayout = "2006-01-02"

const (
	MsgType       = "Please select a submission type"
	MsgIdentity   = "Please choose how you want to be identified"
	MsgFullName   = "Please enter your full name"
	MsgRelation   = "Please describe your relation to the event"
	MsgLocation   = "Please enter the location of the event"
	MsgDateFrom   = "Please enter the start date of the event"
	MsgDateTo     = "Please enter the end date of the event"
	MsgDateFormat = "Dates must use the YYYY-MM-DD format"
	MsgDateOrder  = "The start date must be on or before the end date"
	MsgEventTitle = "Please enter a title for the event"
	MsgTestimony  = "Please write your testimony"
	MsgAudio      = "Please add an audio recording"
	MsgVideo      = "Please add a video recording"
	MsgConsent    = "You must give consent before submitting your testimony"
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateFormData lists what is missing or inconsistent in d. The result
// is advisory; consent is not checked here.
func ValidateFormData(d *models.Draft) []string {
	var errs []string

	if !d.Type.Valid() {
		errs = append(errs, MsgType)
	}
	if !d.Identity.Valid() {
		errs = append(errs, MsgIdentity)
	}
	if blank(d.FullName) {
		errs = append(errs, MsgFullName)
	}
	if blank(d.RelationToEvent) {
		errs = append(errs, MsgRelation)
	}
	if blank(d.Location) {
		errs = append(errs, MsgLocation)
	}
	if blank(d.DateOfEventFrom) {
		errs = append(errs, MsgDateFrom)
	}
	if blank(d.DateOfEventTo) {
		errs = append(errs, MsgDateTo)
	}
	errs = append(errs, validateDateRange(d)...)
	if blank(d.EventTitle) {
		errs = append(errs, MsgEventTitle)
	}

	switch d.Type {
	case models.SubmissionWritten:
		if blank(d.Testimony) {
			errs = append(errs, MsgTestimony)
		}
	case models.SubmissionAudio:
		if d.AudioFile == nil && d.ExistingAudioURL == "" {
			errs = append(errs, MsgAudio)
		}
	case models.SubmissionVideo:
		if d.VideoFile == nil && d.ExistingVideoURL == "" {
			errs = append(errs, MsgVideo)
		}
	}
	return errs
}

// ValidateForSubmit is ValidateFormData plus consent.
func ValidateForSubmit(d *models.Draft) []string {
	errs := ValidateFormData(d)
	if !d.Consent {
		errs = append(errs, MsgConsent)
	}
	return errs
}

// ValidateForDraft only requires a type and a well-formed date range, so
// an unfinished testimony can be saved.
func ValidateForDraft(d *models.Draft) []string {
	var errs []string
	if !d.Type.Valid() {
		errs = append(errs, MsgType)
	}
	return append(errs, validateDateRange(d)...)
}

// validateDateRange checks the dates that are present.
func validateDateRange(d *models.Draft) []string {
	from, fromErr := parseDate(d.DateOfEventFrom)
	to, toErr := parseDate(d.DateOfEventTo)
	if fromErr != nil || toErr != nil {
		return []string{MsgDateFormat}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return []string{MsgDateOrder}
	}
	return nil
}

// parseDate returns the zero time for a blank value.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, s)
}

// NormalizeDate turns a server timestamp into DateLayout. Values that are
// neither are returned unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(DateLayout, s); err == nil {
		return s
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(DateLayout)
	}
	return s
}
