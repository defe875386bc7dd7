package models

import (
	"io"
)

// LocalFile is a file picked by the user for upload. Open may be called more
// than once so a retried request can resend the body.
type LocalFile struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// DraftRelative is a relative as entered in the wizard: a tag such as
// "mother" and the person's name.
type DraftRelative struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

// DraftImage is a new image with its caption.
type DraftImage struct {
	File        *LocalFile
	Description string
}

// Draft is the working, not yet submitted testimony.
type Draft struct {
	// ID is the server id of a resumed draft, 0 for a fresh one.
	ID int

	Type            SubmissionType
	Identity        Identity
	FullName        string
	RelationToEvent string
	Location        string
	EventTitle      string
	Testimony       string
	DateOfEventFrom string
	DateOfEventTo   string

	Relatives      []DraftRelative
	Images         []DraftImage
	ExistingImages []ImageRecord

	AudioFile *LocalFile
	VideoFile *LocalFile

	// ExistingAudioURL and ExistingVideoURL keep media uploaded by an
	// earlier save of the same draft.
	ExistingAudioURL string
	ExistingVideoURL string

	Consent bool
}
