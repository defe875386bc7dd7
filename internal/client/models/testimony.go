// Package models defines the testimony domain types shared by the client
// layers: the working draft, the server-owned testimony, upload results and
// the wire request.
package models

import "time"

// SubmissionType is the media modality of a testimony.
type SubmissionType string

const (
	SubmissionWritten SubmissionType = "written"
	SubmissionAudio   SubmissionType = "audio"
	SubmissionVideo   SubmissionType = "video"
)

// Valid reports whether t is one of the known submission types.
func (t SubmissionType) Valid() bool {
	switch t {
	case SubmissionWritten, SubmissionAudio, SubmissionVideo:
		return true
	}
	return false
}

// Identity is whether a published testimony shows the author's name.
type Identity string

const (
	IdentityPublic    Identity = "public"
	IdentityAnonymous Identity = "anonymous"
)

func (i Identity) Valid() bool {
	return i == IdentityPublic || i == IdentityAnonymous
}

// Status is the moderation state assigned by the server.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ImageRecord is an image already stored by the server.
type ImageRecord struct {
	URL         string `json:"url"`
	FileName    string `json:"fileName,omitempty"`
	Description string `json:"description,omitempty"`
	PublicID    string `json:"publicId,omitempty"`
}

// RelativeType is the server-side description of a relative tag.
type RelativeType struct {
	ID  int    `json:"id"`
	Key string `json:"key"`
}

// Relative is the wire shape of a named relative.
type Relative struct {
	RelativeTypeID int           `json:"relativeTypeId"`
	PersonName     string        `json:"personName"`
	Order          int           `json:"order"`
	RelativeType   *RelativeType `json:"relativeType,omitempty"`
}

// Connection is an AI-derived link to another testimony. Rendered only.
type Connection struct {
	TestimonyID int     `json:"testimonyId"`
	Title       string  `json:"title"`
	Score       float64 `json:"score"`
}

// Testimony is the canonical server record.
type Testimony struct {
	ID                 int            `json:"id"`
	SubmissionType     SubmissionType `json:"submissionType"`
	IdentityPreference Identity       `json:"identityPreference"`
	FullName           string         `json:"fullName"`
	RelationToEvent    string         `json:"relationToEvent"`
	Location           string         `json:"location"`
	DateOfEventFrom    string         `json:"dateOfEventFrom,omitempty"`
	DateOfEventTo      string         `json:"dateOfEventTo,omitempty"`
	EventTitle         string         `json:"eventTitle"`
	TestimonyText      string         `json:"testimonyText,omitempty"`
	Relatives          []Relative     `json:"relatives,omitempty"`
	Images             []ImageRecord  `json:"images,omitempty"`
	AudioURL           string         `json:"audioUrl,omitempty"`
	AudioDuration      *float64       `json:"audioDuration,omitempty"`
	VideoURL           string         `json:"videoUrl,omitempty"`
	VideoDuration      *float64       `json:"videoDuration,omitempty"`
	Status             Status         `json:"status"`
	IsPublished        bool           `json:"isPublished"`
	IsDraft            bool           `json:"isDraft"`
	Impressions        int            `json:"impressions"`
	Consent            bool           `json:"consent"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	Connections        []Connection   `json:"connections,omitempty"`
	Transcript         string         `json:"transcript,omitempty"`
	Summary            string         `json:"summary,omitempty"`
}

// CreateOrUpdateTestimonyRequest is the JSON body for POST /testimonies and
// PATCH /testimonies/:id. Optional fields are omitted when unset so a partial
// update never blanks a server value.
type CreateOrUpdateTestimonyRequest struct {
	SubmissionType     SubmissionType `json:"submissionType,omitempty"`
	IdentityPreference Identity       `json:"identityPreference,omitempty"`
	FullName           string         `json:"fullName,omitempty"`
	RelationToEvent    string         `json:"relationToEvent,omitempty"`
	Location           string         `json:"location,omitempty"`
	DateOfEventFrom    string         `json:"dateOfEventFrom,omitempty"`
	DateOfEventTo      string         `json:"dateOfEventTo,omitempty"`
	EventTitle         string         `json:"eventTitle,omitempty"`
	TestimonyText      string         `json:"testimonyText,omitempty"`
	Relatives          []Relative     `json:"relatives,omitempty"`
	Images             []ImageRecord  `json:"images,omitempty"`
	AudioURL           string         `json:"audioUrl,omitempty"`
	AudioDuration      *float64       `json:"audioDuration,omitempty"`
	VideoURL           string         `json:"videoUrl,omitempty"`
	VideoDuration      *float64       `json:"videoDuration,omitempty"`
	Consent            *bool          `json:"consent,omitempty"`
	IsDraft            bool           `json:"isDraft"`
}
