package transform

import (
	"strings"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
)

// ToAPIRequest builds the JSON request for a draft whose media is already
// uploaded. Existing images come first, then the new uploads with the
// caption of the draft image at the same index. Blank scalars are left out.
func ToAPIRequest(d *models.Draft, images []models.UploadedImage, audio, video *models.AudioUploadResponse, isDraft bool) *models.CreateOrUpdateTestimonyRequest {
	req := &models.CreateOrUpdateTestimonyRequest{
		SubmissionType:     d.Type,
		IdentityPreference: d.Identity,
		FullName:           strings.TrimSpace(d.FullName),
		RelationToEvent:    strings.TrimSpace(d.RelationToEvent),
		Location:           strings.TrimSpace(d.Location),
		DateOfEventFrom:    strings.TrimSpace(d.DateOfEventFrom),
		DateOfEventTo:      strings.TrimSpace(d.DateOfEventTo),
		EventTitle:         strings.TrimSpace(d.EventTitle),
		TestimonyText:      strings.TrimSpace(d.Testimony),
		IsDraft:            isDraft,
	}

	if rels := RelativesToAPI(d.Relatives); len(rels) > 0 {
		req.Relatives = rels
	}

	req.Images = append(req.Images, d.ExistingImages...)
	for _, img := range images {
		rec := models.ImageRecord{URL: img.URL, FileName: img.FileName, PublicID: img.PublicID}
		if img.Index >= 0 && img.Index < len(d.Images) {
			rec.Description = strings.TrimSpace(d.Images[img.Index].Description)
		}
		req.Images = append(req.Images, rec)
	}
	if len(req.Images) == 0 {
		req.Images = nil
	}

	switch {
	case audio != nil:
		req.AudioURL, req.AudioDuration = audio.URL, audio.Duration
	case d.ExistingAudioURL != "":
		req.AudioURL = d.ExistingAudioURL
	}
	switch {
	case video != nil:
		req.VideoURL, req.VideoDuration = video.URL, video.Duration
	case d.ExistingVideoURL != "":
		req.VideoURL = d.ExistingVideoURL
	}

	if d.Consent {
		consent := true
		req.Consent = &consent
	}
	return req
}
