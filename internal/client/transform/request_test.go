package transform

import (
	"testing"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/filex"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullDraft() *models.Draft {
	return &models.Draft{
		Type:            models.SubmissionWritten,
		Identity:        models.IdentityPublic,
		FullName:        " Ada Lovelace ",
		RelationToEvent: "Witness",
		Location:        "London",
		DateOfEventFrom: "2024-01-01",
		DateOfEventTo:   "2024-02-01",
		EventTitle:      "The winter",
		Testimony:       "It snowed.",
		Relatives:       []models.DraftRelative{{Value: "mother", Name: "Anne"}},
		Images: []models.DraftImage{
			{File: filex.FromBytes("a.png", "image/png", []byte("a")), Description: "first"},
			{File: filex.FromBytes("b.png", "image/png", []byte("b")), Description: "second"},
			{File: filex.FromBytes("c.png", "image/png", []byte("c")), Description: " third "},
		},
		ExistingImages: []models.ImageRecord{{URL: "https://cdn/old.png", Description: "old"}},
		Consent:        true,
	}
}

func TestToAPIRequest_ImagesMatchedByIndex(t *testing.T) {
	d := fullDraft()
	uploaded := []models.UploadedImage{
		{Index: 0, ImageUploadResponse: models.ImageUploadResponse{URL: "u0", FileName: "a.png"}},
		{Index: 2, ImageUploadResponse: models.ImageUploadResponse{URL: "u2", FileName: "c.png", PublicID: "p2"}},
	}

	req := ToAPIRequest(d, uploaded, nil, nil, false)

	want := []models.ImageRecord{
		{URL: "https://cdn/old.png", Description: "old"},
		{URL: "u0", FileName: "a.png", Description: "first"},
		{URL: "u2", FileName: "c.png", PublicID: "p2", Description: "third"},
	}
	if diff := cmp.Diff(want, req.Images); diff != "" {
		t.Errorf("images mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Ada Lovelace", req.FullName)
	assert.Equal(t, []models.Relative{{RelativeTypeID: 12, PersonName: "Anne"}}, req.Relatives)
	require.NotNil(t, req.Consent)
	assert.True(t, *req.Consent)
	assert.False(t, req.IsDraft)
}

func TestToAPIRequest_OmitsBlanks(t *testing.T) {
	d := &models.Draft{Type: models.SubmissionAudio, Location: "   "}
	req := ToAPIRequest(d, nil, nil, nil, true)

	assert.Equal(t, &models.CreateOrUpdateTestimonyRequest{
		SubmissionType: models.SubmissionAudio,
		IsDraft:        true,
	}, req)
}

func TestToAPIRequest_Media(t *testing.T) {
	dur := 12.5
	d := &models.Draft{Type: models.SubmissionAudio, ExistingVideoURL: "https://cdn/v.mp4"}

	req := ToAPIRequest(d, nil, &models.AudioUploadResponse{URL: "https://cdn/a.mp3", Duration: &dur}, nil, true)
	assert.Equal(t, "https://cdn/a.mp3", req.AudioURL)
	assert.Equal(t, &dur, req.AudioDuration)
	assert.Equal(t, "https://cdn/v.mp4", req.VideoURL)

	d.ExistingAudioURL = "https://cdn/old.mp3"
	req = ToAPIRequest(d, nil, nil, nil, true)
	assert.Equal(t, "https://cdn/old.mp3", req.AudioURL)
	assert.Nil(t, req.AudioDuration)
}
