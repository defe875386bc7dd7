package transform

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/filex"
)

// Multipart field names.
const (
	FieldRelatives         = "relatives"
	FieldImageDescriptions = "imageDescriptions"
	FieldImages            = "images"
	FieldAudio             = "audio"
	FieldVideo             = "video"
)

// BuildTestimonyFormData streams d as a multipart form: scalar fields,
// relatives and image captions as JSON strings, and the raw files. The
// returned reader must be consumed or closed.
func BuildTestimonyFormData(d *models.Draft, isDraft bool) (io.ReadCloser, string, error) {
	relatives, err := json.Marshal(RelativesToAPI(d.Relatives))
	if err != nil {
		return nil, "", fmt.Errorf("encode relatives: %w", err)
	}

	descriptions := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		descriptions = append(descriptions, strings.TrimSpace(img.Description))
	}
	descJSON, err := json.Marshal(descriptions)
	if err != nil {
		return nil, "", fmt.Errorf("encode image descriptions: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeForm(mw, d, isDraft, relatives, descJSON)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType(), nil
}

func writeForm(mw *multipart.Writer, d *models.Draft, isDraft bool, relatives, descriptions []byte) error {
	fields := []struct{ name, value string }{
		{"submissionType", string(d.Type)},
		{"identityPreference", string(d.Identity)},
		{"fullName", d.FullName},
		{"relationToEvent", d.RelationToEvent},
		{"location", d.Location},
		{"dateOfEventFrom", d.DateOfEventFrom},
		{"dateOfEventTo", d.DateOfEventTo},
		{"eventTitle", d.EventTitle},
		{"testimonyText", d.Testimony},
		{"isDraft", strconv.FormatBool(isDraft)},
	}
	if d.Consent {
		fields = append(fields, struct{ name, value string }{"consent", "true"})
	}
	if len(d.Relatives) > 0 {
		fields = append(fields, struct{ name, value string }{FieldRelatives, string(relatives)})
	}
	if len(d.Images) > 0 {
		fields = append(fields, struct{ name, value string }{FieldImageDescriptions, string(descriptions)})
	}

	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		if err := mw.WriteField(f.name, v); err != nil {
			return fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	for _, img := range d.Images {
		if err := filex.WriteFormFile(mw, FieldImages, img.File); err != nil {
			return err
		}
	}
	if d.AudioFile != nil {
		if err := filex.WriteFormFile(mw, FieldAudio, d.AudioFile); err != nil {
			return err
		}
	}
	if d.VideoFile != nil {
		if err := filex.WriteFormFile(mw, FieldVideo, d.VideoFile); err != nil {
			return err
		}
	}
	return nil
}
