package transform

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/filex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formPart struct {
	fileName string
	data     string
}

func readForm(t *testing.T, body io.Reader, contentType string) (map[string]string, map[string][]formPart) {
	t.Helper()
	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)

	fields := map[string]string{}
	files := map[string][]formPart{}

	mr := multipart.NewReader(body, params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p)
		require.NoError(t, err)
		if p.FileName() != "" {
			files[p.FormName()] = append(files[p.FormName()], formPart{p.FileName(), string(data)})
			continue
		}
		fields[p.FormName()] = string(data)
	}
	return fields, files
}

func TestBuildTestimonyFormData(t *testing.T) {
	d := fullDraft()
	d.Location = ""

	body, ct, err := BuildTestimonyFormData(d, true)
	require.NoError(t, err)
	defer body.Close()

	fields, files := readForm(t, body, ct)

	assert.Equal(t, "written", fields["submissionType"])
	assert.Equal(t, "Ada Lovelace", fields["fullName"])
	assert.Equal(t, "true", fields["isDraft"])
	assert.Equal(t, "true", fields["consent"])
	assert.NotContains(t, fields, "location")

	var rels []models.Relative
	require.NoError(t, json.Unmarshal([]byte(fields[FieldRelatives]), &rels))
	assert.Equal(t, []models.Relative{{RelativeTypeID: 12, PersonName: "Anne"}}, rels)

	var desc []string
	require.NoError(t, json.Unmarshal([]byte(fields[FieldImageDescriptions]), &desc))
	assert.Equal(t, []string{"first", "second", "third"}, desc)

	require.Len(t, files[FieldImages], 3)
	assert.Equal(t, formPart{"b.png", "b"}, files[FieldImages][1])
	assert.Empty(t, files[FieldAudio])
}

func TestBuildTestimonyFormData_MinimalDraft(t *testing.T) {
	d := &models.Draft{
		Type:      models.SubmissionVideo,
		VideoFile: filex.FromBytes("clip.mp4", "video/mp4", []byte("mp4")),
	}

	body, ct, err := BuildTestimonyFormData(d, false)
	require.NoError(t, err)
	defer body.Close()

	fields, files := readForm(t, body, ct)
	assert.Equal(t, map[string]string{"submissionType": "video", "isDraft": "false"}, fields)
	assert.Equal(t, []formPart{{"clip.mp4", "mp4"}}, files[FieldVideo])
}
