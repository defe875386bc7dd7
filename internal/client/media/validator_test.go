package media

import (
	"strconv"
	"testing"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func file(name, ct string, size int64) *models.LocalFile {
	return &models.LocalFile{Name: name, ContentType: ct, Size: size}
}

func TestValidateFile_SizeOverLimitIsRejected(t *testing.T) {
	for _, c := range []Category{CategoryImage, CategoryAudio, CategoryVideo} {
		l := Limits(c)
		f := file("big.bin", "application/octet-stream", l.MaxBytes()+1)

		res := ValidateFile(f, l.AllowedTypes, l.MaxSizeMB)

		assert.False(t, res.IsValid, c)
		assert.Contains(t, res.Error, "MB", c)
		assert.Containsf(t, res.Error, strconv.Itoa(l.MaxSizeMB), "%s error must name the limit", c)
	}
}

func TestValidateFile_ExactLimitIsAccepted(t *testing.T) {
	l := Limits(CategoryImage)
	res := ValidateFile(file("a.png", "image/png", l.MaxBytes()), l.AllowedTypes, l.MaxSizeMB)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Error)
}

func TestValidateFile_ExtensionFallback(t *testing.T) {
	tests := []struct {
		name     string
		file     *models.LocalFile
		category Category
	}{
		{"missing mime image", file("photo.JPG", "", 100), CategoryImage},
		{"generic mime audio", file("voice.m4a", "application/octet-stream", 100), CategoryAudio},
		{"wrong mime video", file("clip.mov", "text/plain", 100), CategoryVideo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateFor(tt.file, tt.category)
			assert.True(t, res.IsValid, res.Error)
		})
	}
}

func TestValidateFile_TypeMismatch(t *testing.T) {
	res := ValidateFor(file("notes.txt", "text/plain", 10), CategoryImage)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Error, "image/jpeg")

	res = ValidateFor(file("song.mp3", "audio/mpeg", 10), CategoryVideo)
	assert.False(t, res.IsValid)
}

func TestValidateFile_WildcardAndParameters(t *testing.T) {
	res := ValidateFile(file("x", "audio/webm; codecs=opus", 1), []string{"audio/*"}, 1)
	assert.True(t, res.IsValid)

	res = ValidateFile(file("x", "IMAGE/PNG", 1), []string{"image/png"}, 1)
	assert.True(t, res.IsValid)

	res = ValidateFile(file("x", "anything/else", 1), []string{"*/*"}, 1)
	assert.True(t, res.IsValid)

	res = ValidateFile(file("x", "audiox/foo", 1), []string{"audio/*"}, 1)
	assert.False(t, res.IsValid)
}

func TestValidateFile_NilFile(t *testing.T) {
	res := ValidateFile(nil, []string{"image/*"}, 5)
	assert.False(t, res.IsValid)
	assert.NotEmpty(t, res.Error)
}

func TestLimits_SingleSourceOfTruth(t *testing.T) {
	assert.Equal(t, 5, Limits(CategoryImage).MaxSizeMB)
	assert.Equal(t, 50, Limits(CategoryAudio).MaxSizeMB)
	assert.Equal(t, 100, Limits(CategoryVideo).MaxSizeMB)
	assert.Equal(t, Limit{}, Limits("document"))
}

func TestCategoryFor(t *testing.T) {
	c, ok := CategoryFor(models.SubmissionAudio)
	assert.True(t, ok)
	assert.Equal(t, CategoryAudio, c)

	c, ok = CategoryFor(models.SubmissionVideo)
	assert.True(t, ok)
	assert.Equal(t, CategoryVideo, c)

	_, ok = CategoryFor(models.SubmissionWritten)
	assert.False(t, ok)
}
