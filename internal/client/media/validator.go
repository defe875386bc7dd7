// Package media checks files picked for a testimony against the per-category
// type and size policy before any upload starts.
package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
)

// Category is the kind of media a file is uploaded as.
type Category string

const (
	CategoryImage Category = "image"
	CategoryAudio Category = "audio"
	CategoryVideo Category = "video"
)

const bytesPerMB = 1024 * 1024

// Limit is the upload policy for one category.
type Limit struct {
	AllowedTypes []string
	MaxSizeMB    int
}

// MaxBytes is MaxSizeMB in bytes.
func (l Limit) MaxBytes() int64 {
	return int64(l.MaxSizeMB) * bytesPerMB
}

// limits is the single size/type table used by both the validator and the
// uploader's pre-flight check.
var limits = map[Category]Limit{
	CategoryImage: {
		AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/heic"},
		MaxSizeMB:    5,
	},
	CategoryAudio: {
		AllowedTypes: []string{"audio/*"},
		MaxSizeMB:    50,
	},
	CategoryVideo: {
		AllowedTypes: []string{"video/*"},
		MaxSizeMB:    100,
	},
}

// extensionTypes infers a MIME type when the declared one is missing or wrong.
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
}

// Limits returns the policy for c. Unknown categories get a zero Limit,
// which rejects everything.
func Limits(c Category) Limit {
	return limits[c]
}

// CategoryFor maps the media-bearing submission types to their category.
func CategoryFor(t models.SubmissionType) (Category, bool) {
	switch t {
	case models.SubmissionAudio:
		return CategoryAudio, true
	case models.SubmissionVideo:
		return CategoryVideo, true
	}
	return "", false
}

// Result is the outcome of a validation. Error is empty when IsValid.
type Result struct {
	IsValid bool
	Error   string
}

func invalid(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// ValidateFile checks size first, then type. The type passes when either the
// declared MIME type or the one inferred from the extension matches one of
// allowedTypes; "type/*" patterns match any subtype.
func ValidateFile(file *models.LocalFile, allowedTypes []string, maxSizeMB int) Result {
	if file == nil {
		return invalid("No file selected")
	}
	if file.Size > int64(maxSizeMB)*bytesPerMB {
		return invalid("File %q is too large. Maximum size is %dMB", file.Name, maxSizeMB)
	}

	declared := normalizeType(file.ContentType)
	inferred := extensionTypes[strings.ToLower(filepath.Ext(file.Name))]

	if matchesAny(declared, allowedTypes) || matchesAny(inferred, allowedTypes) {
		return Result{IsValid: true}
	}
	return invalid("File %q has an unsupported type. Allowed types: %s", file.Name, strings.Join(allowedTypes, ", "))
}

// ValidateFor applies the category policy from Limits.
func ValidateFor(file *models.LocalFile, c Category) Result {
	l := Limits(c)
	return ValidateFile(file, l.AllowedTypes, l.MaxSizeMB)
}

func normalizeType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

func matchesAny(mimeType string, patterns []string) bool {
	if mimeType == "" {
		return false
	}
	for _, p := range patterns {
		if matches(mimeType, normalizeType(p)) {
			return true
		}
	}
	return false
}

func matches(mimeType, pattern string) bool {
	if pattern == "*/*" || pattern == mimeType {
		return true
	}
	prefix, ok := strings.CutSuffix(pattern, "/*")
	if !ok {
		return false
	}
	major, _, _ := strings.Cut(mimeType, "/")
	return major == prefix
}
