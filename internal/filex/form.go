package filex

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// WriteFormFile copies file into a new part of mw under field, keeping the
// file's own content type instead of the application/octet-stream default
// of multipart.Writer.CreateFormFile.
func WriteFormFile(mw *multipart.Writer, field string, file *models.LocalFile) error {
	if file == nil || file.Open == nil {
		return fmt.Errorf("form field %s: no file", field)
	}

	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", field, err)
	}

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("copy %s: %w", file.Name, err)
	}
	return nil
}

// FromBytes wraps in-memory content as a LocalFile.
func FromBytes(name, contentType string, data []byte) *models.LocalFile {
	return &models.LocalFile{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
