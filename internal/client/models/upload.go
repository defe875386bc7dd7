package models

// ImageUploadResponse is returned by POST /upload/images.
type ImageUploadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	PublicID string `json:"publicId"`
}

// AudioUploadResponse is returned by POST /upload/audio and /upload/video.
type AudioUploadResponse struct {
	URL      string   `json:"url"`
	FileName string   `json:"fileName"`
	Duration *float64 `json:"duration,omitempty"`
	PublicID string   `json:"publicId"`
}

// UploadedImage ties an upload result to the position of its source image
// in Draft.Images, so captions are matched by index and not by order of
// arrival.
type UploadedImage struct {
	Index int
	ImageUploadResponse
}
