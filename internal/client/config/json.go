package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/flagx"
	"github.com/dmitrijs2005/testimonykeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL          string         `json:"api_base_url"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	SubmitTimeout       timex.Duration `json:"submit_timeout"`
	ImageUploadTimeout  timex.Duration `json:"image_upload_timeout"`
	AudioUploadTimeout  timex.Duration `json:"audio_upload_timeout"`
	VideoUploadTimeout  timex.Duration `json:"video_upload_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SessionTTL          timex.Duration `json:"session_ttl"`
	DataDir             string         `json:"data_dir"`
	LogLevel            string         `json:"log_level"`
	RedisAddr           string         `json:"redis_addr"`
	CacheTTL            timex.Duration `json:"cache_ttl"`
	InlineMedia         *bool          `json:"inline_media"`
	UploadConcurrency   int            `json:"upload_concurrency"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Fields absent from the file keep their current value.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	overlay(&cfg.APIBaseURL, jc.APIBaseURL)
	overlay(&cfg.DataDir, jc.DataDir)
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.RedisAddr, jc.RedisAddr)

	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.SubmitTimeout, jc.SubmitTimeout)
	setDuration(&cfg.ImageUploadTimeout, jc.ImageUploadTimeout)
	setDuration(&cfg.AudioUploadTimeout, jc.AudioUploadTimeout)
	setDuration(&cfg.VideoUploadTimeout, jc.VideoUploadTimeout)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.SessionTTL, jc.SessionTTL)
	setDuration(&cfg.CacheTTL, jc.CacheTTL)

	if jc.InlineMedia != nil {
		cfg.InlineMedia = *jc.InlineMedia
	}
	if jc.UploadConcurrency > 0 {
		cfg.UploadConcurrency = jc.UploadConcurrency
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
