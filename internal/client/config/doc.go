// Package config loads runtime configuration for the testimony CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: TESTIMONY_API_URL, TESTIMONY_LOG_LEVEL,
//     TESTIMONY_REDIS_ADDR and TESTIMONY_DATA_DIR, optionally read from a
//     dotenv file given with -e or -env (".env" is tried otherwise).
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the testimony API
//	-i int      online status check interval (seconds)
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.example.org",
//	  "online_check_interval": "3s",
//	  "video_upload_timeout": "10m",
//	  "redis_addr": "127.0.0.1:6379",
//	  "inline_media": false
//	}
package config
