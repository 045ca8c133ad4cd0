package main

import (
	"strings"
	"time"
)

type Settings struct {
	Port     int    `env:"PORT,default=8080"`
	BasePath string `env:"BASE_PATH"`

	LogEncoding string `env:"LOG_ENCODING,default=console"`

	HubCapacity              int    `env:"HUB_CAPACITY,default=4"`
	HeartbeatIntervalSeconds int    `env:"HEARTBEAT_INTERVAL_SECONDS,default=10"`
	WriteTimeoutSeconds      int    `env:"WRITE_TIMEOUT_SECONDS,default=10"`
	ReadLimitBytes           int64  `env:"READ_LIMIT_BYTES,default=4096"`
	AllowedOrigins           string `env:"ALLOWED_ORIGINS"`

	TwitchChannels    string `env:"TWITCH_CHANNELS"`
	VoteWindowSeconds int    `env:"VOTE_WINDOW_SECONDS,default=0"`

	MongoDBURI string `env:"MONGODB_URI"`
}

func (s Settings) HeartbeatInterval() time.Duration {
	return time.Duration(s.HeartbeatIntervalSeconds) * time.Second
}

func (s Settings) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

func (s Settings) VoteWindow() time.Duration {
	return time.Duration(s.VoteWindowSeconds) * time.Second
}

func (s Settings) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(s.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return origins
}
