package ingest

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gempir/go-twitch-irc/v4"
	"github.com/goevery/votechess/internal/ierr"
	"go.uber.org/zap"
)

const disconnectTimeout = 5 * time.Second

var channelNameRegex = regexp.MustCompile(`^\w{1,25}$`)

// TwitchSource reads chat lines from Twitch channels with an anonymous,
// read-only login.
type TwitchSource struct {
	logger   *zap.Logger
	channels []string
}

func NewTwitchSource(logger *zap.Logger, channels []string) *TwitchSource {
	return &TwitchSource{
		logger:   logger,
		channels: channels,
	}
}

// ParseChannels splits a comma separated channel list, dropping blanks. Every
// remaining entry must be a valid chat channel name.
func ParseChannels(list string) ([]string, error) {
	var channels []string
	for _, channel := range strings.Split(list, ",") {
		channel = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(channel), "#"))
		if channel == "" {
			continue
		}

		if !channelNameRegex.MatchString(channel) {
			return nil, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid channel name: "+channel))
		}

		channels = append(channels, channel)
	}

	return channels, nil
}

func (s *TwitchSource) Run(ctx context.Context, handle func(Line)) error {
	if len(s.channels) == 0 {
		return errors.New("no twitch channels configured")
	}

	client := twitch.NewAnonymousClient()
	client.OnConnect(func() {
		s.logger.Info("connected to twitch chat", zap.Strings("channels", s.channels))
	})
	client.OnPrivateMessage(func(message twitch.PrivateMessage) {
		handle(Line{
			Identity: message.User.Name,
			Text:     message.Message,
		})
	})
	client.Join(s.channels...)

	connectErr := make(chan error, 1)
	go func() {
		connectErr <- client.Connect()
	}()

	select {
	case <-ctx.Done():
		if err := client.Disconnect(); err != nil {
			s.logger.Warn("failed to disconnect from twitch chat", zap.Error(err))
		}

		select {
		case <-connectErr:
		case <-time.After(disconnectTimeout):
			s.logger.Warn("twitch client did not stop in time")
		}

		return ctx.Err()
	case err := <-connectErr:
		return err
	}
}
