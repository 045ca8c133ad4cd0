package ingest

import (
	"context"
	"strings"

	"github.com/goevery/votechess/internal/broadcaster"
	"go.uber.org/zap"
)

const VoteSentinel = ":"

// Line is one chat line as received from the upstream network.
type Line struct {
	Identity string
	Text     string
}

// Source delivers lines to handle until ctx is done or the upstream
// connection is lost. Reconnecting is left to the caller.
type Source interface {
	Run(ctx context.Context, handle func(Line)) error
}

type Publisher interface {
	Publish(message broadcaster.Message)
}

// ParseVote reports whether text is a vote and returns it without the sentinel.
func ParseVote(text string) (string, bool) {
	return strings.CutPrefix(text, VoteSentinel)
}

// Adapter turns chat lines into VOTE messages on the hub.
type Adapter struct {
	logger    *zap.Logger
	publisher Publisher
	source    Source
}

func NewAdapter(logger *zap.Logger, publisher Publisher, source Source) *Adapter {
	return &Adapter{
		logger:    logger,
		publisher: publisher,
		source:    source,
	}
}

func (a *Adapter) Run(ctx context.Context) error {
	a.logger.Info("ingestion adapter started")

	return a.source.Run(ctx, a.Handle)
}

func (a *Adapter) Handle(line Line) {
	value, ok := ParseVote(line.Text)
	if !ok {
		return
	}

	message := broadcaster.NewVote(value)

	a.logger.Info("publishing vote",
		zap.String("identity", line.Identity),
		zap.Stringer("message", message))

	a.publisher.Publish(message)
}
