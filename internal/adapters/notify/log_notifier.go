package notify

import (
	"context"
	"log/slog"
	"sort"

	"github.com/PabloGalante/brainbuddy/internal/domain"
	"github.com/PabloGalante/brainbuddy/internal/observability"
)

// LogNotifier renders notifications as structured log events. It stands in
// for a device push service.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier logs through logger, or the global logger when nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, note domain.Notification) error {
	log := n.logger
	if log == nil {
		log = observability.LoggerFromContext(ctx)
	}

	keys := make([]string, 0, len(note.Metadata))
	for k := range note.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, note.Metadata[k]))
	}

	log.Info("notification scheduled",
		"title", note.Title,
		"body", note.Body,
		slog.Group("metadata", attrs...))
	return nil
}
