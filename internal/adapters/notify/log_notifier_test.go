package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/brainbuddy/internal/adapters/notify"
	"github.com/PabloGalante/brainbuddy/internal/domain"
)

func TestLogNotifierWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := n.Notify(context.Background(), domain.Notification{
		Title:    "Task added",
		Body:     "Buy milk",
		Metadata: map[string]string{"task_id": "t-1", "status": "planned"},
	})
	require.NoError(t, err)

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "notification scheduled", event["msg"])
	assert.Equal(t, "Task added", event["title"])
	assert.Equal(t, "Buy milk", event["body"])
	assert.Equal(t, map[string]any{"task_id": "t-1", "status": "planned"}, event["metadata"])
}
