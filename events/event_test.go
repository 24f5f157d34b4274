package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queueease/utils"
)

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, Event) error { return f.err }

func TestMultiPublishesToAll(t *testing.T) {
	first, second := &Recorder{}, &Recorder{}
	boom := errors.New("broker down")
	m := Multi{first, nil, failingPublisher{err: boom}, second}

	err := m.Publish(context.Background(), Event{Type: QueueCreated, RestaurantID: 1})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{QueueCreated}, first.Types())
	assert.Equal(t, []string{QueueCreated}, second.Types())
}

func TestDispatchAndLogHandler(t *testing.T) {
	utils.InitLogger()
	var buf bytes.Buffer
	utils.InfoLogger.SetOutput(&buf)
	utils.InfoLogger.SetFormatter(&logrus.JSONFormatter{})

	tableID := uint(4)
	body, err := json.Marshal(Event{
		Type:         QueueStatusChanged,
		RestaurantID: 2,
		QueueNo:      "AB-1410",
		Status:       "SERVING",
		TableID:      &tableID,
		OccurredAt:   time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, dispatch(body, LogHandler))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, QueueStatusChanged, line["event"])
	assert.Equal(t, "AB-1410", line["queue_no"])
	assert.Equal(t, float64(4), line["table_id"])

	assert.Error(t, dispatch([]byte("{"), LogHandler))
}
