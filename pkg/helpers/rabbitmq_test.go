package helpers

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/event"
)

func TestJSONPublishing(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	msg, err := jsonPublishing(map[string]string{"to": "john@example.com"}, now)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, now.UTC(), msg.Timestamp)
	assert.NotEmpty(t, msg.MessageId)
	assert.Empty(t, msg.Type)
	assert.JSONEq(t, `{"to":"john@example.com"}`, string(msg.Body))
}

func TestJSONPublishing_EventType(t *testing.T) {
	evt := event.NewUserCreated("u-1", "john@example.com", "John Doe", "USER")

	msg, err := jsonPublishing(evt, time.Now())
	require.NoError(t, err)
	assert.Equal(t, event.TypeUserCreated, msg.Type)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "u-1", decoded["aggregate_id"])
}

func TestJSONPublishing_Unencodable(t *testing.T) {
	_, err := jsonPublishing(map[string]any{"ch": make(chan int)}, time.Now())
	assert.Error(t, err)
}
