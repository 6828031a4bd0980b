package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestNewEvent(t *testing.T) {
	start := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	e := NewEvent(ReservationCreated, domain.Reservation{
		ID: "res-1", VehicleID: "v1", RenterID: "r1",
		StartAt: start, EndAt: start.Add(time.Hour), Status: domain.ReservationStatusReserved,
	})
	assert.Equal(t, ReservationCreated, e.Type)
	assert.Equal(t, "v1", e.VehicleID)
	assert.False(t, e.OccurredAt.IsZero())
}

func TestAMQPPublisher_Publish(t *testing.T) {
	e := Event{Type: ReservationCanceled, ReservationID: "res-1", VehicleID: "v1", Status: domain.ReservationStatusCanceled}

	t.Run("Success", func(t *testing.T) {
		ch := &fakeChannel{}
		p := &AMQPPublisher{ch: ch, exchange: "reservations"}

		require.NoError(t, p.Publish(context.Background(), e))
		assert.Equal(t, "reservations", ch.exchange)
		assert.Equal(t, "reservation.canceled", ch.key)
		assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
		assert.Equal(t, "application/json", ch.msg.ContentType)

		var decoded Event
		require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
		assert.Equal(t, "res-1", decoded.ReservationID)
		assert.Equal(t, domain.ReservationStatusCanceled, decoded.Status)

		require.NoError(t, p.Close())
		assert.True(t, ch.closed)
	})

	t.Run("BrokerError", func(t *testing.T) {
		brokerErr := errors.New("channel closed")
		p := &AMQPPublisher{ch: &fakeChannel{err: brokerErr}, exchange: "reservations"}

		err := p.Publish(context.Background(), e)
		assert.ErrorIs(t, err, brokerErr)
	})
}
