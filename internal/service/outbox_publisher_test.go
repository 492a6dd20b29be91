package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/repository"
	"go-medical-booking/internal/testutil"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func seedEvent(t *testing.T, p *OutboxPublisher, eventType string) *entity.OutboxEvent {
	t.Helper()
	appt := &entity.Appointment{ID: uuid.New(), BookingCode: "BK-1", PatientID: uuid.New(), DoctorID: uuid.New()}
	event := entity.NewAppointmentEvent(eventType, appt)
	require.NoError(t, p.outboxRepo.Create(p.db, event))
	return event
}

func eventType(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishBatchSendsAndMarks(t *testing.T) {
	db := testutil.NewDB(t)
	writer := &fakeWriter{}
	p := NewOutboxPublisherWithWriter(db, testutil.NewLogger(), repository.NewOutboxRepository(), writer, "", time.Second, 10)

	booked := seedEvent(t, p, entity.EventAppointmentBooked)
	seedEvent(t, p, entity.EventAppointmentCancelled)

	n, err := p.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, writer.msgs, 2)
	var sent *kafka.Message
	for i := range writer.msgs {
		assert.Equal(t, DefaultTopic, writer.msgs[i].Topic)
		if eventType(writer.msgs[i]) == entity.EventAppointmentBooked {
			sent = &writer.msgs[i]
		}
	}
	require.NotNil(t, sent)
	assert.Equal(t, booked.AggregateID.String(), string(sent.Key))
	assert.Contains(t, string(sent.Value), `"booking_code":"BK-1"`)

	n, err = p.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "published events are not sent again")
}

func TestPublishBatchKeepsEventsOnWriteFailure(t *testing.T) {
	db := testutil.NewDB(t)
	writer := &fakeWriter{err: errors.New("broker down")}
	p := NewOutboxPublisherWithWriter(db, testutil.NewLogger(), repository.NewOutboxRepository(), writer, "", time.Second, 10)
	seedEvent(t, p, entity.EventAppointmentPaid)

	_, err := p.PublishBatch(context.Background())
	require.Error(t, err)

	writer.err = nil
	n, err := p.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEventsOfOneAppointmentShareTopicAndKey(t *testing.T) {
	db := testutil.NewDB(t)
	writer := &fakeWriter{}
	p := NewOutboxPublisherWithWriter(db, testutil.NewLogger(), repository.NewOutboxRepository(), writer, "clinic.appointments", time.Second, 10)

	appt := &entity.Appointment{ID: uuid.New(), BookingCode: "BK-2", PatientID: uuid.New(), DoctorID: uuid.New()}
	base := time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)
	for i, kind := range []string{entity.EventAppointmentBooked, entity.EventAppointmentPaid, entity.EventAppointmentCancelled} {
		event := entity.NewAppointmentEvent(kind, appt)
		event.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, p.outboxRepo.Create(db, event))
	}

	_, err := p.PublishBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, writer.msgs, 3)

	var kinds []string
	for _, msg := range writer.msgs {
		assert.Equal(t, "clinic.appointments", msg.Topic)
		assert.Equal(t, appt.ID.String(), string(msg.Key))
		kinds = append(kinds, eventType(msg))
	}
	assert.Equal(t, []string{entity.EventAppointmentBooked, entity.EventAppointmentPaid, entity.EventAppointmentCancelled}, kinds)
}

func TestDisabledPublisher(t *testing.T) {
	p := NewOutboxPublisherWithWriter(nil, testutil.NewLogger(), nil, nil, "", 0, 0)
	assert.False(t, p.Enabled())

	n, err := p.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	p.Run(context.Background())
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, SplitBrokers(" kafka-1:9092, ,kafka-2:9092 "))
	assert.Empty(t, SplitBrokers(""))
}
