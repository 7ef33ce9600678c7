package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tripora-travel/service-booking/internal/application"
	"github.com/tripora-travel/service-booking/internal/events"
	"github.com/tripora-travel/service-booking/pkg/kafka"
)

type MockPaymentConfirmer struct {
	mock.Mock
}

func (m *MockPaymentConfirmer) ConfirmBookingPayment(ctx context.Context, bookingID uuid.UUID, paymentID string) (*application.BookingDTO, error) {
	args := m.Called(ctx, bookingID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.BookingDTO), args.Error(1)
}

func newConsumerForTest(service PaymentConfirmer) *PaymentEventConsumer {
	return &PaymentEventConsumer{service: service, logger: zap.NewNop()}
}

func captureMessage(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("service-payment", eventType, data)
	require.NoError(t, err)
	value, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: events.TopicPaymentEvents, Value: value}
}

func TestHandleMessage_PaymentCapturedConfirmsBooking(t *testing.T) {
	service := new(MockPaymentConfirmer)
	c := newConsumerForTest(service)

	bookingID := uuid.New()
	service.On("ConfirmBookingPayment", mock.Anything, bookingID, "pay_42").
		Return(&application.BookingDTO{ID: bookingID, Status: "confirmed"}, nil)

	msg := captureMessage(t, events.PaymentCaptured, events.PaymentCapturedEvent{
		PaymentID:   "pay_42",
		BookingID:   bookingID,
		AmountCents: 18500,
		Currency:    "USD",
		OccurredAt:  time.Now().UTC(),
	})

	require.NoError(t, c.handleMessage(context.Background(), msg))
	service.AssertExpectations(t)
}

func TestHandleMessage_MalformedEventNotRetried(t *testing.T) {
	service := new(MockPaymentConfirmer)
	c := newConsumerForTest(service)

	msg := kafkago.Message{Topic: events.TopicPaymentEvents, Value: []byte("not json")}

	assert.NoError(t, c.handleMessage(context.Background(), msg))
	service.AssertNotCalled(t, "ConfirmBookingPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMessage_UnknownTypeIgnored(t *testing.T) {
	service := new(MockPaymentConfirmer)
	c := newConsumerForTest(service)

	msg := captureMessage(t, "payment.voided", map[string]string{"payment_id": "pay_9"})

	assert.NoError(t, c.handleMessage(context.Background(), msg))
	service.AssertNotCalled(t, "ConfirmBookingPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMessage_ConfirmFailureIsRetried(t *testing.T) {
	service := new(MockPaymentConfirmer)
	c := newConsumerForTest(service)

	bookingID := uuid.New()
	service.On("ConfirmBookingPayment", mock.Anything, bookingID, "pay_42").
		Return(nil, assert.AnError)

	msg := captureMessage(t, events.PaymentCaptured, events.PaymentCapturedEvent{
		PaymentID: "pay_42",
		BookingID: bookingID,
	})

	assert.Error(t, c.handleMessage(context.Background(), msg))
}
