package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/optica-core/internal/application/ports"
	"github.com/jhoicas/optica-core/internal/infrastructure/kafka"
)

var topics = kafka.Topics{Transfers: "stock.transfers", Caisse: "caisse.events"}

func newMockProducer(t *testing.T) *mocks.SyncProducer {
	t.Helper()
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	return mocks.NewSyncProducer(t, cfg)
}

func TestPublishTransfer_SerializaEvento(t *testing.T) {
	producer := newMockProducer(t)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got map[string]any
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got["event_type"] != ports.EventTransferShipped || got["transfer_number"] != "TR-20261014-ABCDEF12" {
			return errors.New("payload inesperado")
		}
		if got["quantity"] != "4" {
			return errors.New("cantidad inesperada")
		}
		return nil
	})

	pub := kafka.NewPublisherWithProducer(producer, topics, nil)
	err := pub.PublishTransfer(context.Background(), ports.TransferEvent{
		EventID:        "evt-1",
		EventType:      ports.EventTransferShipped,
		TransferID:     "t-1",
		TransferNumber: "TR-20261014-ABCDEF12",
		Status:         "SHIPPED",
		Quantity:       decimal.NewFromInt(4),
		Timestamp:      time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestPublishCash_ErrorDelBroker(t *testing.T) {
	producer := newMockProducer(t)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := kafka.NewPublisherWithProducer(producer, topics, nil)
	err := pub.PublishCash(context.Background(), ports.CashEvent{
		EventID: "evt-2", EventType: ports.EventCashSessionClosed, SessionID: "s-1",
	})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}
