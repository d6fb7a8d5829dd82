package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ipfee/pkg/protocol"
	"net/netip"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestNewOutput_Disabled(t *testing.T) {
	mod, err := NewOutput(nil, "events", 0)
	if err != nil || mod != nil {
		t.Fatalf("expected nil module and nil error, got %v %v", mod, err)
	}
	n, err := mod.Write(context.Background(), protocol.Received{})
	if n != 0 || err != nil {
		t.Fatalf("expected no-op write, got %d %v", n, err)
	}

	_, err = NewOutput([]string{"127.0.0.1:9092"}, "", 0)
	if err == nil {
		t.Fatalf("expected error without topic")
	}
}

func TestWrite(t *testing.T) {
	var sig protocol.Signature
	sig[5] = 0xAB
	rec := protocol.Received{
		Event:    protocol.UserTx{IP: netip.MustParseAddr("198.51.100.20"), Signature: sig},
		Remote:   "10.1.1.1:5000",
		Received: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	producer := mocks.NewSyncProducer(t, producerConfig(0))
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) (err error) {
		var got protocol.JReceived
		err = json.Unmarshal(val, &got)
		if err != nil {
			return
		}
		if got.Type != protocol.TypeUserTx || got.IP != "198.51.100.20" || got.Remote != rec.Remote {
			err = fmt.Errorf("unexpected payload %s", val)
		}
		return
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	mod := newWithProducer(producer, "ipfee-events")

	n, err := mod.Write(context.Background(), rec)
	if err != nil {
		t.Fatalf("expected no error, got '%v'", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 event sent, got %d", n)
	}

	n, err = mod.Write(context.Background(), rec)
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected broker error, got '%v'", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 events sent on failure, got %d", n)
	}

	if err = mod.Shutdown(); err != nil {
		t.Fatalf("expected clean shutdown, got '%v'", err)
	}
}

func TestMessage(t *testing.T) {
	var sig protocol.Signature
	sig[0] = 0x01
	rec := protocol.Received{
		Event:    protocol.Fee{Signature: sig, CULimit: 10, CUUsed: 9, Fee: 8},
		Received: time.Unix(1700000000, 0),
	}

	mod := &OutModule{topic: "fees"}
	msg, err := mod.message(rec)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if msg.Topic != "fees" {
		t.Errorf("expected topic fees, got %s", msg.Topic)
	}
	key, err := msg.Key.Encode()
	if err != nil || string(key) != sig.String() {
		t.Errorf("expected key %s, got %s (%v)", sig, key, err)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != protocol.TypeFee {
		t.Errorf("unexpected headers %v", msg.Headers)
	}
	if !msg.Timestamp.Equal(rec.Received) {
		t.Errorf("expected timestamp %v, got %v", rec.Received, msg.Timestamp)
	}

	_, err = mod.message(protocol.Received{})
	if err == nil {
		t.Fatalf("expected error for record without event")
	}
}
