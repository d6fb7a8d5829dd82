package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"ipfee/pkg/protocol"

	"github.com/IBM/sarama"
)

// Publishes received event as JSON keyed by transaction signature
func (mod *OutModule) Write(ctx context.Context, rec protocol.Received) (eventsSent int, err error) {
	if mod == nil {
		return
	}

	msg, err := mod.message(rec)
	if err != nil {
		return
	}

	_, _, err = mod.producer.SendMessage(msg)
	if err != nil {
		err = fmt.Errorf("kafka publish failed: %w", err)
		return
	}
	eventsSent = 1
	return
}

func (mod *OutModule) message(rec protocol.Received) (msg *sarama.ProducerMessage, err error) {
	jRecord, err := rec.ToJSON()
	if err != nil {
		return
	}
	value, err := json.Marshal(jRecord)
	if err != nil {
		return
	}

	msg = &sarama.ProducerMessage{
		Topic: mod.topic,
		Key:   sarama.StringEncoder(jRecord.Signature),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(jRecord.Type)},
		},
		Timestamp: rec.Received,
	}
	return
}

// Gracefully stops module
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	if mod.producer != nil {
		err = mod.producer.Close()
	}
	return
}
