package kafka

import "github.com/IBM/sarama"

type OutModule struct {
	topic    string
	producer sarama.SyncProducer
}
