package kafka

import (
	"fmt"
	"ipfee/internal/global"
	"time"

	"github.com/IBM/sarama"
)

// Creates new kafka output module. Returns nil nil if no brokers.
func NewOutput(brokers []string, topic string, timeout time.Duration) (module *OutModule, err error) {
	if len(brokers) == 0 {
		return
	}
	if topic == "" {
		err = fmt.Errorf("kafka output requires a topic")
		return
	}

	producer, err := sarama.NewSyncProducer(brokers, producerConfig(timeout))
	if err != nil {
		err = fmt.Errorf("failed connection to kafka brokers: %w", err)
		return
	}

	module = newWithProducer(producer, topic)
	return
}

func newWithProducer(producer sarama.SyncProducer, topic string) (module *OutModule) {
	module = &OutModule{
		topic:    topic,
		producer: producer,
	}
	return
}

func producerConfig(timeout time.Duration) (cfg *sarama.Config) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	cfg = sarama.NewConfig()
	cfg.ClientID = global.ProgBaseName
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Timeout = timeout
	cfg.Net.DialTimeout = timeout
	// Same signature always lands on the same partition
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	return
}
