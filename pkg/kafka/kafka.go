package kafka

import (
	"github.com/IBM/sarama"
)

type Config struct {
	Addrs   []string `yaml:"addrs" envconfig:"KAFKA_ADDRS"`
	Topic   string   `yaml:"topic" envconfig:"KAFKA_TOPIC" default:"reservation-events"`
	Enabled bool     `yaml:"enabled" envconfig:"KAFKA_ENABLED"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}
