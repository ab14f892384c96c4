package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/telemetry"
	infraTelemetry "github.com/NeuralTrust/TrustRedTeam/pkg/infra/telemetry"
	"github.com/confluentinc/confluent-kafka-go/kafka"
)

const (
	ExporterName   = "kafka"
	flushTimeoutMs = 5000
)

type Config struct {
	Host  string `mapstructure:"host"`
	Port  string `mapstructure:"port"`
	Topic string `mapstructure:"topic"`
}

// Producer is the part of *kafka.Producer the exporter uses.
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

type ProducerFactory func(cfg *kafka.ConfigMap) (Producer, error)

type Exporter struct {
	cfg         Config
	producer    Producer
	newProducer ProducerFactory
}

func NewKafkaExporter() *Exporter {
	return NewKafkaExporterWithFactory(func(cfg *kafka.ConfigMap) (Producer, error) {
		return kafka.NewProducer(cfg)
	})
}

func NewKafkaExporterWithFactory(factory ProducerFactory) *Exporter {
	return &Exporter{newProducer: factory}
}

func (p *Exporter) Name() string {
	return ExporterName
}

func (p *Exporter) ValidateConfig(settings map[string]interface{}) error {
	var conf Config
	if err := infraTelemetry.DecodeSettings(settings, &conf); err != nil {
		return fmt.Errorf("invalid kafka config: %w", err)
	}
	if conf.Host == "" {
		return errors.New("kafka host is required")
	}
	if conf.Port == "" {
		return errors.New("kafka port is required")
	}
	if conf.Topic == "" {
		return errors.New("kafka topic is required")
	}
	return nil
}

func (p *Exporter) WithSettings(settings map[string]interface{}) (telemetry.Exporter, error) {
	var conf Config
	if err := infraTelemetry.DecodeSettings(settings, &conf); err != nil {
		return nil, fmt.Errorf("invalid kafka config: %w", err)
	}
	producer, err := p.newProducer(&kafka.ConfigMap{
		"bootstrap.servers": fmt.Sprintf("%s:%s", conf.Host, conf.Port),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Exporter{
		cfg:         conf,
		producer:    producer,
		newProducer: p.newProducer,
	}, nil
}

func (p *Exporter) Handle(ctx context.Context, report *telemetry.RunReport) error {
	if p.producer == nil {
		return errors.New("kafka producer is not initialized")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	// buffered so a late delivery report never blocks the producer
	deliveryChan := make(chan kafka.Event, 1)
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.cfg.Topic, Partition: kafka.PartitionAny},
		Key:            []byte(report.RunID),
		Value:          data,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event: %v", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("delivery not confirmed: %w", ctx.Err())
	}
}

func (p *Exporter) Close() {
	if p.producer != nil {
		p.producer.Flush(flushTimeoutMs)
		p.producer.Close()
	}
}
