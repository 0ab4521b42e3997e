package notifications

import (
	"context"
	"fmt"
	"sync"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"
)

const (
	TransportKafka    = "kafka"
	TransportRabbitMQ = "rabbitmq"
	TransportSMTP     = "smtp"
	TransportLog      = "log"
)

// Service owns the configured transport: the Notifier producers write to and,
// for queued transports, the consumer that performs delivery.
type Service struct {
	cfg      config.NotificationConfig
	log      *logger.Logger
	notifier Notifier

	kafkaProducer *KafkaNotificationProducer
	kafkaConsumer *KafkaNotificationConsumer
	rabbitPub     *RabbitNotificationPublisher
	rabbitCons    *RabbitNotificationConsumer

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
}

// NewService wires the transport named by cfg.Transport.
func NewService(cfg config.NotificationConfig, log *logger.Logger) (*Service, error) {
	log = log.WithComponent("notifications")
	s := &Service{cfg: cfg, log: log}

	sender, err := s.deliverySender()
	if err != nil {
		return nil, err
	}

	switch cfg.Transport {
	case TransportKafka:
		pcfg := DefaultKafkaProducerConfig()
		pcfg.Brokers = cfg.KafkaBrokers
		pcfg.NotificationTopic = cfg.KafkaTopic
		if cfg.SendTimeout > 0 {
			pcfg.Timeout = cfg.SendTimeout
		}
		producer, err := NewKafkaNotificationProducer(pcfg, log)
		if err != nil {
			return nil, err
		}

		ccfg := DefaultConsumerConfig()
		ccfg.Brokers = cfg.KafkaBrokers
		ccfg.Topics = []string{cfg.KafkaTopic}
		ccfg.GroupID = cfg.KafkaConsumerGroup
		ccfg.MaxRetries = cfg.MaxRetries
		consumer, err := NewKafkaNotificationConsumer(ccfg, sender, log)
		if err != nil {
			_ = producer.Close()
			return nil, err
		}
		s.kafkaProducer, s.kafkaConsumer, s.notifier = producer, consumer, producer

	case TransportRabbitMQ:
		pub, err := NewRabbitNotificationPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			return nil, err
		}
		s.rabbitPub = pub
		s.rabbitCons = NewRabbitNotificationConsumer(cfg.RabbitURL, cfg.RabbitQueue, sender, cfg.MaxRetries, DefaultConsumerConfig().RetryBackoffDuration, log)
		s.notifier = pub

	case TransportSMTP, TransportLog, "":
		s.notifier = sender

	default:
		return nil, fmt.Errorf("unknown notification transport %q", cfg.Transport)
	}

	log.Info("notification transport ready", "transport", cfg.Transport)
	return s, nil
}

// deliverySender is where emails finally go: SMTP when a host is configured,
// otherwise the logging mock.
func (s *Service) deliverySender() (Notifier, error) {
	if s.cfg.Transport == TransportLog || s.cfg.Email.SMTPHost == "" {
		if s.cfg.Transport == TransportSMTP {
			return nil, fmt.Errorf("smtp transport selected but SMTP_HOST is empty")
		}
		return NewMockEmailService(s.log), nil
	}
	return NewSMTPEmailService(NewSMTPConfig(s.cfg.Email), s.log)
}

// Notifier returns the producer-side Notifier for the Dispatcher.
func (s *Service) Notifier() Notifier {
	return s.notifier
}

// Start launches the consumer side, if any.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	if s.kafkaConsumer != nil {
		s.kafkaConsumer.Start(ctx, s.cfg.KafkaWorkers)
	}
	if s.rabbitCons != nil {
		s.rabbitCons.Start(ctx)
	}
	s.isRunning = true
}

// Stop shuts down consumers then producers.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if s.isRunning {
		s.cancel()
		if s.kafkaConsumer != nil {
			record(s.kafkaConsumer.Stop())
		}
		if s.rabbitCons != nil {
			record(s.rabbitCons.Stop())
		}
		s.isRunning = false
	}
	if s.kafkaProducer != nil {
		record(s.kafkaProducer.Close())
	}
	if s.rabbitPub != nil {
		record(s.rabbitPub.Close())
	}
	return firstErr
}
