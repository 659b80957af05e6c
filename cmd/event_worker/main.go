package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cohesia-portal/config"
	"github.com/oksasatya/cohesia-portal/internal/worker"
	"github.com/oksasatya/cohesia-portal/pkg/helpers"
	"github.com/oksasatya/cohesia-portal/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	proc := &worker.Processor{
		IndexName: cfg.ESEventsIndex,
		NotifyTo:  cfg.HRNotifyEmail,
		AppName:   cfg.AppName,
		Logger:    logger,
	}
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		proc.Indexer = worker.ESIndexer{Client: es}
	} else {
		logger.Warn("ELASTICSEARCH_ADDRS empty; events will not be indexed")
	}
	if cfg.MailSendEnabled && cfg.MailgunConfigured() {
		proc.Notifier = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else {
		logger.Info("HR notices disabled (MAIL_SEND_ENABLED=false or Mailgun not configured)")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEventQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQEventQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{
		"queue":    cfg.RabbitMQEventQueue,
		"index":    proc.IndexName,
		"notifies": proc.Notifier != nil,
	}).Info("event worker listening")
	proc.Run(ctx, msgs)
	logger.Info("event worker stopped")
}
