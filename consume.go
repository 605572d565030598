package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// deliverMail decodes one queued message and sends it, retrying transient
// relay failures.
func deliverMail(ctx context.Context, body []byte, sender Mailer) error {
	msg := MailMessage{}
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("error unmarshalling message body: %w", err)
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("mail has no recipients")
	}
	_, err := retry(3, func() (any, error) {
		return nil, sender.Send(ctx, msg)
	})
	return err
}

func mailWorker(id int, conn *amqp.Connection, sender Mailer, logger *zap.Logger, wg *sync.WaitGroup) {
	defer wg.Done()
	logger = logger.With(zap.Int("worker_id", id+1))

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("error connecting to rabbitmq channel", zap.Error(err))
		return
	}
	defer ch.Close()

	if err := declareMailQueue(ch); err != nil {
		logger.Error("failed to declare mail queue", zap.Error(err))
		return
	}
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("failed to set qos", zap.Error(err))
		return
	}

	msgs, err := ch.Consume(
		mailQueue, // queue name
		"",        // consumer tag
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		logger.Error("error consuming rabbitmq messages", zap.Error(err))
		return
	}

	for msg := range msgs {
		if err := deliverMail(context.Background(), msg.Body, sender); err != nil {
			logger.Error("mail delivery failed", zap.Error(err))
			_ = msg.Nack(false, false)
			continue
		}
		_ = msg.Ack(false)
	}
	logger.Info("mail worker stopped")
}

// StartMailWorkerPool blocks until every worker's delivery channel closes,
// which happens when conn is closed.
func StartMailWorkerPool(conn *amqp.Connection, sender Mailer, logger *zap.Logger, numWorkers int) {
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := range numWorkers {
		logger.Info("mail worker started", zap.Int("worker_id", i+1))
		go mailWorker(i, conn, sender, logger, &wg)
	}
	wg.Wait()
}
