package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/queueease/utils"
)

const auditQueueName = "queueease.events.audit"

type Handler func(ev Event) error

// StartConsumer mengikat audit queue ke semua event lalu memanggil handler per pesan.
// Loop reconnect berjalan sampai ctx selesai.
func StartConsumer(ctx context.Context, url, exchange string, handle Handler) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			utils.ErrorLogger.Printf("event-consumer: dial failed: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, exchange, handle)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		utils.ErrorLogger.Printf("event-consumer: consume loop ended: %v; reconnecting", err)
		time.Sleep(2 * time.Second)
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, exchange string, handle Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declareTopology(ch, exchange); err != nil {
		return err
	}
	if err := ch.Qos(50, 0, false); err != nil {
		utils.ErrorLogger.Printf("event-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(auditQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(auditQueueName, "#", exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(auditQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := dispatch(d.Body, handle); err != nil {
				utils.ErrorLogger.Printf("event-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func dispatch(body []byte, handle Handler) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return handle(ev)
}

// LogHandler menulis setiap event sebagai baris log terstruktur.
func LogHandler(ev Event) error {
	fields := logrus.Fields{
		"event":         ev.Type,
		"restaurant_id": ev.RestaurantID,
		"occurred_at":   ev.OccurredAt.Format(time.RFC3339),
	}
	if ev.QueueNo != "" {
		fields["queue_no"] = ev.QueueNo
	}
	if ev.OrderID != 0 {
		fields["order_id"] = ev.OrderID
	}
	if ev.Status != "" {
		fields["status"] = ev.Status
	}
	if ev.TableID != nil {
		fields["table_id"] = *ev.TableID
	}
	utils.InfoLogger.WithFields(fields).Info("domain event")
	return nil
}
