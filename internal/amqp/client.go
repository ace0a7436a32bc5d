// Package amqp carries the duplicate-review workflow over RabbitMQ:
// near-duplicate groups go out for confirmation, confirmed resolutions
// come back for the worker to apply.
package amqp

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "bilancio/internal/log"
)

type Client struct {
	conn            *amqp091.Connection
	channel         *amqp091.Channel
	exchangeName    string
	reviewQueue     string
	resolutionQueue string
	log             *applog.Logger
}

func NewClient(url, exchangeName, reviewQueue, resolutionQueue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:            conn,
		channel:         channel,
		exchangeName:    exchangeName,
		reviewQueue:     reviewQueue,
		resolutionQueue: resolutionQueue,
		log:             applog.Default(applog.ComponentAMQP),
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, queue := range []string{c.reviewQueue, c.resolutionQueue} {
		_, err = c.channel.QueueDeclare(
			queue, // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}

		err = c.channel.QueueBind(
			queue,          // queue name
			queue,          // routing key (same as queue name for direct exchange)
			c.exchangeName, // exchange
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	return nil
}

// PublishReviewRequest sends a near-duplicate group out for manual review.
func (c *Client) PublishReviewRequest(ctx context.Context, msg *ReviewRequestMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal review request: %w", err)
	}
	if err := c.publish(ctx, c.reviewQueue, body); err != nil {
		return err
	}

	c.log.InfoContext(ctx, "Published review request",
		"group_date", msg.GroupDate,
		"group_amount", msg.GroupAmount,
		"transactions", len(msg.TransactionIDs),
		applog.FieldQueue, c.reviewQueue)

	return nil
}

// PublishResolution sends a confirmed deletion decision to the worker.
func (c *Client) PublishResolution(ctx context.Context, msg *ResolutionMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal resolution: %w", err)
	}
	if err := c.publish(ctx, c.resolutionQueue, body); err != nil {
		return err
	}

	c.log.InfoContext(ctx, "Published resolution",
		"remove_ids", len(msg.RemoveIDs),
		"confirmed", msg.Confirmed,
		applog.FieldQueue, c.resolutionQueue)

	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// ConsumeResolutions delivers confirmed resolution messages to handler
// until ctx is done. Handler failures nack with requeue; malformed
// payloads are dropped.
func (c *Client) ConsumeResolutions(ctx context.Context, handler func(context.Context, *ResolutionMessage) error) error {
	msgs, err := c.channel.Consume(
		c.resolutionQueue, // queue
		"",                // consumer
		false,             // auto-ack (we want manual ack)
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.log.InfoContext(ctx, "Started consuming resolutions", applog.FieldQueue, c.resolutionQueue)

	for {
		select {
		case <-ctx.Done():
			c.log.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := ResolutionMessageFromJSON(delivery.Body)
			if err != nil {
				c.log.ErrorContext(ctx, "Failed to unmarshal resolution", applog.FieldError, err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := handler(ctx, msg); err != nil {
				c.log.ErrorContext(ctx, "Failed to handle resolution",
					applog.FieldError, err,
					"remove_ids", len(msg.RemoveIDs))
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
