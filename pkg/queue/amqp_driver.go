package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rabbitmq/amqp091-go"
)

// AMQPDriver uses a durable RabbitMQ queue. Deliveries are acked as soon as
// they are taken; retries happen inside the worker and final failures land
// in failed_jobs.
type AMQPDriver struct {
	conn  *amqp091.Connection
	queue string

	pubMu sync.Mutex
	pub   *amqp091.Channel

	consumeOnce sync.Once
	consumeErr  error
	sub         *amqp091.Channel
	deliveries  <-chan amqp091.Delivery
}

func NewAMQPDriver(url, queue string) (*AMQPDriver, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue/amqp: dial: %w", err)
	}

	pub, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue/amqp: open channel: %w", err)
	}
	if _, err := pub.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue/amqp: declare %s: %w", queue, err)
	}

	return &AMQPDriver{conn: conn, queue: queue, pub: pub}, nil
}

func (d *AMQPDriver) Push(ctx context.Context, payload []byte) error {
	d.pubMu.Lock()
	defer d.pubMu.Unlock()

	err := d.pub.PublishWithContext(ctx, "", d.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("queue/amqp: publish: %w", err)
	}
	return nil
}

func (d *AMQPDriver) consume() error {
	d.consumeOnce.Do(func() {
		ch, err := d.conn.Channel()
		if err != nil {
			d.consumeErr = fmt.Errorf("queue/amqp: open consume channel: %w", err)
			return
		}
		if err := ch.Qos(10, 0, false); err != nil {
			d.consumeErr = fmt.Errorf("queue/amqp: qos: %w", err)
			return
		}
		msgs, err := ch.Consume(d.queue, "", false, false, false, false, nil)
		if err != nil {
			d.consumeErr = fmt.Errorf("queue/amqp: consume %s: %w", d.queue, err)
			return
		}
		d.sub, d.deliveries = ch, msgs
	})
	return d.consumeErr
}

func (d *AMQPDriver) Pop(ctx context.Context) ([]byte, error) {
	if err := d.consume(); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-d.deliveries:
		if !ok {
			return nil, errDriverClosed
		}
		if err := msg.Ack(false); err != nil {
			return nil, fmt.Errorf("queue/amqp: ack: %w", err)
		}
		return msg.Body, nil
	}
}

func (d *AMQPDriver) Close() error {
	var errs []error
	if d.sub != nil {
		errs = append(errs, d.sub.Close())
	}
	errs = append(errs, d.pub.Close(), d.conn.Close())
	return errors.Join(errs...)
}
