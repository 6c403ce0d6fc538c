// internal/queue/amqp.go
package queue

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"
)

// AMQPQueue carries payloads over RabbitMQ. Queues are durable and messages
// persistent so a restart never loses a pending campaign run.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func DialAMQP(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &AMQPQueue{conn: conn, ch: ch}, nil
}

func (q *AMQPQueue) Close() {
	q.ch.Close()
	q.conn.Close()
}

func (q *AMQPQueue) declare(topic string) (amqp.Queue, error) {
	return q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	if _, err := q.declare(topic); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return q.ch.Publish("", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Subscribe consumes the topic with manual acks. Failed handlers are
// requeued up to three times via the x-retry-count header, then dropped.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	queue, err := q.declare(topic)
	if err != nil {
		return err
	}

	msgs, err := q.ch.Consume(
		queue.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	republish := func(body []byte, retryCount int) error {
		return q.ch.Publish("", topic, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Headers:      amqp.Table{"x-retry-count": int32(retryCount)},
			Body:         body,
		})
	}

	go func() {
		for d := range msgs {
			dispatch(topic, d, handler, republish)
		}
	}()

	return nil
}

const maxDeliveryAttempts = 3

// dispatch runs the handler for one delivery and settles it. Failed
// handlers are retried by republishing with a bumped x-retry-count so the
// counter advances (a plain Nack would loop the message forever), capped at
// maxDeliveryAttempts. If the republish itself fails, the original delivery
// is Nack'd back onto the queue so a broker hiccup cannot lose the message.
func dispatch(topic string, d amqp.Delivery, handler func(payload any) error, republish func(body []byte, retryCount int) error) {
	var payload map[string]any
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		log.Println("Invalid message on", topic, ":", err)
		d.Ack(false)
		return
	}

	if err := handler(payload); err != nil {
		log.Println("Handler failed on", topic, ":", err)
		retryCount := retriesOf(d)
		if retryCount < maxDeliveryAttempts {
			if pubErr := republish(d.Body, retryCount+1); pubErr != nil {
				log.Println("Failed to requeue message:", pubErr)
				d.Nack(false, true)
				return
			}
		} else {
			log.Printf("Dropping message on %s after %d attempts: %s\n", topic, retryCount, d.Body)
		}
	}

	d.Ack(false)
}

func retriesOf(d amqp.Delivery) int {
	if d.Headers == nil {
		return 0
	}
	if v, ok := d.Headers["x-retry-count"].(int32); ok {
		return int(v)
	}
	if v, ok := d.Headers["x-retry-count"].(int); ok {
		return v
	}
	return 0
}

var _ Queue = (*AMQPQueue)(nil)
