package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/membership-service/internal/models"
)

// PublishMessage публикует событие уведомления в RabbitMQ.
// Событие сериализуется в JSON и помечается персистентным,
// чтобы пережить перезапуск брокера.
func PublishMessage(ch *amqp.Channel, exchange, routingkey string, event models.NotificationEvent) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
