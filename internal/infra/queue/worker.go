package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/pecapital-crm/internal/entity"
	"github.com/xavierca1/pecapital-crm/internal/storage"
)

type EmailSender interface {
	Send(to, subject, htmlBody string) error
}

// Worker consumes lead.captured events and fires the first template of every
// active lead_capture sequence. Later templates are record-keeping only; there
// is no scheduler honoring day_delay.
type Worker struct {
	Channel *amqp.Channel
	Store   storage.Storage
	Mailer  EmailSender // nil when SMTP is not configured
}

func NewWorker(ch *amqp.Channel, store storage.Storage, mailer EmailSender) *Worker {
	return &Worker{Channel: ch, Store: store, Mailer: mailer}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("failed to register consumer: %s", err)
	}

	for d := range msgs {
		var payload LeadCapturedPayload
		if err := json.Unmarshal(d.Body, &payload); err != nil {
			log.Printf("[worker] bad message, dropping to DLQ: %s", err)
			d.Nack(false, false)
			continue
		}

		if err := w.processLeadCaptured(context.Background(), payload); err != nil {
			log.Printf("[worker] lead %s: %s", payload.LeadID, err)
			d.Nack(false, false)
			continue
		}

		d.Ack(false)
	}
}

func (w *Worker) processLeadCaptured(ctx context.Context, payload LeadCapturedPayload) error {
	sequences, err := w.Store.GetActiveSequencesByTrigger(ctx, entity.TriggerLeadCapture)
	if err != nil {
		return err
	}

	for _, seq := range sequences {
		templates, err := w.Store.GetEmailTemplatesBySequence(ctx, seq.ID)
		if err != nil {
			return err
		}
		if len(templates) == 0 {
			continue
		}

		first := templates[0]

		send, err := entity.NewEmailSend(first.ID, payload.LeadID, "")
		if err != nil {
			return err
		}

		if w.Mailer != nil {
			if err := w.Mailer.Send(payload.Email, first.Subject, first.Content); err != nil {
				log.Printf("[worker] smtp delivery failed for %s: %s", payload.Email, err)
				send.Status = entity.EmailSendStatusFailed
			}
		}

		if err := w.Store.CreateEmailSend(ctx, send); err != nil {
			return err
		}

		log.Printf("[worker] sequence %q template %q recorded for lead %s (status %s)",
			seq.Name, first.Name, payload.LeadID, send.Status)
	}

	return nil
}
