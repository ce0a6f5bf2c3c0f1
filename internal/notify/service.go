package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/storelab/orderd/internal/orders"
	"github.com/storelab/orderd/internal/redisx"
)

// Service drains the durable notification queue. It is driven two ways: an
// order.paid event wakes it promptly, and a ticker in the worker binary
// sweeps anything the event path missed. Both paths end in Drain, so queue
// correctness never depends on Kafka delivery.
type Service struct {
	Queue       orders.Queue
	Sender      Sender
	Redis       *redis.Client
	ServiceName string
	Batch       int
}

// Outcome is the per-job result of one drain pass.
type Outcome struct {
	JobID   string
	OrderID string
	Status  orders.JobStatus
	Err     error
}

// Drain claims up to Batch pending jobs and attempts delivery for each
// independently. A failed delivery marks that job error and never blocks or
// rolls back the rest of the batch.
func (s *Service) Drain(ctx context.Context) ([]Outcome, error) {
	batch := s.Batch
	if batch <= 0 {
		batch = 10
	}
	jobs, err := s.Queue.ClaimPending(ctx, batch)
	if err != nil {
		return nil, err
	}

	out := make([]Outcome, 0, len(jobs))
	for _, j := range jobs {
		res := Outcome{JobID: j.ID, OrderID: j.OrderID}
		if err := s.deliver(ctx, j); err != nil {
			res.Status = orders.JobError
			res.Err = err
			log.Printf("notify: job %s for order %s failed: %v", j.ID, j.OrderID, err)
		} else {
			res.Status = orders.JobSent
		}
		if err := s.Queue.MarkJob(ctx, j.ID, res.Status); err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *Service) deliver(ctx context.Context, j orders.NotificationJob) error {
	var p orders.NotificationPayload
	if err := json.Unmarshal(j.Payload, &p); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	subject := fmt.Sprintf("Order %s confirmed", p.OrderID)
	body := fmt.Sprintf("Hi %s,\n\nwe received your payment of %s for order %s. We are getting it ready for shipment.\n",
		p.CustomerName, FormatCents(p.TotalCents), p.OrderID)
	return s.Sender.Send(ctx, j.Recipient, subject, body)
}

// HandleOrderPaid is the Kafka consumer handler: dedup the event, then drain.
func (s *Service) HandleOrderPaid(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPaid {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	_, err := s.Drain(ctx)
	return err
}

// FormatCents renders minor units for the message body, e.g. 1300 -> "13.00".
func FormatCents(c int) string {
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}
