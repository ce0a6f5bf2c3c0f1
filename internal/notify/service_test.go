package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelab/orderd/internal/orders"
)

// stubQueue implements orders.Queue in memory.
type stubQueue struct {
	jobs   []orders.NotificationJob
	marked map[string]orders.JobStatus
}

func newStubQueue(jobs ...orders.NotificationJob) *stubQueue {
	return &stubQueue{jobs: jobs, marked: map[string]orders.JobStatus{}}
}

func (q *stubQueue) ClaimPending(ctx context.Context, limit int) ([]orders.NotificationJob, error) {
	var out []orders.NotificationJob
	for _, j := range q.jobs {
		if len(out) == limit {
			break
		}
		if _, done := q.marked[j.ID]; !done {
			out = append(out, j)
		}
	}
	return out, nil
}

func (q *stubQueue) MarkJob(ctx context.Context, jobID string, status orders.JobStatus) error {
	q.marked[jobID] = status
	return nil
}

// stubSender fails for addresses listed in failFor.
type stubSender struct {
	sent    []string
	failFor map[string]bool
}

func (s *stubSender) Send(ctx context.Context, address, subject, body string) error {
	if s.failFor[address] {
		return errors.New("transport down")
	}
	s.sent = append(s.sent, address)
	return nil
}

func job(id, orderID, recipient string, total int) orders.NotificationJob {
	payload, _ := json.Marshal(orders.NotificationPayload{
		OrderID:      orderID,
		CustomerName: "Test Customer",
		TotalCents:   total,
	})
	return orders.NotificationJob{
		ID:        id,
		OrderID:   orderID,
		Recipient: recipient,
		Payload:   payload,
		Status:    orders.JobPending,
	}
}

func TestDrain_OneFailureDoesNotBlockBatch(t *testing.T) {
	q := newStubQueue(
		job("j1", "o1", "a@example.com", 1300),
		job("j2", "o2", "broken@example.com", 500),
		job("j3", "o3", "c@example.com", 700),
	)
	snd := &stubSender{failFor: map[string]bool{"broken@example.com": true}}
	svc := &Service{Queue: q, Sender: snd, Batch: 10}

	out, err := svc.Drain(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, orders.JobSent, q.marked["j1"])
	assert.Equal(t, orders.JobError, q.marked["j2"])
	assert.Equal(t, orders.JobSent, q.marked["j3"])
	assert.Equal(t, []string{"a@example.com", "c@example.com"}, snd.sent)

	for _, o := range out {
		if o.JobID == "j2" {
			assert.Error(t, o.Err)
		} else {
			assert.NoError(t, o.Err)
		}
	}
}

func TestDrain_RespectsBatchSize(t *testing.T) {
	var jobs []orders.NotificationJob
	for i := 0; i < 15; i++ {
		jobs = append(jobs, job(fmt.Sprintf("j%d", i), fmt.Sprintf("o%d", i), "a@example.com", 100))
	}
	q := newStubQueue(jobs...)
	snd := &stubSender{}
	svc := &Service{Queue: q, Sender: snd, Batch: 10}

	out, err := svc.Drain(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 10)
	assert.Len(t, q.marked, 10)

	// a second pass picks up the remainder
	out, err = svc.Drain(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 5)
	assert.Len(t, q.marked, 15)
}

func TestDrain_EmptyQueue(t *testing.T) {
	svc := &Service{Queue: newStubQueue(), Sender: &stubSender{}, Batch: 10}
	out, err := svc.Drain(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDrain_UndecodablePayloadMarkedError(t *testing.T) {
	q := newStubQueue(orders.NotificationJob{
		ID: "bad", OrderID: "o1", Recipient: "a@example.com",
		Payload: []byte(`{`), Status: orders.JobPending,
	})
	snd := &stubSender{}
	svc := &Service{Queue: q, Sender: snd, Batch: 10}

	out, err := svc.Drain(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, orders.JobError, q.marked["bad"])
	assert.Empty(t, snd.sent)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "13.00", FormatCents(1300))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "1.23", FormatCents(123))
}
