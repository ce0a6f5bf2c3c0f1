package orders

import "context"

// ClaimPending picks the oldest pending jobs up to limit. Jobs stay pending
// until marked, so a crashed drainer loses nothing; delivery is at-least-once
// and MarkJob's status guard makes the terminal write win-once.
func (r *Repo) ClaimPending(ctx context.Context, limit int) ([]NotificationJob, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, recipient, payload, status, created_at
		FROM notification_jobs
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NotificationJob
	for rows.Next() {
		var j NotificationJob
		if err := rows.Scan(&j.ID, &j.OrderID, &j.Recipient, &j.Payload, &j.Status, &j.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// MarkJob records the per-job outcome. Jobs already out of pending stay
// untouched; sent and error are terminal and never revisited here.
func (r *Repo) MarkJob(ctx context.Context, jobID string, status JobStatus) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE notification_jobs
		SET status = $2, processed_at = now()
		WHERE id = $1 AND status = 'pending'
	`, jobID, status)
	return err
}
