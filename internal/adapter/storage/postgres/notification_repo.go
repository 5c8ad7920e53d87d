package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bazaarly-core/internal/core/domain"

	"github.com/google/uuid"
)

// NotificationRepo implements ports.NotificationSink by persisting
// notifications for later delivery. Callers treat failures as
// best-effort and only log them.
type NotificationRepo struct {
	pool Pool
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(pool Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

// Send stores a notification row for the user.
func (r *NotificationRepo) Send(ctx context.Context, userID uuid.UUID, title, message, category string, data map[string]any) error {
	n := domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Category:  category,
		Data:      data,
		CreatedAt: time.Now(),
	}

	var payload []byte
	if n.Data != nil {
		var err error
		payload, err = json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("marshal notification data: %w", err)
		}
	}

	query := `INSERT INTO notifications (id, user_id, title, message, category, data, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		n.ID, n.UserID, n.Title, n.Message, n.Category, payload, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
