package domain

import (
	"time"
)

const TaskTitleMaxLength = 150

type Task struct {
	ID          int       `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Datetime    time.Time `db:"datetime"`
	Done        bool      `db:"done"`
	UserID      int       `db:"user_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ToMap returns the writable columns of a task, keyed by column name.
func (t *Task) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"title":       t.Title,
		"description": t.Description,
		"datetime":    t.Datetime,
		"done":        t.Done,
		"user_id":     t.UserID,
		"updated_at":  t.UpdatedAt,
	}
}

func (t *Task) BelongsToUser(userID int) bool {
	return t.UserID == userID
}
