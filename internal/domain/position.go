package domain

import "time"

// Position is a user's current holding of one symbol. A position exists
// only while its share count is positive.
type Position struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Symbol    string    `json:"symbol"`
	Shares    int64     `json:"shares"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
