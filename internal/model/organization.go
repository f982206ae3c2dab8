package model

import "time"

// Organization is the tenant boundary: it owns sections, items and users.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// JoinCodeLength is the length of the generated organization join code.
const JoinCodeLength = 8
