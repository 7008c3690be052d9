package domain

import "time"

// Operator is the counter staff member signed in to the till.
type Operator struct {
	Mobile string `json:"mobile"`
	Role   string `json:"role"`
}

type LoginRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Operator  Operator  `json:"operator"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
