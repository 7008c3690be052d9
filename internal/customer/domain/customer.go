package domain

import (
	"time"
)

// Customer is keyed by mobile number. Invoices copy its fields at sale time
// and never point back to it.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	Address   *string   `json:"address,omitempty"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Omitted fields keep the stored value on update.
type UpsertCustomerRequest struct {
	Name    string  `json:"name"`
	Mobile  string  `json:"mobile"`
	Address *string `json:"address,omitempty"`
	Email   *string `json:"email,omitempty"`
}
