package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the saved contact and address data of a signed-in user.
// It prefills the checkout form.
type Profile struct {
	UserID       uuid.UUID `json:"user_id" db:"id"`
	FullName     string    `json:"full_name" db:"full_name" validate:"omitempty,min=2"`
	CPF          string    `json:"cpf" db:"cpf" validate:"omitempty,min=11,max=14"`
	Phone        string    `json:"phone" db:"phone"`
	CEP          string    `json:"cep" db:"cep"`
	AddressLine1 string    `json:"address_line1" db:"address_line1"`
	City         string    `json:"city" db:"city"`
	State        string    `json:"state" db:"state"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PasswordChangeRequest is the payload for changing the account password.
type PasswordChangeRequest struct {
	Password     string `json:"password" validate:"required,min=8"`
	Confirmation string `json:"confirmation" validate:"required,eqfield=Password"`
}

// ReorderRequest carries the caller's current cart so reordered lines merge into it.
type ReorderRequest struct {
	Lines []CartLine `json:"lines"`
}

// ReorderResult is the cart after a reorder attempt.
type ReorderResult struct {
	Lines  []CartLine `json:"lines"`
	Added  int        `json:"added"`
	Notice string     `json:"notice"`
}

// User is an account known to the store. Authentication happens upstream;
// the store keeps the e-mail and the password hash.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
