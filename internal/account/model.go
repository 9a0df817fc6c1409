package account

import "errors"

var (
	ErrNotFound     = errors.New("user not found")
	ErrUnauthorized = errors.New("invalid username or password")
	ErrDuplicate    = errors.New("username or email already taken")
)

// Address is stored on the user and copied into orders as the shipping address.
type Address struct {
	FullName string `json:"fullName" validate:"required"`
	Address1 string `json:"address1" validate:"required"`
	Address2 string `json:"address2"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Zip      string `json:"zip" validate:"required"`
	Country  string `json:"country" validate:"required"`
}

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Roles        []string
	Address      *Address
}

type SignUpRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
