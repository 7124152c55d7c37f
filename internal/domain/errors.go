package domain

import "errors"

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")

	ErrUserExists      = errors.New("User already exists")
	ErrUsernameTaken   = errors.New("New username is already taken")
	ErrUserNotFound    = errors.New("User not found")
	ErrInvalidPassword = errors.New("Invalid password")
	ErrTooManyAttempts = errors.New("too many login attempts, try again later")

	ErrEmptyCart         = errors.New("Your cart is empty. Please add products before checkout.")
	ErrUnavailable       = errors.New("This product is currently unavailable.")
	ErrOwnProduct        = errors.New("you cannot add your own product to the cart")
	ErrInsufficientStock = errors.New("not enough stock")

	ErrInvalidTransition = errors.New("invalid order status transition")
)
