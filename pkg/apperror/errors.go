package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication & Authorization (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid username or password", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAdminRequired() *AppError {
	return New("AUTH_003", "Administrator role required", http.StatusForbidden)
}

// ---- User Management (USER) ----

func ErrUsernameExists() *AppError {
	return New("USER_001", "Username already exists", http.StatusConflict)
}

func ErrUserNotFound() *AppError {
	return New("USER_002", "User not found", http.StatusNotFound)
}

func ErrUserHasTransactions() *AppError {
	return New("USER_003", "User has associated transactions", http.StatusConflict)
}

func ErrSelfDelete() *AppError {
	return New("USER_004", "Cannot delete own account", http.StatusBadRequest)
}

// ---- Market Rates (FX) ----

func ErrFiatRateUnavailable(err error) *AppError {
	return Wrap("FX_001", "Fiat exchange rate unavailable", http.StatusBadGateway, err)
}

func ErrCryptoPriceUnavailable(err error) *AppError {
	return Wrap("FX_002", "Crypto price unavailable", http.StatusBadGateway, err)
}

func ErrUnknownAsset(asset string) *AppError {
	return New("FX_003", fmt.Sprintf("Unknown asset: %s", asset), http.StatusBadRequest)
}

// ---- Transaction Validation (TX) ----

func ErrInvalidAmount() *AppError {
	return New("TX_001", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrInvalidOperationType() *AppError {
	return New("TX_002", "Operation type must be compra or venta", http.StatusBadRequest)
}

// ---- Settings (SET) ----

func ErrUnknownSettingKey(key string) *AppError {
	return New("SET_001", fmt.Sprintf("Unknown setting key: %s", key), http.StatusBadRequest)
}

func ErrInvalidSettingValue(key string) *AppError {
	return New("SET_002", fmt.Sprintf("Invalid value for setting: %s", key), http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a TX_001-style validation error with a custom message.
func Validation(message string) *AppError {
	return New("TX_001", message, http.StatusBadRequest)
}
