package dto

// LoginRequest is the request body for operator/admin login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Expiry   int64  `json:"expiry"` // Unix timestamp
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// FiatSubmitRequest is the request body for recording a fiat operation.
type FiatSubmitRequest struct {
	Type      string  `json:"type" binding:"required,oneof=compra venta"`
	AmountUSD float64 `json:"usd_amount" binding:"required,gt=0"`
}

// CryptoSubmitRequest is the request body for recording a crypto operation.
type CryptoSubmitRequest struct {
	Type         string  `json:"type" binding:"required,oneof=compra venta"`
	Asset        string  `json:"asset" binding:"required,safe_id"`
	CryptoAmount float64 `json:"crypto_amount" binding:"required,gt=0"`
}

// UpdateSettingsRequest is the request body for overwriting pricing settings.
type UpdateSettingsRequest struct {
	Values map[string]string `json:"values" binding:"required"`
}

// CreateUserRequest is the request body for admin user creation.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role" binding:"required,oneof=operator admin"`
}

// UserResponse is one user in admin listings.
type UserResponse struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// CryptoPricesResponse is the response for the crypto rates endpoint.
type CryptoPricesResponse struct {
	Prices map[string]float64 `json:"prices"` // asset id -> USD price
}
