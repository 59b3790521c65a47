package dto

// LoginRequest operator credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse session token for the operator.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}
