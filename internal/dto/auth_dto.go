package dto

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Role     string `json:"role" validate:"required,oneof=lecturer coordinator manager"`
	FullName string `json:"full_name" validate:"required,max=100"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the authenticated profile.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserLite `json:"user"`
}
