package http

// Request bodies. Validation rules live on the struct tags and are enforced
// by decodeAndValidate before a handler touches the fields.

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// MessageResponse is the generic success/error envelope for the register,
// login and logout endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// MsgResponse is the envelope the password-reset endpoints use. The shorter
// field name is kept for wire compatibility with existing clients.
type MsgResponse struct {
	Msg string `json:"msg"`
}

// FieldError describes a single request validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse carries per-field detail for 400 responses caused
// by malformed input.
type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// UserResponse is the public projection returned by the me endpoint.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}
