package auth

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse carries the new user record and its first issued token.
type RegisterResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the authenticated user and a freshly issued token.
type LoginResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// VerifyTokenRequest represents a token verification request.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// VerifyTokenResponse represents a token verification response. Verification
// failures are reported in Error rather than as transport errors.
type VerifyTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RevokeTokenRequest represents a token revocation request.
type RevokeTokenRequest struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// RevokeTokenResponse represents a token revocation response.
type RevokeTokenResponse struct {
	Revoked bool `json:"revoked"`
}
