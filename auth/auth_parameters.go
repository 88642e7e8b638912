package auth

// Credentials is the body of a credential login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the body of a sign-up.
type Registration struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is what the login and OAuth exchange endpoints return.
type TokenResponse struct {
	Token   string `json:"token,omitempty"`   // Bearer credential; absent when none was issued
	Message string `json:"message,omitempty"` // Optional human readable status
}
