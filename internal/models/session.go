package models

// User is the account object returned by session endpoints.
type User struct {
	ID           int64  `json:"id,omitempty"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// RegistrationRequest is the body of POST /registration.
type RegistrationRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password,omitempty"`
}

// SessionRequest is the body of POST /session.
type SessionRequest struct {
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}

// PasswordResetRequest is the body of POST /password.
type PasswordResetRequest struct {
	EmailAddress string `json:"emailAddress"`
}

// PasswordUpdateRequest is the body of PUT /password.
type PasswordUpdateRequest struct {
	ResetToken           string `json:"resetToken,omitempty"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

// AccountUpdateRequest is the body of PUT /account.
type AccountUpdateRequest struct {
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// SessionResponse is returned by every session and account endpoint.
type SessionResponse struct {
	User    *User    `json:"user,omitempty"`
	Token   string   `json:"token,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Message string   `json:"message,omitempty"`
}
