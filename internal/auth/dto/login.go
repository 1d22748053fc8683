package dto

// LoginInput carries the credential pair plus request metadata captured by
// the HTTP layer. Identifier is an email address or username; Role, when
// set, must match the account's role or the attempt fails without
// disclosing why.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	Role       string `json:"role,omitempty"`
	IPAddress  string `json:"-"`
	UserAgent  string `json:"-"`
}
