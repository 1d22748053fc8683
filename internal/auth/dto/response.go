package dto

// TokenResponse is the issued pair plus bookkeeping the client needs to
// schedule its refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// LoginResponse bundles the outcome of a successful login. CSRFToken is also
// delivered as a readable cookie; clients echo it back in the X-CSRF-Token
// header on state-changing calls.
type LoginResponse struct {
	User      *UserOutput    `json:"user"`
	Tokens    *TokenResponse `json:"tokens"`
	CSRFToken string         `json:"csrf_token"`
}

type ValidateResponse struct {
	Valid bool        `json:"valid"`
	User  *UserOutput `json:"user,omitempty"`
}
