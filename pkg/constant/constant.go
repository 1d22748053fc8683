package constant

const (
	// DefaultTokenType is the scheme reported alongside issued token pairs.
	DefaultTokenType = "Bearer"

	// Claim values distinguishing the two token flavors.
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	// Cookie and header names used on the HTTP boundary.
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	CSRFTokenCookie    = "csrf_token"
	CSRFHeader         = "X-CSRF-Token"

	// Rate limiter namespaces. Login is throttled tighter than general API use.
	PurposeLogin = "login"
	PurposeAPI   = "api"

	DefaultUserRole = "student"
)
