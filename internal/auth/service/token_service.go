package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/quizmentor/auth-service/internal/auth/service TokenGenerator

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/quizmentor/auth-service/internal/errors"
	authconstant "github.com/quizmentor/auth-service/pkg/constant"
)

type TokenGenerator interface {
	Generate(userID, email, role string) (string, string, time.Time, error)
	VerifyAccessToken(tokenString string) (*JWTCustomClaims, error)
	VerifyRefreshToken(tokenString string) (*JWTCustomClaims, error)
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

// JWTCustomClaims carries identity plus a type discriminator. Refresh tokens
// hold only the user id and type: role and email would go stale between
// issuance and use.
type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"type"`
}

// TokenService signs and verifies both token kinds with a single
// process-wide secret.
type TokenService struct {
	secret             []byte
	issuer             string
	audience           string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

func NewTokenService(secret, issuer, audience string, accessExpiry, refreshExpiry time.Duration) *TokenService {
	return &TokenService{
		secret:             []byte(secret),
		issuer:             issuer,
		audience:           audience,
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
	}
}

func (ts *TokenService) Generate(userID, email, role string) (string, string, time.Time, error) {
	now := time.Now()
	accessExpiresAt := now.Add(ts.accessTokenExpiry)

	accessClaims := JWTCustomClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: authconstant.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Audience:  jwt.ClaimStrings{ts.audience},
			ExpiresAt: jwt.NewNumericDate(accessExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	refreshClaims := JWTCustomClaims{
		UserID:    userID,
		TokenType: authconstant.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Audience:  jwt.ClaimStrings{ts.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.refreshTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(ts.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(ts.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}

	return accessToken, refreshToken, accessExpiresAt, nil
}

func (ts *TokenService) GetAccessTokenExpiry() time.Duration {
	return ts.accessTokenExpiry
}

func (ts *TokenService) GetRefreshTokenExpiry() time.Duration {
	return ts.refreshTokenExpiry
}

// VerifyAccessToken parses and validates an access token. A refresh token
// presented here fails with an invalid-token error, not a type confusion.
func (ts *TokenService) VerifyAccessToken(tokenString string) (*JWTCustomClaims, error) {
	return ts.verify(tokenString, authconstant.TokenTypeAccess)
}

// VerifyRefreshToken parses and validates a refresh token, rejecting access
// tokens replayed on the refresh endpoint.
func (ts *TokenService) VerifyRefreshToken(tokenString string) (*JWTCustomClaims, error) {
	return ts.verify(tokenString, authconstant.TokenTypeRefresh)
}

func (ts *TokenService) verify(tokenString, wantType string) (*JWTCustomClaims, error) {
	claims, err := ts.parse(tokenString, jwt.WithIssuer(ts.issuer), jwt.WithAudience(ts.audience))
	if err != nil {
		// Tokens issued before issuer/audience stamping carry neither claim
		// and fail the strict parse; they verify without those options,
		// signature and expiry checks still apply.
		if errors.Is(err, jwt.ErrTokenInvalidIssuer) ||
			errors.Is(err, jwt.ErrTokenInvalidAudience) ||
			errors.Is(err, jwt.ErrTokenRequiredClaimMissing) {
			claims, err = ts.parse(tokenString)
		}
		if err != nil {
			return nil, classifyTokenError(err)
		}
	}

	if claims.TokenType != wantType {
		return nil, apperrors.New(apperrors.KindInvalidToken, "unexpected token type")
	}

	return claims, nil
}

func (ts *TokenService) parse(tokenString string, opts ...jwt.ParserOption) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}

func classifyTokenError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return apperrors.Wrap(apperrors.KindSessionExpired, "token expired", err)
	}
	return apperrors.Wrap(apperrors.KindInvalidToken, "invalid token", err)
}
