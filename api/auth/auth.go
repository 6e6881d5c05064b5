package auth // import "github.com/epustaka/epustaka/api/auth"

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AccessTokenCookieName is the cookie carrying the access token.
	AccessTokenCookieName = "epustaka.access-token"
	// AccessTokenDuration is the default token lifetime.
	AccessTokenDuration = 7 * 24 * time.Hour
	// KeyID is pinned in the token header and checked on parse.
	KeyID = "v1"

	issuer = "epustaka"
)

// ClaimsMessage is the payload of an access token. Subject carries the
// user ID, Name the username.
type ClaimsMessage struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a token for the user with HS256.
func GenerateAccessToken(username string, userID int32, expireTime time.Time, secret []byte) (string, error) {
	claims := &ClaimsMessage{
		Name: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   fmt.Sprintf("%d", userID),
			Audience:  jwt.ClaimStrings{"user.access-token"},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expireTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = KeyID
	return token.SignedString(secret)
}
