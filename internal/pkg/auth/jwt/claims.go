package jwt

import "github.com/golang-jwt/jwt"

// Payload is the set of JWT claims identifying a logged-in user.
type Payload struct {
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the id of the user record; it is also the user's personal room id.
	UserID string `json:"uid"`

	// Username is the display name captured at login, informational only.
	Username string `json:"username"`
}
