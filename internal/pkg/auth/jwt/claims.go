package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims issued to authenticated chat users.
type Payload struct {
	// StandardClaims embeds the JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer) used for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// Username is the unique identity of the token holder. The chat core
	// addresses users exclusively by this value.
	Username string `json:"username"`
}
