package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-change-me"

func TestGenerateAndParseToken(t *testing.T) {
	req := require.New(t)

	tokenString, err := GenerateToken(&Payload{Username: "alice"}, testSecret, time.Hour)
	req.NoError(err)
	req.NotEmpty(tokenString)

	payload, err := ParseToken(tokenString, testSecret)
	req.NoError(err)
	req.Equal("alice", payload.Username)
	req.Equal(TokenIssuer, payload.Issuer)
}

func TestParseToken_WrongSecret(t *testing.T) {
	req := require.New(t)

	tokenString, err := GenerateToken(&Payload{Username: "alice"}, testSecret, time.Hour)
	req.NoError(err)

	_, err = ParseToken(tokenString, "another-secret")
	req.Error(err)
}

func TestParseToken_Expired(t *testing.T) {
	req := require.New(t)

	tokenString, err := GenerateToken(&Payload{Username: "alice"}, testSecret, -time.Minute)
	req.NoError(err)

	_, err = ParseToken(tokenString, testSecret)
	req.Error(err)
}

func TestParseToken_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := ParseToken("not-a-token", testSecret)
	req.Error(err)
}
