package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasalhq/pasal-erp/pkg/jwt"
)

const secret = "test-secret-key"

func TestGenerateAndParse(t *testing.T) {
	token, err := jwt.Generate(secret, "user-1", "manager", "pasal-erp", 60)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, role, err := jwt.Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "manager", role)
}

func TestParseWrongSecret(t *testing.T) {
	token, err := jwt.Generate(secret, "user-1", "staff", "pasal-erp", 60)
	require.NoError(t, err)

	_, _, err = jwt.Parse("another-secret", token)
	assert.Error(t, err)
}

func TestParseExpiredToken(t *testing.T) {
	token, err := jwt.Generate(secret, "user-1", "staff", "pasal-erp", -5)
	require.NoError(t, err)

	_, _, err = jwt.Parse(secret, token)
	assert.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	_, _, err := jwt.Parse(secret, "not.a.token")
	assert.Error(t, err)
}

func TestEmptySecretRejected(t *testing.T) {
	_, err := jwt.Generate("", "user-1", "staff", "pasal-erp", 60)
	assert.Error(t, err)

	_, _, err = jwt.Parse("", "whatever")
	assert.Error(t, err)
}
