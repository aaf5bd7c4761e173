package jwt_test

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

var cashier = jwt.Identity{UserID: "u-1", BranchID: "b-1", Role: "cajero"}

func TestGenerateAndParse_ConservaIdentidad(t *testing.T) {
	tok, err := jwt.Generate(secret, cashier, "pos-ledger-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	id, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, cashier, id)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := jwt.Generate(secret, cashier, "pos-ledger-test", -1)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, tok)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := jwt.Generate(secret, cashier, "pos-ledger-test", 60)
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secret-completamente-distinto", tok)
	assert.ErrorIs(t, err, gojwt.ErrTokenSignatureInvalid)
}

func TestParse_MetodoDeFirmaNoHMAC(t *testing.T) {
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, jwt.Claims{UserID: "u-1"}).
		SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := jwt.Generate("", cashier, "pos-ledger-test", 60)
	assert.Error(t, err)

	_, err = jwt.Parse("", "x.y.z")
	assert.Error(t, err)
}
