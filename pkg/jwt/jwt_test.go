package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

const (
	secret = "test-secret-key-for-unit-tests"
	issuer = "stock-ledger"
)

var bodeguero = jwt.Identity{UserID: "user-1", CompanyID: "company-1", Role: "bodeguero"}

func TestIssueYVerify_ConservaIdentidad(t *testing.T) {
	tok, err := jwt.Issue(secret, issuer, time.Hour, bodeguero)
	require.NoError(t, err)

	id, err := jwt.Verify(secret, issuer, tok)
	require.NoError(t, err)
	assert.Equal(t, bodeguero, id)
}

func TestVerify_TokenExpirado(t *testing.T) {
	tok, err := jwt.Issue(secret, issuer, -time.Minute, bodeguero)
	require.NoError(t, err)

	_, err = jwt.Verify(secret, issuer, tok)
	assert.Error(t, err)
}

func TestVerify_SecretIncorrecto(t *testing.T) {
	tok, err := jwt.Issue(secret, issuer, time.Hour, bodeguero)
	require.NoError(t, err)

	_, err = jwt.Verify("otro-secret", issuer, tok)
	assert.Error(t, err)
}

func TestVerify_EmisorDistinto(t *testing.T) {
	tok, err := jwt.Issue(secret, "otro-servicio", time.Hour, bodeguero)
	require.NoError(t, err)

	_, err = jwt.Verify(secret, issuer, tok)
	assert.Error(t, err)

	_, err = jwt.Verify(secret, "", tok)
	assert.NoError(t, err, "sin emisor configurado no se valida")
}

func TestVerify_SinUsuario(t *testing.T) {
	tok, err := jwt.Issue(secret, issuer, time.Hour, jwt.Identity{Role: "admin"})
	require.NoError(t, err)

	_, err = jwt.Verify(secret, issuer, tok)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := jwt.Issue("", issuer, time.Hour, bodeguero)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
	_, err = jwt.Verify("", issuer, "x.y.z")
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}
