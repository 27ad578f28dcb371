package main

import (
	"bytes"
	"strings"
	"testing"

	"precomed/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGentoken(t *testing.T) {
	t.Setenv("JWT_SECRET", "segredo-de-teste")

	var out bytes.Buffer
	cmd := novoCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--usuario", "maria", "--rol", "administrador", "--horas", "2"})
	require.NoError(t, cmd.Execute())

	claims := &middleware.JWTClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("segredo-de-teste"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, middleware.RolAdministrador, claims.Rol)
}

func TestGentoken_RolDesconhecido(t *testing.T) {
	cmd := novoCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--usuario", "maria", "--rol", "root"})
	assert.Error(t, cmd.Execute())
}
