package service

import (
	"cedupscore/app_error"
	"cedupscore/auth"
	"cedupscore/repository"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateUserAndLogin(t *testing.T) {
	defer TearDown()
	service := NewUserService(db)

	user, err := service.CreateUser("Admin@Example.com", "secret", []string{string(repository.PermissionEditionAdmin)})
	assert.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)

	_, err = service.CreateUser("admin@example.com", "other", []string{string(repository.PermissionScorekeeper)})
	assert.True(t, app_error.IsKind(err, app_error.KindConflict))

	tokenString, err := service.Login("admin@example.com", "secret")
	assert.NoError(t, err)

	token, err := auth.ParseToken(tokenString)
	assert.NoError(t, err)
	claims := &auth.Claims{}
	claims.FromJWTClaims(token.Claims)
	assert.Equal(t, user.Id, claims.UserId)
	assert.Contains(t, claims.Permissions, string(repository.PermissionEditionAdmin))

	_, err = service.Login("admin@example.com", "wrong")
	assert.Error(t, err)
	_, err = service.Login("nobody@example.com", "secret")
	assert.Error(t, err)
}
