package service

import (
	"errors"
	"fmt"
	"strings"

	"cedupscore/app_error"
	"cedupscore/auth"
	"cedupscore/config"
	"cedupscore/repository"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepository *repository.UserRepository
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		userRepository: repository.NewUserRepository(db),
	}
}

func (s *UserService) GetUserById(userId int) (*repository.User, error) {
	user, err := s.userRepository.GetUserById(userId)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

// Login checks the credentials and issues a signed token.
func (s *UserService) Login(email string, password string) (string, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.New("invalid credentials")
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", errors.New("invalid credentials")
	}
	return auth.CreateToken(user)
}

func (s *UserService) CreateUser(email string, password string, permissions []string) (*repository.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &repository.User{
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Permissions:  permissions,
	}
	saved, err := s.userRepository.Save(user)
	if err != nil {
		return nil, duplicateOr(err, "email is already in use")
	}
	return saved, nil
}

// EnsureRootUser creates the super admin from the environment on first
// startup, so a fresh deployment is never locked out.
func (s *UserService) EnsureRootUser() error {
	cfg := config.Env()
	if cfg.RootUserEmail == "" || cfg.RootUserPassword == "" {
		return nil
	}
	_, err := s.userRepository.GetUserByEmail(cfg.RootUserEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	_, err = s.CreateUser(cfg.RootUserEmail, cfg.RootUserPassword,
		[]string{string(repository.PermissionSuperAdmin)})
	return err
}

// GetUserFromAuthHeader resolves the requesting user from the bearer token.
func (s *UserService) GetUserFromAuthHeader(c *gin.Context) (*repository.User, error) {
	authHeader := c.Request.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, app_error.NotFound("user")
	}
	token, err := auth.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims := &auth.Claims{}
	claims.FromJWTClaims(token.Claims)
	if err := claims.Valid(); err != nil {
		return nil, err
	}
	return s.GetUserById(claims.UserId)
}
