package services

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/invoicely/apperr"
	"github.com/yourusername/invoicely/config"
	"github.com/yourusername/invoicely/middleware"
	"github.com/yourusername/invoicely/models"
	"github.com/yourusername/invoicely/repository"
	"github.com/yourusername/invoicely/validation"
)

var loginSchema = validation.Schema{
	"email": {
		Required: true,
		Type:     validation.TypeEmail,
		Messages: map[string]string{"required": MsgEmailRequired, "type": MsgEmailInvalid},
	},
	"password": {
		Required: true,
		Messages: map[string]string{"required": MsgPasswordRequired},
	},
}

// UserInfo is the public view of a user returned by auth and customer
// endpoints.
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

type LoginResult struct {
	User        UserInfo `json:"user"`
	AccessToken string   `json:"accessToken"`
}

type AuthService struct {
	users *repository.UserRepository
	cfg   *config.Config
}

func NewAuthService(users *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

// Login verifies credentials and issues a JWT access token. Bad
// credentials are indistinguishable from an unknown email.
func (s *AuthService) Login(payload map[string]any) (*LoginResult, error) {
	data, verr := loginSchema.Validate(payload)
	if verr != nil {
		return nil, verr
	}

	email, _ := data["email"].(string)
	password, _ := data["password"].(string)

	user, err := s.users.FindOne(map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	token, err := middleware.GenerateToken(user, s.cfg.JWTSecret, s.cfg.JWTExpiry)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &LoginResult{
		User:        publicUser(user),
		AccessToken: token,
	}, nil
}

func publicUser(u *models.User) UserInfo {
	return UserInfo{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Role:  u.Role,
	}
}
