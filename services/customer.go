package services

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/invoicely/apperr"
	"github.com/yourusername/invoicely/models"
	"github.com/yourusername/invoicely/repository"
	"github.com/yourusername/invoicely/validation"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

var createCustomerSchema = validation.Schema{
	"name": {
		Required: true,
		MinLen:   2,
		MaxLen:   100,
		Messages: map[string]string{
			"required": MsgNameRequired,
			"minLen":   MsgNameTooShort,
			"maxLen":   MsgNameTooLong,
		},
	},
	"email": {
		Required: true,
		Type:     validation.TypeEmail,
		Messages: map[string]string{"required": MsgEmailRequired, "type": MsgEmailInvalid},
	},
	"phone": {
		Pattern:  phonePattern,
		Messages: map[string]string{"pattern": MsgPhoneInvalid},
	},
	"password": {
		Required: true,
		MinLen:   6,
		Messages: map[string]string{"required": MsgPasswordRequired, "minLen": MsgPasswordTooShort},
	},
}

var fetchCustomersSchema = validation.Schema{
	"name":  {},
	"email": {Type: validation.TypeEmail, Messages: map[string]string{"type": MsgEmailInvalid}},
	"phone": {Pattern: phonePattern, Messages: map[string]string{"pattern": MsgPhoneInvalid}},
}

type CustomerService struct {
	users *repository.UserRepository
}

func NewCustomerService(users *repository.UserRepository) *CustomerService {
	return &CustomerService{users: users}
}

// CreateCustomer registers a new CUSTOMER-role user. Duplicate email or
// phone is rejected before the insert.
func (s *CustomerService) CreateCustomer(payload map[string]any) (*UserInfo, error) {
	data, verr := createCustomerSchema.Validate(payload)
	if verr != nil {
		return nil, verr
	}

	email, _ := data["email"].(string)
	phone, _ := data["phone"].(string)

	existing, err := s.users.FindByEmailOrPhone(email, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validation(MsgUserExists)
	}

	password, _ := data["password"].(string)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	name, _ := data["name"].(string)
	user := &models.User{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: string(hash),
		Role:     models.RoleCustomer,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	info := publicUser(user)
	return &info, nil
}

// FetchCustomers lists CUSTOMER-role users with optional filters.
func (s *CustomerService) FetchCustomers(payload map[string]any) ([]UserInfo, error) {
	data, verr := fetchCustomersSchema.Validate(payload)
	if verr != nil {
		return nil, verr
	}

	name, _ := data["name"].(string)
	email, _ := data["email"].(string)
	phone, _ := data["phone"].(string)

	users, err := s.users.FindAll(repository.UserListOptions{
		Filters: repository.UserFilters{
			Name:  name,
			Email: email,
			Phone: phone,
			Role:  models.RoleCustomer,
		},
	})
	if err != nil {
		return nil, err
	}

	infos := make([]UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, publicUser(&users[i]))
	}
	return infos, nil
}

// FetchProfile returns the caller's own user record.
func (s *CustomerService) FetchProfile(payload map[string]any) (*UserInfo, error) {
	current, verr := currentUserFrom(payload)
	if verr != nil {
		return nil, verr
	}
	if current.UserID == "" {
		return nil, apperr.Validation(MsgInvalidUserID)
	}

	user, err := s.users.FindByID(current.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound(MsgUserNotFound)
	}

	info := publicUser(user)
	return &info, nil
}
