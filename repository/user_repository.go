// Package repository wraps all persistence access behind typed CRUD
// facades. Every store error is translated into an apperr Database
// failure so callers never see driver-level errors.
package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/invoicely/apperr"
	"github.com/yourusername/invoicely/models"
)

// UserFilters narrows user listing. Zero values are ignored.
type UserFilters struct {
	Name  string
	Email string
	Phone string
	Role  string
}

// UserListOptions controls filtering, pagination and ordering.
type UserListOptions struct {
	Filters UserFilters
	Limit   int
	Offset  int
	Order   string
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *UserRepository) Update(id string, updates map[string]any) (*models.User, error) {
	user, err := r.FindByID(id)
	if err != nil || user == nil {
		return nil, err
	}
	if err := r.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return user, nil
}

func (r *UserRepository) FindOne(conds map[string]any) (*models.User, error) {
	var user models.User
	err := r.db.Where(conds).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Database(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Database(err)
	}
	return &user, nil
}

func (r *UserRepository) FindAll(opts UserListOptions) ([]models.User, error) {
	q := r.db.Model(&models.User{})

	f := opts.Filters
	if f.Name != "" {
		q = q.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.Email != "" {
		q = q.Where("email = ?", f.Email)
	}
	if f.Phone != "" {
		q = q.Where("phone = ?", f.Phone)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	order := opts.Order
	if order == "" {
		order = "created_at DESC"
	}

	var users []models.User
	if err := q.Order(order).Find(&users).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return users, nil
}

// FindByEmailOrPhone looks up a user matching either field. Phone may be
// empty, in which case only the email is checked.
func (r *UserRepository) FindByEmailOrPhone(email, phone string) (*models.User, error) {
	q := r.db.Where("email = ?", email)
	if phone != "" {
		q = r.db.Where("email = ? OR phone = ?", email, phone)
	}

	var user models.User
	err := q.First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Database(err)
	}
	return &user, nil
}

func (r *UserRepository) Delete(id string) error {
	if err := r.db.Delete(&models.User{}, "id = ?", id).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}
