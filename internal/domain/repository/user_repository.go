package repository

import "github.com/pasalhq/pasal-erp/internal/domain/entity"

// UserRepository persists system users.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
}
