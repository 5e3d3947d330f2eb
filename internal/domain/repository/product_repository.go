package repository

import "github.com/pasalhq/pasal-erp/internal/domain/entity"

// ProductRepository persists catalog products.
type ProductRepository interface {
	Create(p *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	Update(p *entity.Product) error
	List(limit int) ([]entity.Product, error)
}
