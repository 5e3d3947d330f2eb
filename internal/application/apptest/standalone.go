package apptest

import (
	"sort"

	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/internal/domain/repository"
)

// ProductRepo returns the fake product repository for use cases that take it
// directly instead of through the transaction runner.
func (s *Store) ProductRepo() repository.ProductRepository { return &productRepo{s: s} }

// UserRepo returns the fake user repository.
func (s *Store) UserRepo() repository.UserRepository { return &userRepo{s: s} }

// VariantRepo returns the fake variant repository.
func (s *Store) VariantRepo() repository.VariantRepository { return &variantRepo{s: s} }

// MovementRepo returns the fake stock movement repository.
func (s *Store) MovementRepo() repository.StockMovementRepository { return &movementRepo{s: s} }

// VendorRepo returns the fake vendor repository.
func (s *Store) VendorRepo() repository.VendorRepository { return &vendorRepo{s: s} }

// OrderLogRepo returns the fake order log repository.
func (s *Store) OrderLogRepo() repository.OrderLogRepository { return &orderLogRepo{s: s} }

type productRepo struct{ s *Store }

func (r *productRepo) Create(p *entity.Product) error {
	r.s.Products[p.ID] = *p
	return nil
}

func (r *productRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.Products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *productRepo) Update(p *entity.Product) error {
	if _, ok := r.s.Products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.Products[p.ID] = *p
	return nil
}

func (r *productRepo) List(limit int) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range r.s.Products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(u *entity.User) error {
	for _, existing := range r.s.Users {
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.Users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(id string) (*entity.User, error) {
	u, ok := r.s.Users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(email string) (*entity.User, error) {
	for _, u := range r.s.Users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}
