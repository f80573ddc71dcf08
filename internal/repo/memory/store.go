// Package memory is an in-process implementation of the domain repositories.
// It honours the same contracts as the gorm repositories (unique subject and email,
// versioned saves, atomic order placement) and backs tests and the "memory" db driver.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-gin-storefront/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	products map[string]domain.Product
	orders   map[string]domain.Order
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    map[string]domain.User{},
		products: map[string]domain.Product{},
		orders:   map[string]domain.Order{},
		now:      time.Now,
	}
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }
func (s *Store) Orders() *OrderRepository     { return &OrderRepository{s: s} }

// SeedProducts replaces the catalog; used for tests and local runs.
func (s *Store) SeedProducts(ps ...domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range ps {
		s.products[p.ID] = p
	}
}

// UserCount reports how many user records exist.
func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// OrderCount reports how many order records exist.
func (s *Store) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// ---------- users ----------

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	email := domain.NormalizeEmail(u.Email)
	for _, ex := range s.users {
		if ex.ID == u.ID || ex.SubjectID == u.SubjectID {
			return domain.ErrDuplicate
		}
		if email != "" && ex.Email == email {
			return domain.ErrDuplicate
		}
	}
	if u.Version == 0 {
		u.Version = 1
	}
	now := s.now()
	u.Email = email
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = cloneUser(*u)
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (r *UserRepository) FindBySubject(_ context.Context, subjectID string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.SubjectID == subjectID {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context, q domain.UserQuery) ([]domain.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	all := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if needle != "" && !strings.Contains(u.Email, needle) && !strings.Contains(strings.ToLower(u.Name), needle) {
			continue
		}
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, q.Offset, q.Limit), int64(len(all)), nil
}

func (r *UserRepository) Save(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.saveLocked(u)
}

func (s *Store) saveLocked(u *domain.User) error {
	cur, ok := s.users[u.ID]
	if !ok || cur.Version != u.Version {
		return domain.ErrVersionConflict
	}
	next := cloneUser(*u)
	next.SubjectID = cur.SubjectID
	next.Email = cur.Email
	next.CreatedAt = cur.CreatedAt
	next.Version = cur.Version + 1
	next.UpdatedAt = s.now()
	s.users[u.ID] = next
	u.Version, u.UpdatedAt = next.Version, next.UpdatedAt
	return nil
}

// ---------- products ----------

type ProductRepository struct{ s *Store }

func (r *ProductRepository) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (r *ProductRepository) FindByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *ProductRepository) List(_ context.Context, q domain.ProductQuery) ([]domain.Product, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	all := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if !p.Active || (q.Category != "" && p.Category != q.Category) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, q.Offset, q.Limit), int64(len(all)), nil
}

func (r *ProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) Update(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = r.s.now()
	r.s.products[p.ID] = *p
	return nil
}

// ---------- orders ----------

type OrderRepository struct{ s *Store }

func (r *OrderRepository) Place(_ context.Context, o *domain.Order, u *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; ok {
		return domain.ErrDuplicate
	}
	next := cloneUser(*u)
	next.Cart = domain.Cart{}
	next.OrderIDs = append(next.OrderIDs, o.ID)
	if err := s.saveLocked(&next); err != nil {
		return err
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	s.orders[o.ID] = cloneOrder(*o)
	*u = next
	return nil
}

func (r *OrderRepository) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Order, 0)
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *OrderRepository) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneOrder(o)
	return &out, nil
}

// ---------- helpers ----------

func page[T any](all []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}

func cloneUser(u domain.User) domain.User {
	u.Cart = append(domain.Cart{}, u.Cart...)
	u.OrderIDs = append([]string{}, u.OrderIDs...)
	u.Addresses = append([]domain.Address{}, u.Addresses...)
	return u
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	o.ShippingAddress = append([]byte(nil), o.ShippingAddress...)
	return o
}
