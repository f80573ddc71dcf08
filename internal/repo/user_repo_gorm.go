package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/feature/user"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// 条件更新时写入的列
var userWritableCols = []string{
	"name", "profile", "phone", "role", "is_blocked",
	"addresses", "cart", "order_ids", "version", "updated_at",
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.Version == 0 {
		u.Version = 1
	}
	m := user.FromDomain(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	u.CreatedAt, u.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindBySubject(ctx context.Context, subjectID string) (*domain.User, error) {
	return r.first(ctx, "subject_id = ?", subjectID)
}

func (r *UserRepo) first(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).Where(cond, arg).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

func (r *UserRepo) List(ctx context.Context, q domain.UserQuery) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&user.UserModel{})
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("email LIKE ? OR name LIKE ?", like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []user.UserModel
	if err := tx.Order("created_at desc").Offset(q.Offset).Limit(q.Limit).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, *m.ToDomain())
	}
	return out, total, nil
}

func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	return saveUser(r.db.WithContext(ctx), u)
}

// saveUser 乐观锁：version 不匹配时 RowsAffected == 0
func saveUser(tx *gorm.DB, u *domain.User) error {
	expected := u.Version
	m := user.FromDomain(u)
	m.Version = expected + 1
	m.UpdatedAt = time.Now()
	res := tx.Model(&m).Select(userWritableCols).Where("version = ?", expected).Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	u.Version = m.Version
	u.UpdatedAt = m.UpdatedAt
	return nil
}
