package user

import (
	"time"

	"go-gin-storefront/internal/domain"
)

// UserModel is the persisted user document. Cart, addresses and order references are
// embedded as JSON so the whole record is written with a single versioned update.
type UserModel struct {
	ID        string           `gorm:"primaryKey;type:varchar(36)"`
	SubjectID string           `gorm:"uniqueIndex;size:128;not null"`
	Email     *string          `gorm:"uniqueIndex;size:255"` // NULL 允许多条
	Name      string           `gorm:"size:128;not null"`
	Profile   string           `gorm:"size:512"`
	Phone     string           `gorm:"size:32"`
	Role      string           `gorm:"size:16;not null;index"`
	IsBlocked bool             `gorm:"not null"`
	Addresses []domain.Address `gorm:"type:json;serializer:json"`
	Cart      domain.Cart      `gorm:"type:json;serializer:json"`
	OrderIDs  []string         `gorm:"type:json;serializer:json"`
	Version   int64            `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

func FromDomain(u *domain.User) UserModel {
	m := UserModel{
		ID:        u.ID,
		SubjectID: u.SubjectID,
		Name:      u.Name,
		Profile:   u.AvatarURL,
		Phone:     u.Phone,
		Role:      string(u.Role),
		IsBlocked: u.IsBlocked,
		Addresses: u.Addresses,
		Cart:      u.Cart,
		OrderIDs:  u.OrderIDs,
		Version:   u.Version,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if e := domain.NormalizeEmail(u.Email); e != "" {
		m.Email = &e
	}
	if m.Cart == nil {
		m.Cart = domain.Cart{}
	}
	if m.OrderIDs == nil {
		m.OrderIDs = []string{}
	}
	if m.Addresses == nil {
		m.Addresses = []domain.Address{}
	}
	return m
}

func (m UserModel) ToDomain() *domain.User {
	u := &domain.User{
		ID:        m.ID,
		SubjectID: m.SubjectID,
		Name:      m.Name,
		AvatarURL: m.Profile,
		Phone:     m.Phone,
		Role:      domain.Role(m.Role),
		IsBlocked: m.IsBlocked,
		Addresses: m.Addresses,
		Cart:      m.Cart,
		OrderIDs:  m.OrderIDs,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Email != nil {
		u.Email = *m.Email
	}
	if u.Cart == nil {
		u.Cart = domain.Cart{}
	}
	return u
}
