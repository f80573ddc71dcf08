package domain

import (
	"context"
	"strings"
	"time"
)

type Address struct {
	FullName  string `json:"fullName"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

type User struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subjectId"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"profile"`
	Phone     string    `json:"phone"`
	Addresses []Address `json:"addresses"`
	Role      Role      `json:"role"`
	IsBlocked bool      `json:"isBlocked"`
	Cart      Cart      `json:"cart"`
	OrderIDs  []string  `json:"orders"`
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeEmail lower-cases and trims; emails compare case-insensitively.
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// DisplayNameFor picks the display name for a freshly provisioned user.
func DisplayNameFor(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return "User"
}

// ProfilePatch carries the only fields a user may change about themselves.
type ProfilePatch struct {
	Name      *string
	AvatarURL *string
	Phone     *string
	Addresses *[]Address
}

func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Phone != nil {
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Addresses != nil {
		u.Addresses = append([]Address(nil), (*p.Addresses)...)
	}
}

type UserQuery struct {
	Offset int
	Limit  int
	Q      string
}

// UserRepository 用户文档存储；所有写操作基于 Version 条件更新
type UserRepository interface {
	// Create inserts u; returns ErrDuplicate when subject or email is taken.
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindBySubject(ctx context.Context, subjectID string) (*User, error)
	List(ctx context.Context, q UserQuery) ([]User, int64, error)
	// Save writes the mutable fields of u if the stored version equals u.Version,
	// then bumps u.Version. Returns ErrVersionConflict otherwise.
	Save(ctx context.Context, u *User) error
}
