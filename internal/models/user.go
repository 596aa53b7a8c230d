package models

import "time"

type Role string

const (
	RoleApplicant Role = "applicant"
	RoleRecruiter Role = "recruiter"
)

// ValidRole reports whether r is one of the closed set of roles. Anything
// else is rejected both at signup and at every authorization check.
func ValidRole(r Role) bool {
	return r == RoleApplicant || r == RoleRecruiter
}

type User struct {
	ID           uint      `gorm:"column:id;primaryKey" json:"id"`
	Username     string    `gorm:"column:username;type:varchar(64);uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255)" json:"-"`
	Role         Role      `gorm:"column:role;type:varchar(16)" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Documents []Document `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string { return "users" }
