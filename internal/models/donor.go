package models

import (
	"strings"
	"time"
)

// BloodGroup is the canonical blood group enumeration stored on donor profiles.
type BloodGroup string

const (
	BloodGroupAPositive  BloodGroup = "A_POSITIVE"
	BloodGroupANegative  BloodGroup = "A_NEGATIVE"
	BloodGroupBPositive  BloodGroup = "B_POSITIVE"
	BloodGroupBNegative  BloodGroup = "B_NEGATIVE"
	BloodGroupABPositive BloodGroup = "AB_POSITIVE"
	BloodGroupABNegative BloodGroup = "AB_NEGATIVE"
	BloodGroupOPositive  BloodGroup = "O_POSITIVE"
	BloodGroupONegative  BloodGroup = "O_NEGATIVE"
)

var bloodGroups = []BloodGroup{
	BloodGroupAPositive,
	BloodGroupANegative,
	BloodGroupBPositive,
	BloodGroupBNegative,
	BloodGroupABPositive,
	BloodGroupABNegative,
	BloodGroupOPositive,
	BloodGroupONegative,
}

// BloodGroups returns the full enumeration in display order.
func BloodGroups() []BloodGroup {
	result := make([]BloodGroup, len(bloodGroups))
	copy(result, bloodGroups)
	return result
}

// Valid reports whether the value is one of the eight canonical groups.
func (bg BloodGroup) Valid() bool {
	for _, candidate := range bloodGroups {
		if bg == candidate {
			return true
		}
	}
	return false
}

// Display renders the short human form, e.g. O_POSITIVE becomes "O+".
func (bg BloodGroup) Display() string {
	s := strings.Replace(string(bg), "_POSITIVE", "+", 1)
	return strings.Replace(s, "_NEGATIVE", "-", 1)
}

// Donor is a validated directory profile. Contact number is the dedup key;
// the unique index backs the import-time duplicate check.
type Donor struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	BloodGroup    BloodGroup `gorm:"size:16;not null;index" json:"blood_group"`
	ContactNumber string     `gorm:"size:32;uniqueIndex;not null" json:"contact_number"`
	Email         *string    `gorm:"size:160" json:"email"`
	District      string     `gorm:"size:128;not null" json:"district"`
	City          string     `gorm:"size:128;not null" json:"city"`
	IsAvailable   bool       `gorm:"not null;default:true;index" json:"is_available"`
	Tagline       *string    `gorm:"size:255" json:"tagline"`
	UserID        *uint      `gorm:"index" json:"user_id"`
	CampusID      *uint      `gorm:"index" json:"campus_id"`
	GroupID       *uint      `gorm:"index" json:"group_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Campus        *Campus    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"campus"`
	Group         *Group     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"group"`
}
