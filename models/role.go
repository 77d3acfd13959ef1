package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the closed set of roles a user can hold.
type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name string    `gorm:"unique" json:"name"`
}

const (
	RoleReporter  = "Reporter"
	RoleCollector = "Collector"
	RoleAdmin     = "Admin"
)

// ParseRole rejects anything outside the closed role set at the boundary.
func ParseRole(name string) (string, error) {
	switch name {
	case RoleReporter, RoleCollector, RoleAdmin:
		return name, nil
	}
	return "", fmt.Errorf("unknown role %q", name)
}
