package models

import "time"

type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "admin"
	AdminRoleSuperAdmin AdminRole = "super_admin"
)

// Capability names a single administrative permission.
type Capability string

const (
	CapabilityApprove      Capability = "approve"
	CapabilityReject       Capability = "reject"
	CapabilityDelete       Capability = "delete"
	CapabilityManageAdmins Capability = "manage_admins"
)

// PermissionSet carries the per-capability flags embedded in admin tokens.
type PermissionSet struct {
	CanApprove      bool `json:"canApprove"`
	CanReject       bool `json:"canReject"`
	CanDelete       bool `json:"canDelete"`
	CanManageAdmins bool `json:"canManageAdmins"`
}

func (p PermissionSet) Has(capability Capability) bool {
	switch capability {
	case CapabilityApprove:
		return p.CanApprove
	case CapabilityReject:
		return p.CanReject
	case CapabilityDelete:
		return p.CanDelete
	case CapabilityManageAdmins:
		return p.CanManageAdmins
	}
	return false
}

// DefaultPermissions returns the capability flags granted at signup time.
// Super admins additionally get delete and admin management.
func DefaultPermissions(role AdminRole) PermissionSet {
	return PermissionSet{
		CanApprove:      true,
		CanReject:       true,
		CanDelete:       role == AdminRoleSuperAdmin,
		CanManageAdmins: role == AdminRoleSuperAdmin,
	}
}

type Admin struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	Role         AdminRole
	Permissions  PermissionSet
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is one authenticated device of an administrator, stored in a
// dedicated table keyed (admin_id, device_id).
type Session struct {
	AdminID      string
	DeviceID     string
	DeviceName   string
	TokenID      string
	LoginAt      time.Time
	LastActiveAt time.Time
}
