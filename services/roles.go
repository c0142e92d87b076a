package services

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleReceptionist Role = "RECEPTIONIST"
	RoleClient       Role = "CLIENT"
	RoleSystem       Role = "SYSTEM"
)

func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RoleAdmin, RoleReceptionist, RoleClient, RoleSystem:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, raw)
}

type Capability string

const (
	CapReserve         Capability = "reservation.create"
	CapViewAll         Capability = "reservation.viewAll"
	CapManageStay      Capability = "reservation.manageStay" // check-in, check-out, finalize
	CapCancelAny       Capability = "reservation.cancelAny"
	CapCancelOwn       Capability = "reservation.cancelOwn"
	CapPay             Capability = "reservation.pay"
	CapArchive         Capability = "reservation.archive"
	CapDelete          Capability = "reservation.delete"
	CapManageRooms     Capability = "room.manage"
	CapManageDiscounts Capability = "discount.manage"
	CapManageCatalog   Capability = "catalog.manage"
	CapViewAudit       Capability = "audit.view"
	CapRunSync         Capability = "sync.run"
)

var capabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapReserve: true, CapViewAll: true, CapManageStay: true, CapCancelAny: true, CapCancelOwn: true,
		CapPay: true, CapArchive: true, CapDelete: true, CapManageRooms: true,
		CapManageDiscounts: true, CapManageCatalog: true, CapViewAudit: true, CapRunSync: true,
	},
	RoleReceptionist: {
		CapReserve: true, CapViewAll: true, CapManageStay: true, CapCancelAny: true, CapCancelOwn: true,
		CapPay: true,
	},
	RoleClient: {
		CapReserve: true, CapCancelOwn: true, CapPay: true,
	},
	RoleSystem: {
		CapManageStay: true, CapCancelAny: true, CapArchive: true, CapViewAll: true, CapRunSync: true,
	},
}

// Can reports whether role holds capability. Unknown roles hold nothing.
func Can(role Role, c Capability) bool {
	return capabilities[role][c]
}

// Actor identifies who triggers an operation; it is only used for audit
// attribution and ownership checks.
type Actor struct {
	Name     string
	Role     Role
	ClientID uint
}

var SystemActor = Actor{Name: "SYSTEM", Role: RoleSystem}

func (a Actor) String() string {
	if a.Name == "" {
		return string(RoleSystem)
	}
	return a.Name
}
