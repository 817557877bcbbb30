package domain

import "strings"

// Roles and statuses are stored uppercase and travel lowercase on the wire
// (token claims, JSON bodies). Every storage/wire crossing goes through the
// mappers below.
const (
	RoleAdmin  = "ADMIN"
	RoleFarmer = "FARMER"
	RoleBuyer  = "BUYER"
)

const (
	ProductAvailable = "AVAILABLE"
	ProductSold      = "SOLD"
	ProductReserved  = "RESERVED"
)

const (
	OrderPending   = "PENDING"
	OrderConfirmed = "CONFIRMED"
	OrderShipped   = "SHIPPED"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

// WireRole lowercases a storage role for tokens and JSON.
func WireRole(storage string) string { return strings.ToLower(storage) }

// StorageRole maps a wire role back to its storage form. Unknown values
// return ok=false so callers can reject them as validation errors.
func StorageRole(wire string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(wire)) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleFarmer:
		return RoleFarmer, true
	case RoleBuyer:
		return RoleBuyer, true
	}
	return "", false
}

func WireStatus(storage string) string { return strings.ToLower(storage) }

func StorageProductStatus(wire string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(wire)) {
	case ProductAvailable:
		return ProductAvailable, true
	case ProductSold:
		return ProductSold, true
	case ProductReserved:
		return ProductReserved, true
	}
	return "", false
}

func StorageOrderStatus(wire string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(wire)) {
	case OrderPending:
		return OrderPending, true
	case OrderConfirmed:
		return OrderConfirmed, true
	case OrderShipped:
		return OrderShipped, true
	case OrderDelivered:
		return OrderDelivered, true
	case OrderCancelled:
		return OrderCancelled, true
	}
	return "", false
}
