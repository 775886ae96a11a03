package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CustomerOrderSortFields contains allowed sort fields for customer orders
var CustomerOrderSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"order_number":  true,
	"customer_name": true,
	"status":        true,
	"currency":      true,
	"total_amount":  true,
	"order_date":    true,
	"ship_by_date":  true,
	"in_house_date": true,
}

// SupplierOrderSortFields contains allowed sort fields for supplier orders
var SupplierOrderSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"order_number":     true,
	"supplier_name":    true,
	"supplier_type":    true,
	"currency":         true,
	"total_amount":     true,
	"receiving_status": true,
	"order_date":       true,
}

// ProductionOrderSortFields contains allowed sort fields for production orders
var ProductionOrderSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"style_number":   true,
	"color":          true,
	"factory_name":   true,
	"order_quantity": true,
	"invoiced_at":    true,
}
