package costing

import "github.com/sewline/backend/internal/domain/procurement"

// CostCategory groups order costs by what was bought
type CostCategory string

const (
	CostCategoryFabric        CostCategory = "FABRIC"
	CostCategoryTrim          CostCategory = "TRIM"
	CostCategoryCMT           CostCategory = "CMT"
	CostCategoryWashing       CostCategory = "WASHING"
	CostCategoryEmbellishment CostCategory = "EMBELLISHMENT"
	CostCategoryPackaging     CostCategory = "PACKAGING"
	CostCategoryOther         CostCategory = "OTHER"
)

// IsValid checks if the value is a known cost category
func (c CostCategory) IsValid() bool {
	switch c {
	case CostCategoryFabric, CostCategoryTrim, CostCategoryCMT, CostCategoryWashing,
		CostCategoryEmbellishment, CostCategoryPackaging, CostCategoryOther:
		return true
	}
	return false
}

// String returns the string representation of CostCategory
func (c CostCategory) String() string {
	return string(c)
}

// supplierTypeCategories maps supplier types to the cost category their
// deliveries are booked under
var supplierTypeCategories = map[procurement.SupplierType]CostCategory{
	procurement.SupplierTypeFabricMill:        CostCategoryFabric,
	procurement.SupplierTypeTrimSupplier:      CostCategoryTrim,
	procurement.SupplierTypeCMTFactory:        CostCategoryCMT,
	procurement.SupplierTypeWashingPlant:      CostCategoryWashing,
	procurement.SupplierTypeEmbellisher:       CostCategoryEmbellishment,
	procurement.SupplierTypePackagingSupplier: CostCategoryPackaging,
	procurement.SupplierTypeOther:             CostCategoryOther,
}

// CategoryForSupplierType returns the cost category for a supplier type,
// defaulting to OTHER for unknown types
func CategoryForSupplierType(t procurement.SupplierType) CostCategory {
	if c, ok := supplierTypeCategories[t]; ok {
		return c
	}
	return CostCategoryOther
}
