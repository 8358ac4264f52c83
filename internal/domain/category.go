package domain

// Category is a business area that gates visibility of root tasks.
type Category string

const (
	CategoryProjects      Category = "Projects"
	CategoryPreSales      Category = "Pre-Sales"
	CategoryAdmin         Category = "Admin"
	CategoryMiscellaneous Category = "Miscellaneous"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{
	CategoryProjects,
	CategoryPreSales,
	CategoryAdmin,
	CategoryMiscellaneous,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ContainsCategory reports whether set includes c.
func ContainsCategory(set []Category, c Category) bool {
	for _, candidate := range set {
		if candidate == c {
			return true
		}
	}
	return false
}
