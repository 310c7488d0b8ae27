package enums

import "fmt"

// ItemCategory represents the inventory lifecycle stage of an item.
type ItemCategory string

const (
	ItemCategoryInStock     ItemCategory = "in_stock"
	ItemCategoryOnTheWay    ItemCategory = "on_the_way"
	ItemCategoryNeedToOrder ItemCategory = "need_to_order"
)

var validItemCategories = []ItemCategory{
	ItemCategoryInStock,
	ItemCategoryOnTheWay,
	ItemCategoryNeedToOrder,
}

// String implements fmt.Stringer.
func (c ItemCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ItemCategory.
func (c ItemCategory) IsValid() bool {
	for _, candidate := range validItemCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseItemCategory converts raw input into an ItemCategory.
func ParseItemCategory(value string) (ItemCategory, error) {
	for _, candidate := range validItemCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item category %q", value)
}
