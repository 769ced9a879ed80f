package domain

// CatalogItem is the read-only menu definition of an item as the catalog
// currently knows it.
type CatalogItem struct {
	ID             string          `json:"id"`
	CategoryID     string          `json:"categoryId"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	BasePrice      float64         `json:"basePrice"`
	IsActive       bool            `json:"isActive"`
	ModifierGroups []ModifierGroup `json:"modifierGroups"`
}

type ModifierGroup struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	IsRequired bool             `json:"isRequired"`
	MinSelect  int              `json:"minSelect"`
	MaxSelect  int              `json:"maxSelect"`
	Options    []ModifierOption `json:"options"`
}

// EffectiveMin is the smallest number of options a customer must pick.
func (g ModifierGroup) EffectiveMin() int {
	if g.IsRequired && g.MinSelect < 1 {
		return 1
	}
	return g.MinSelect
}

type ModifierOption struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PriceDelta float64 `json:"priceDelta"`
	IsActive   bool    `json:"isActive"`
}
