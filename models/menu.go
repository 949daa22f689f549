package models

// MenuItem is one catalog entry. Type and Availability are open strings;
// the constants below only name the values seen so far.
type MenuItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          float64         `json:"price"`
	Type           string          `json:"type"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	Image          string          `json:"image"`
	Availability   string          `json:"availability"`
	Popular        bool            `json:"popular"`
	PricingOptions []PricingOption `json:"pricing_options"` // nil = no options
}

// PricingOption is one price variant of an item, e.g. "Half" / "Full".
type PricingOption struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

const (
	TypeVeg    = "veg"
	TypeNonVeg = "non-veg"

	AvailabilityAvailable   = "Available"
	AvailabilityUnavailable = "Unavailable"
)

// Catalog is the ordered list of menu items.
type Catalog []MenuItem

// Clone returns a deep copy. A nil catalog clones to an empty one; nil
// pricing options stay nil.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for i, it := range c {
		out[i] = it.Clone()
	}
	return out
}

// Clone copies the item including its pricing options.
func (m MenuItem) Clone() MenuItem {
	if m.PricingOptions != nil {
		opts := make([]PricingOption, len(m.PricingOptions))
		copy(opts, m.PricingOptions)
		m.PricingOptions = opts
	}
	return m
}

// FindByID returns the first item with the given id.
func (c Catalog) FindByID(id string) (MenuItem, bool) {
	for _, it := range c {
		if it.ID == id {
			return it, true
		}
	}
	return MenuItem{}, false
}

// IndexOf returns the position of the first item with the given id, or -1.
func (c Catalog) IndexOf(id string) int {
	for i, it := range c {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Without returns a copy of c minus every item with the given id, and
// whether any was removed.
func (c Catalog) Without(id string) (Catalog, bool) {
	out := make(Catalog, 0, len(c))
	for _, it := range c {
		if it.ID != id {
			out = append(out, it.Clone())
		}
	}
	return out, len(out) != len(c)
}

// Popular returns the items flagged popular, in catalog order.
func (c Catalog) Popular() Catalog {
	out := Catalog{}
	for _, it := range c {
		if it.Popular {
			out = append(out, it)
		}
	}
	return out
}

// SeedCatalog returns a fresh copy of the catalog a new store starts with.
func SeedCatalog() Catalog {
	return Catalog{
		{
			ID:             "local_001",
			Name:           "Paneer Butter Masala",
			Price:          229,
			Type:           TypeVeg,
			Category:       "Main Course",
			Description:    "Creamy tomato gravy with soft paneer cubes.",
			Image:          "",
			Availability:   AvailabilityAvailable,
			Popular:        true,
			PricingOptions: nil,
		},
	}
}
