package domain

// Product is a catalog item as handed over by the cart.
// Only ID, Name and CurrentLocation drive tracking; the rest is carried for display.
type Product struct {
	// ID is the catalog identifier.
	ID string `json:"id"`
	// Name is the display name used in tracking messages.
	Name string `json:"name"`
	// Tagline is the one-line pitch shown under the name.
	Tagline string `json:"tagline,omitempty"`
	// Category is the catalog category (furniture, electronics, ...).
	Category string `json:"category,omitempty"`
	// Price is the unit price.
	Price float64 `json:"price"`
	// Images are the product picture URLs, first one is the cover.
	Images []string `json:"images,omitempty"`
	// YearMade is the manufacturing year.
	YearMade int `json:"yearMade,omitempty"`
	// CurrentLocation is where the item physically is right now.
	CurrentLocation string `json:"currentLocation"`
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	c := p
	if p.Images != nil {
		c.Images = append([]string(nil), p.Images...)
	}
	return c
}
