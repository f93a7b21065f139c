package entities

// Product is the authoritative catalog record returned by the product
// validation service.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
