package domain

// Product is a catalog entry. ID is assigned by the store and is immutable;
// AvailableQuantity is the only field mutated after creation (by order commits).
type Product struct {
	ID                string  `json:"_id"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Size              string  `json:"size"`
	AvailableQuantity int64   `json:"available_quantity"`
}
