package domain

// Category is shared reference data tickets may point at.
type Category struct {
	ID          int64
	Name        string
	Description string
}
