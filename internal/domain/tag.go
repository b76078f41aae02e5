package domain

// Tag is a named label appliable to many photos.
// Name is the human-visible key photos reference in Photo.Tags; matching
// is exact by name. Count is the denormalized number of photos currently
// carrying the tag and is reconciled by exact recount after bulk deletes.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Count int    `json:"count"`
}
