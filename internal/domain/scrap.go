package domain

// Scrap is a single geotagged photo entry. A scrap belongs to at most one
// book at a time, but may be threaded into any number of other books.
type Scrap struct {
	Record
	Author string `json:"author"`
	// Book is the owning book id, empty while unbooked.
	Book string `json:"book,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Prograph is the forward-facing photo key, Retrograph the rear-facing
	// one. Keys resolve through the photo store.
	Prograph           string `json:"prograph,omitempty"`
	Retrograph         string `json:"retrograph,omitempty"`
	PrographBlurhash   string `json:"prograph_blurhash,omitempty"`
	RetrographBlurhash string `json:"retrograph_blurhash,omitempty"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Place     string  `json:"place,omitempty"`
	Location  string  `json:"location,omitempty"`

	// Threads are books by other authors this scrap is attached to.
	// Mirrors Book.Threads.
	Threads []string `json:"threads"`
}

// Coordinate returns the scrap's position.
func (s *Scrap) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}
