package inventory

import "time"

// Entry is the quantity on hand for one garment within a snapshot.
type Entry struct {
	GarmentID string `json:"garmentId"`
	Quantity  int    `json:"quantity"`
	Location  string `json:"location,omitempty"`
}

// Snapshot is a timestamped record of quantities on hand. The snapshot with
// the most recent updated_at is the authoritative one for availability.
type Snapshot struct {
	ID        string    `json:"snapshotId"`
	UpdatedAt time.Time `json:"updatedAt"`
	Entries   []Entry   `json:"entries"`
}
