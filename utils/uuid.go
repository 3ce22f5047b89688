package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier. IDs are UUIDv7, so ids generated later sort after
// earlier ones, which keeps bids and invoices in creation order on the store's _id index.
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
