// Package domain contains the core entities of the BookApp catalogue: users, books and reviews.
package domain

import "time"

// Base holds the identity and timestamp fields shared by every stored entity.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (b *Base) InitTimestamps() {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Touch updates UpdatedAt. Call this whenever the entity changes.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
}
