package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered identifiers, used for subscriber ids
// in the notification fan-out. V7 keeps them sortable by creation time.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		// v4 fallback, ordering is lost but ids stay unique
		return uuid.NewString()
	}
	return v7.String()
}
