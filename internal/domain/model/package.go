package model

import (
	"time"

	"github.com/sellaris/payments/internal/domain"
)

// Package represents a purchasable subscription package with a fixed
// duration (in years) and price in IDR.
type Package struct {
	ID            string
	Name          string
	DurationYears int
	Price         int64
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Package) IsZero() bool { return p == nil || p.ID == "" }

// NewPackage validates and constructs a package.
func NewPackage(id, name string, durationYears int, price int64, description string) (*Package, error) {
	if id == "" || name == "" || durationYears <= 0 || price <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Package{
		ID:            id,
		Name:          name,
		DurationYears: durationYears,
		Price:         price,
		Description:   description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
