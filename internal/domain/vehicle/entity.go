package vehicle

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidName   = errors.New("vehicle name must not be empty")
	ErrNegativePrice = errors.New("price per hour cannot be negative")
)

type Vehicle struct {
	id                uuid.UUID
	name              string
	description       string
	pricePerHourCents int64
	capacityNote      string
	imageURL          *string
	isActive          bool
	createdAt         time.Time
	updatedAt         time.Time
}

func NewVehicle(name, description string, pricePerHourCents int64, capacityNote string, imageURL *string) (*Vehicle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if pricePerHourCents < 0 {
		return nil, ErrNegativePrice
	}
	return &Vehicle{
		id:                uuid.New(),
		name:              name,
		description:       description,
		pricePerHourCents: pricePerHourCents,
		capacityNote:      capacityNote,
		imageURL:          imageURL,
		isActive:          true,
	}, nil
}

func ReconstructVehicle(
	id uuid.UUID,
	name, description string,
	pricePerHourCents int64,
	capacityNote string,
	imageURL *string,
	isActive bool,
	createdAt, updatedAt time.Time,
) *Vehicle {
	return &Vehicle{
		id:                id,
		name:              name,
		description:       description,
		pricePerHourCents: pricePerHourCents,
		capacityNote:      capacityNote,
		imageURL:          imageURL,
		isActive:          isActive,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (v *Vehicle) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	v.name = name
	return nil
}

func (v *Vehicle) SetPricePerHourCents(cents int64) error {
	if cents < 0 {
		return ErrNegativePrice
	}
	v.pricePerHourCents = cents
	return nil
}

func (v *Vehicle) Deactivate() { v.isActive = false }
func (v *Vehicle) Activate()   { v.isActive = true }

func (v *Vehicle) ID() uuid.UUID            { return v.id }
func (v *Vehicle) Name() string             { return v.name }
func (v *Vehicle) Description() string      { return v.description }
func (v *Vehicle) PricePerHourCents() int64 { return v.pricePerHourCents }
func (v *Vehicle) CapacityNote() string     { return v.capacityNote }
func (v *Vehicle) ImageURL() *string        { return v.imageURL }
func (v *Vehicle) IsActive() bool           { return v.isActive }
func (v *Vehicle) CreatedAt() time.Time     { return v.createdAt }
func (v *Vehicle) UpdatedAt() time.Time     { return v.updatedAt }
