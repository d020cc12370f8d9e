package restaurant

import (
	"errors"
	"time"
)

// ErrEmailExists is returned by repositories when the unique email constraint is violated.
var ErrEmailExists = errors.New("restaurant email already exists")

// Restaurant is a directory entry.
type Restaurant struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Address       string            `json:"address"`
	Phone         string            `json:"phone"`
	Email         string            `json:"email"`
	Website       *string           `json:"website"`
	AverageRating float64           `json:"average_rating"`
	Capacity      int               `json:"capacity"`
	CuisineType   string            `json:"cuisine_type"`
	OpeningHours  map[string]string `json:"opening_hours"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Input is the create and full-replace payload.
type Input struct {
	Name          string            `json:"name" validate:"required,max=200"`
	Address       string            `json:"address" validate:"required,max=500"`
	Phone         string            `json:"phone" validate:"required,max=50"`
	Email         string            `json:"email" validate:"required,email"`
	Website       *string           `json:"website" validate:"omitempty,url"`
	AverageRating float64           `json:"average_rating" validate:"gte=0,lte=5"`
	Capacity      int               `json:"capacity" validate:"gte=0"`
	CuisineType   string            `json:"cuisine_type" validate:"required,max=100"`
	OpeningHours  map[string]string `json:"opening_hours" validate:"dive,keys,required,endkeys,required"`
}

// Filter narrows a directory search. Empty fields match everything.
type Filter struct {
	Location string
	Cuisine  string
}

// DeleteResponse mirrors the confirmation returned after a delete.
type DeleteResponse struct {
	Message string `json:"message"`
}
