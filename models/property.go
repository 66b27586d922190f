package models

import "time"

// Property is a rental listing owned by a host.
type Property struct {
	ID              string     `bson:"id" json:"id"`
	Title           string     `bson:"title" json:"title"`
	Description     string     `bson:"description" json:"description"`
	ImageCover      string     `bson:"imageCover,omitempty" json:"imageCover,omitempty"`
	Price           float64    `bson:"price" json:"price"`
	MinimumDuration int        `bson:"minimumDuration" json:"minimumDuration"` // months, 1-3
	AvailableFrom   *time.Time `bson:"availableFrom" json:"availableFrom"`
	AvailableTo     *time.Time `bson:"availableTo,omitempty" json:"availableTo,omitempty"`
	IsAvailable     bool       `bson:"isAvailable" json:"isAvailable"`
	IsActive        bool       `bson:"isActive" json:"isActive"`
	Host            string     `bson:"host" json:"host"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt" json:"updatedAt"`
}
