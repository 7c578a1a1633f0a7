package domain

import "time"

type PropertyStatus string

const (
	StatusForSale PropertyStatus = "for-sale"
	StatusForRent PropertyStatus = "for-rent"
)

// MaxImagesPerProperty bounds the images slice on a listing and the
// number of files accepted per upload call.
const MaxImagesPerProperty = 10

// Agent is the contact person embedded in a listing.
type Agent struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
	Email string `bson:"email" json:"email"`
}

// Property is one real-estate listing. Views and ContactRequests are
// monotonic counters and change only through the increment operations
// on the repository.
type Property struct {
	ID               string         `bson:"_id,omitempty" json:"_id,omitempty"`
	Title            string         `bson:"title" json:"title"`
	Type             string         `bson:"type" json:"type"`
	Status           PropertyStatus `bson:"status" json:"status"`
	Price            float64        `bson:"price" json:"price"`
	Area             float64        `bson:"area" json:"area"`
	Location         string         `bson:"location" json:"location"`
	Address          string         `bson:"address" json:"address"`
	Layout           string         `bson:"layout" json:"layout"`
	Description      string         `bson:"description" json:"description"`
	Images           []string       `bson:"images" json:"images"`
	Coordinates      []float64      `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	Agent            Agent          `bson:"agent" json:"agent"`
	IsFeatured       bool           `bson:"isFeatured" json:"isFeatured"`
	InvestmentReturn string         `bson:"investmentReturn" json:"investmentReturn"`
	Views            int64          `bson:"views" json:"views"`
	ContactRequests  int64          `bson:"contactRequests" json:"contactRequests"`
	CreatedAt        time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// User is a legacy administrative credential holder. The current
// revision authenticates against a configured admin identity; records
// created through the register endpoint are still honored on login.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"_id,omitempty"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
