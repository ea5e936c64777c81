package product

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryCasualWear     Category = "Casual Wear"
	CategoryStreetwear     Category = "Streetwear"
	CategoryEssentials     Category = "Essentials"
	CategoryLimitedEdition Category = "Limited Edition"
)

type Gender string

const (
	GenderMen    Gender = "Men"
	GenderWomen  Gender = "Women"
	GenderUnisex Gender = "Unisex"
)

// Sizes accepted in Product.Sizes.
var Sizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

type Product struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name" validate:"required"`
	Description  string    `json:"description" validate:"required"`
	Price        float64   `json:"price" validate:"gte=0"`
	Category     Category  `json:"category" validate:"oneof='Casual Wear' Streetwear Essentials 'Limited Edition'"`
	Gender       Gender    `json:"gender" validate:"oneof=Men Women Unisex"`
	Sizes        []string  `json:"sizes" validate:"dive,oneof=XS S M L XL XXL"`
	Colors       []string  `json:"colors"`
	Images       []string  `json:"images"`
	Stock        int       `json:"stock" validate:"gte=0"`
	IsFeatured   bool      `json:"isFeatured"`
	IsNewArrival bool      `json:"isNewArrival"`
	Rating       float64   `json:"rating" validate:"gte=0,lte=5"`
	NumReviews   int       `json:"numReviews" validate:"gte=0"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Input is the write payload for both create and update. Nil fields are
// left as they are on update; on create the required ones must be present.
type Input struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Price        *float64  `json:"price"`
	Category     *Category `json:"category"`
	Gender       *Gender   `json:"gender"`
	Sizes        []string  `json:"sizes"`
	Colors       []string  `json:"colors"`
	Images       []string  `json:"images"`
	Stock        *int      `json:"stock"`
	IsFeatured   *bool     `json:"isFeatured"`
	IsNewArrival *bool     `json:"isNewArrival"`
	Rating       *float64  `json:"rating"`
	NumReviews   *int      `json:"numReviews"`
}

type Filter struct {
	Category    string
	Gender      string
	Search      string
	Featured    bool
	NewArrivals bool
}

type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
)

// ParseSort maps the query value onto a Sort; anything unrecognised is newest first.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortPriceLow, SortPriceHigh:
		return Sort(s)
	default:
		return SortNewest
	}
}
