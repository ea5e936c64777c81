package product

import (
	"strings"

	"velora-api/internal/validation"
)

// ApplyInput copies every non-nil field of in onto p.
func ApplyInput(p *Product, in Input) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.Sizes != nil {
		p.Sizes = in.Sizes
	}
	if in.Colors != nil {
		p.Colors = in.Colors
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.IsNewArrival != nil {
		p.IsNewArrival = *in.IsNewArrival
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.NumReviews != nil {
		p.NumReviews = *in.NumReviews
	}
}

// FromInput builds a new product. Fields the schema requires must be present.
func FromInput(in Input) (*Product, error) {
	var missing validation.Errors
	if in.Name == nil {
		missing = append(missing, validation.FieldError{Field: "name", Message: "is required"})
	}
	if in.Description == nil {
		missing = append(missing, validation.FieldError{Field: "description", Message: "is required"})
	}
	if in.Price == nil {
		missing = append(missing, validation.FieldError{Field: "price", Message: "is required"})
	}
	if in.Category == nil {
		missing = append(missing, validation.FieldError{Field: "category", Message: "is required"})
	}
	if in.Gender == nil {
		missing = append(missing, validation.FieldError{Field: "gender", Message: "is required"})
	}
	if len(missing) > 0 {
		return nil, missing
	}

	p := &Product{}
	ApplyInput(p, in)
	normalize(p)
	return p, nil
}

// normalize replaces nil lists so they persist and serialize as empty arrays.
func normalize(p *Product) {
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
}
