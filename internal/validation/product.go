package validation

import (
	"strconv"

	"stockroom/internal/models"
)

const (
	locationBody   = "body"
	locationParams = "params"
)

// MinNameLength applies to both create and update.
const MinNameLength = 3

var (
	idField = Field{
		Name:     "id",
		Location: locationParams,
		Rules: []Rule{
			{Tag: "record_id", Message: "Not a valid ID"},
		},
	}

	nameField = Field{
		Name:     "name",
		Location: locationBody,
		Rules: []Rule{
			{Tag: "required", Message: "Name is required"},
			{Tag: "min=" + strconv.Itoa(MinNameLength), Message: "Name must be at least 3 characters long"},
			{Tag: "max=" + strconv.Itoa(models.MaxNameLength), Message: "Name must be at most 100 characters long"},
		},
	}

	priceField = Field{
		Name:     "price",
		Location: locationBody,
		Rules: []Rule{
			{Tag: "required", Message: "Price is required"},
			{Tag: "numeric", Message: "Price must be a number"},
			{Tag: "positive", Message: "Price must be greater than 0"},
			{Tag: "decimals", Message: "Price must have at most 2 decimal places"},
			{Tag: "price_ceiling", Message: "Price must be less than 100000000"},
		},
	}

	availabilityField = Field{
		Name:     "availability",
		Location: locationBody,
		Rules: []Rule{
			{Tag: "oneof=true false", Message: "Availability must be a boolean value"},
		},
	}
)

// ValidateID checks a path id and returns it as a record key.
func (v *Validation) ValidateID(raw string) (uint, Errors) {
	in := Input{idField.Name: raw}
	if errs := v.Check(in, idField); len(errs) > 0 {
		return 0, errs
	}
	return parseID(in.Get(idField.Name)), nil
}

// ValidateDraft checks a create payload and coerces it.
func (v *Validation) ValidateDraft(in Input) (models.ProductDraft, Errors) {
	if errs := v.Check(in, nameField, priceField); len(errs) > 0 {
		return models.ProductDraft{}, errs
	}
	return models.ProductDraft{
		Name:  in.Get(nameField.Name),
		Price: parsePrice(in.Get(priceField.Name)),
	}, nil
}

// ValidateUpdate checks a path id together with a full replacement payload.
// Id errors come first, followed by the body field errors.
func (v *Validation) ValidateUpdate(rawID string, in Input) (uint, models.ProductChanges, Errors) {
	withID := make(Input, len(in)+1)
	for k, val := range in {
		withID[k] = val
	}
	withID[idField.Name] = rawID

	if errs := v.Check(withID, idField, nameField, priceField, availabilityField); len(errs) > 0 {
		return 0, models.ProductChanges{}, errs
	}
	return parseID(withID.Get(idField.Name)), models.ProductChanges{
		Name:         in.Get(nameField.Name),
		Price:        parsePrice(in.Get(priceField.Name)),
		Availability: in.Get(availabilityField.Name) == "true",
	}, nil
}

// parseID and parsePrice only run on values that already passed their rules.
func parseID(s string) uint {
	n, _ := strconv.ParseUint(s, 10, 64)
	return uint(n)
}

func parsePrice(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
