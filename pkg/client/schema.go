package client

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Draft is the payload sent when creating a product.
type Draft struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Product is a product as returned by the API.
type Product struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Availability bool    `json:"availability"`
}

// Issue describes why a value failed to parse.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Result is the outcome of a parse: Output is only meaningful when Success
// reports true.
type Result[T any] struct {
	Output T
	Issues []Issue
}

// Success reports whether the value parsed without issues.
func (r Result[T]) Success() bool {
	return len(r.Issues) == 0
}

// Err returns the issues as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.Success() {
		return nil
	}
	msgs := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		msgs = append(msgs, i.String())
	}
	return fmt.Errorf("invalid data: %s", strings.Join(msgs, "; "))
}

// Name and price limits match the products table.
const (
	minNameLength = 3
	maxNameLength = 100
	maxPrice      = 100000000
)

var decimalString = regexp.MustCompile(`^[-+]?[0-9]+(?:\.[0-9]+)?$`)

// booleanStrings is the only accepted string form of a boolean.
var booleanStrings = map[string]bool{
	"true":  true,
	"false": false,
}

// ParseDraft coerces form input into a Draft, applying the same rules the
// API enforces on create.
func ParseDraft(form map[string]string) Result[Draft] {
	var issues []Issue
	name := parseName(form["name"], &issues)
	price := parsePrice(strings.TrimSpace(form["price"]), "price", &issues)
	return Result[Draft]{Output: Draft{Name: name, Price: price}, Issues: issues}
}

// ParseProductForm coerces edit form input into a Product with the given ID.
func ParseProductForm(id int64, form map[string]string) Result[Product] {
	var issues []Issue
	if id <= 0 {
		issues = append(issues, Issue{Path: "id", Message: "must be a positive integer"})
	}
	name := parseName(form["name"], &issues)
	price := parsePrice(strings.TrimSpace(form["price"]), "price", &issues)
	availability := parseBool(strings.TrimSpace(form["availability"]), "availability", &issues)
	return Result[Product]{
		Output: Product{ID: id, Name: name, Price: price, Availability: availability},
		Issues: issues,
	}
}

// ParseProduct validates a decoded JSON object. Price may be a number or a
// decimal string and availability a boolean or "true"/"false".
func ParseProduct(raw any) Result[Product] {
	var issues []Issue
	p := parseProductAt(raw, "", &issues)
	return Result[Product]{Output: p, Issues: issues}
}

// ParseProducts validates a decoded JSON array of products.
func ParseProducts(raw any) Result[[]Product] {
	items, ok := raw.([]any)
	if !ok {
		return Result[[]Product]{Issues: []Issue{{Message: fmt.Sprintf("expected array, got %T", raw)}}}
	}

	var issues []Issue
	products := make([]Product, 0, len(items))
	for i, item := range items {
		products = append(products, parseProductAt(item, "["+strconv.Itoa(i)+"]", &issues))
	}
	return Result[[]Product]{Output: products, Issues: issues}
}

func parseProductAt(raw any, path string, issues *[]Issue) Product {
	obj, ok := raw.(map[string]any)
	if !ok {
		*issues = append(*issues, Issue{Path: path, Message: fmt.Sprintf("expected object, got %T", raw)})
		return Product{}
	}

	var p Product
	p.ID = parseID(obj["id"], join(path, "id"), issues)

	if name, ok := obj["name"].(string); ok {
		p.Name = name
	} else {
		*issues = append(*issues, Issue{Path: join(path, "name"), Message: "expected string"})
	}

	switch v := obj["price"].(type) {
	case float64:
		p.Price = v
	case string:
		p.Price = parseDecimal(v, join(path, "price"), issues)
	default:
		*issues = append(*issues, Issue{Path: join(path, "price"), Message: "expected number"})
	}

	switch v := obj["availability"].(type) {
	case bool:
		p.Availability = v
	case string:
		p.Availability = parseBool(v, join(path, "availability"), issues)
	default:
		*issues = append(*issues, Issue{Path: join(path, "availability"), Message: "expected boolean"})
	}
	return p
}

func parseID(raw any, path string, issues *[]Issue) int64 {
	f, ok := raw.(float64)
	if !ok || f <= 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		*issues = append(*issues, Issue{Path: path, Message: "expected positive integer"})
		return 0
	}
	return int64(f)
}

func parseName(raw string, issues *[]Issue) string {
	name := strings.TrimSpace(raw)
	n := len([]rune(name))
	if n < minNameLength {
		*issues = append(*issues, Issue{Path: "name", Message: fmt.Sprintf("must be at least %d characters long", minNameLength)})
	}
	if n > maxNameLength {
		*issues = append(*issues, Issue{Path: "name", Message: fmt.Sprintf("must be at most %d characters long", maxNameLength)})
	}
	return name
}

// parsePrice applies the create/update price rules on top of parseDecimal.
func parsePrice(raw, path string, issues *[]Issue) float64 {
	before := len(*issues)
	price := parseDecimal(raw, path, issues)
	if len(*issues) > before {
		return 0
	}
	if price <= 0 {
		*issues = append(*issues, Issue{Path: path, Message: "must be greater than 0"})
	}
	if dot := strings.IndexByte(raw, '.'); dot >= 0 && len(raw)-dot-1 > 2 {
		*issues = append(*issues, Issue{Path: path, Message: "must have at most 2 decimal places"})
	}
	if price >= maxPrice {
		*issues = append(*issues, Issue{Path: path, Message: fmt.Sprintf("must be less than %d", maxPrice)})
	}
	return price
}

func parseDecimal(raw, path string, issues *[]Issue) float64 {
	if !decimalString.MatchString(raw) {
		*issues = append(*issues, Issue{Path: path, Message: "expected decimal"})
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*issues = append(*issues, Issue{Path: path, Message: "expected decimal"})
		return 0
	}
	return f
}

func parseBool(raw, path string, issues *[]Issue) bool {
	b, ok := booleanStrings[raw]
	if !ok {
		*issues = append(*issues, Issue{Path: path, Message: `expected "true" or "false"`})
	}
	return b
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
