package domain

import (
	"math"
	"regexp"
	"strings"
)

// NoSize is the sentinel variant used when an item has no size selected.
// It is part of the line-item id, so changing it would orphan persisted carts.
const NoSize = "NOSIZE"

// PlaceholderTitle is used when a catalog entry has no readable title.
const PlaceholderTitle = "Untitled"

// LineItem is one distinct (title, size) entry in the cart. Field names
// match the persisted wire form and must not change.
type LineItem struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
	Size  string  `json:"size"`
	Img   string  `json:"img"`
}

// Subtotal is the line's price x quantity.
func (li LineItem) Subtotal() float64 {
	return li.Price * float64(li.Qty)
}

// Cart is an ordered sequence of line items, unique by ID.
// Insertion order is preserved for display.
type Cart []LineItem

var whitespace = regexp.MustCompile(`\s+`)

// MakeLineID derives the identity key for a (title, size) pair.
// Runs of whitespace collapse to a single dash and the result is
// lowercased, so case and spacing variations of the same logical title
// merge into one line item. Punctuation is kept as-is: titles differing
// only by punctuation stay distinct.
func MakeLineID(title, size string) string {
	if size == "" {
		size = NoSize
	}
	return strings.ToLower(whitespace.ReplaceAllString(title+"::"+size, "-"))
}

// NewLineItem builds a valid line item from raw catalog attributes,
// applying the engine's floors: empty title becomes a placeholder,
// quantity below 1 becomes 1, and a non-finite or negative price
// becomes 0.
func NewLineItem(title string, price float64, qty int, size, img string) LineItem {
	title = strings.TrimSpace(title)
	if title == "" {
		title = PlaceholderTitle
	}
	if qty < 1 {
		qty = 1
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		price = 0
	}
	return LineItem{
		ID:    MakeLineID(title, size),
		Title: title,
		Price: price,
		Qty:   qty,
		Size:  size,
		Img:   img,
	}
}

// Upsert merges the item into the cart: an existing line with the same
// ID absorbs the quantity, otherwise the item is appended.
func (c Cart) Upsert(item LineItem) Cart {
	for i := range c {
		if c[i].ID == item.ID {
			c[i].Qty += item.Qty
			return c
		}
	}
	return append(c, item)
}

// Increment bumps the quantity of the identified line by one.
// Returns false when the id is not present.
func (c Cart) Increment(id string) (Cart, bool) {
	for i := range c {
		if c[i].ID == id {
			c[i].Qty++
			return c, true
		}
	}
	return c, false
}

// Decrement lowers the quantity of the identified line by one,
// clamping at 1. Decrementing never removes a line; removal is a
// distinct explicit action. Returns false when the id is not present.
func (c Cart) Decrement(id string) (Cart, bool) {
	for i := range c {
		if c[i].ID == id {
			if c[i].Qty > 1 {
				c[i].Qty--
			}
			return c, true
		}
	}
	return c, false
}

// Remove deletes the identified line. Returns false when the id is not
// present.
func (c Cart) Remove(id string) (Cart, bool) {
	for i := range c {
		if c[i].ID == id {
			return append(c[:i], c[i+1:]...), true
		}
	}
	return c, false
}

// Find returns the line with the given id.
func (c Cart) Find(id string) (LineItem, bool) {
	for i := range c {
		if c[i].ID == id {
			return c[i], true
		}
	}
	return LineItem{}, false
}

// Total is the sum of price x quantity over all lines. It is always
// computed fresh, never cached.
func (c Cart) Total() float64 {
	var total float64
	for i := range c {
		total += c[i].Subtotal()
	}
	return total
}

// Count is the total quantity across all lines, as shown on the badge.
func (c Cart) Count() int {
	var count int
	for i := range c {
		count += c[i].Qty
	}
	return count
}

// IsEmpty reports whether the cart holds no lines.
func (c Cart) IsEmpty() bool {
	return len(c) == 0
}
