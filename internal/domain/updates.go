package domain

import "time"

// ProductFieldUpdate is a field-level overwrite applied by inbound product
// webhooks. Nil pointers mean "field absent from the event, keep stored
// value". Each event is treated as the latest absolute truth for the fields
// it carries; there is no ordering guarantee between events.
type ProductFieldUpdate struct {
	Name        *string
	Description *string
	Image       *string
	Price       *float64
	Variants    []map[string]interface{} // non-nil replaces the stored list
	Discontinue bool                     // forces stock=0, inStock=false
	UpdateType  string
	UpdatedAt   time.Time
}
