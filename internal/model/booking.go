// Package model contains the domain models shared across the console.
package model

import "time"

// Coordinates is a parsed latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BookingItem is a single priced line item on a booking.
type BookingItem struct {
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
}

// Subtotal returns the line value of the item.
func (i BookingItem) Subtotal() float64 {
	return i.Quantity * i.Price
}

// Booking represents a scheduled waste-pickup request.
// Rows arrive from the query service already normalized: the inconsistent
// boolean/string status encoding is collapsed into Completed, and malformed
// coordinates are left nil rather than failing the whole row.
type Booking struct {
	ID               string        `json:"id"`
	FullName         string        `json:"full_name"`
	PhoneNumber      string        `json:"phone_number"`
	AddressName      string        `json:"address_name"`
	Coordinates      *Coordinates  `json:"coordinates,omitempty"`
	WasteType        string        `json:"waste_type"`
	ItemTypes        []string      `json:"item_types"`
	EstimatedWeight  float64       `json:"estimated_weight"`
	LargeRecyclables bool          `json:"large_recyclables"`
	Completed        bool          `json:"completed"`
	Cancelled        bool          `json:"cancelled"`
	CancelledReason  *string       `json:"cancelled_reason,omitempty"`
	LinerID          *string       `json:"liner_id,omitempty"`
	City             string        `json:"city"`
	Schedule         time.Time     `json:"schedule"`
	ScheduleDate     string        `json:"schedule_date"`
	Notes            *string       `json:"notes,omitempty"`
	Items            []BookingItem `json:"items"`
	Commission       float64       `json:"commission"`
	BookingFee       float64       `json:"booking_fee"`
	PaymentMethod    string        `json:"payment_method"`
	GcashNumber      *string       `json:"gcash_number,omitempty"`
	ImagePath        *string       `json:"image_path,omitempty"`
}

// Assigned reports whether a liner has been assigned to the booking.
func (b *Booking) Assigned() bool {
	return b.LinerID != nil && *b.LinerID != ""
}

// TradeValue returns the summed value of the booking's line items.
func (b *Booking) TradeValue() float64 {
	var total float64
	for _, item := range b.Items {
		total += item.Subtotal()
	}
	return total
}
