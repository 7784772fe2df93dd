package remote

import (
	"encoding/json"
	"log"
	"time"

	"github.com/dispatch-console/backend/internal/model"
)

// bookingRow is the wire form of a booking. Numeric and boolean fields are
// kept raw and normalized in toModel.
type bookingRow struct {
	ID               string          `json:"id"`
	FullName         string          `json:"full_name"`
	PhoneNumber      string          `json:"phone_number"`
	AddressName      string          `json:"address_name"`
	Coordinates      string          `json:"coordinates"`
	WasteType        string          `json:"waste_type"`
	ItemTypes        []string        `json:"item_types"`
	EstimatedWeight  json.RawMessage `json:"estimated_weight"`
	LargeRecyclables json.RawMessage `json:"large_recyclables"`
	Status           json.RawMessage `json:"status"`
	Cancelled        json.RawMessage `json:"cancelled"`
	CancelledReason  *string         `json:"cancelled_reason"`
	LinerID          *string         `json:"liner_id"`
	City             string          `json:"city"`
	Schedule         string          `json:"schedule"`
	ScheduleDate     string          `json:"schedule_date"`
	Notes            *string         `json:"notes"`
	Items            []itemRow       `json:"items"`
	Commission       json.RawMessage `json:"commission"`
	BookingFee       json.RawMessage `json:"booking_fee"`
	PaymentMethod    string          `json:"payment_method"`
	GcashNumber      *string         `json:"gcash_number"`
	ImagePath        *string         `json:"image_path"`
}

type itemRow struct {
	Item     string          `json:"item"`
	Quantity json.RawMessage `json:"quantity"`
	Unit     string          `json:"unit"`
	Price    json.RawMessage `json:"price"`
}

// toModel normalizes a booking row. The second return is false when the row
// is unusable (no id or no valid schedule date); such rows are skipped
// without failing the batch.
func (r bookingRow) toModel() (model.Booking, bool) {
	if r.ID == "" {
		return model.Booking{}, false
	}

	scheduleDate, ok := dateOnly(r.ScheduleDate)
	if !ok {
		// fall back to deriving the date from the schedule timestamp
		scheduleDate, ok = dateOnly(r.Schedule)
		if !ok {
			return model.Booking{}, false
		}
	}

	b := model.Booking{
		ID:               r.ID,
		FullName:         r.FullName,
		PhoneNumber:      r.PhoneNumber,
		AddressName:      r.AddressName,
		WasteType:        r.WasteType,
		ItemTypes:        r.ItemTypes,
		EstimatedWeight:  amount(r.EstimatedWeight),
		LargeRecyclables: truthy(r.LargeRecyclables),
		Completed:        truthy(r.Status),
		Cancelled:        truthy(r.Cancelled),
		CancelledReason:  r.CancelledReason,
		LinerID:          r.LinerID,
		City:             r.City,
		ScheduleDate:     scheduleDate,
		Notes:            r.Notes,
		Commission:       amount(r.Commission),
		BookingFee:       amount(r.BookingFee),
		PaymentMethod:    r.PaymentMethod,
		GcashNumber:      r.GcashNumber,
		ImagePath:        r.ImagePath,
	}

	if ts, err := time.Parse(time.RFC3339, r.Schedule); err == nil {
		b.Schedule = ts
	}

	if r.Coordinates != "" {
		if coords, err := ParseCoordinates(r.Coordinates); err == nil {
			b.Coordinates = &coords
		} else {
			log.Printf("Booking %s has unparseable coordinates: %v", r.ID, err)
		}
	}

	for _, item := range r.Items {
		b.Items = append(b.Items, model.BookingItem{
			Item:     item.Item,
			Quantity: amount(item.Quantity),
			Unit:     item.Unit,
			Price:    amount(item.Price),
		})
	}

	return b, true
}

// amountRow is the wire form of a dated financial aggregate.
type amountRow struct {
	ScheduleDate string          `json:"schedule_date"`
	City         string          `json:"city"`
	Junkshop     string          `json:"junkshop"`
	Amount       json.RawMessage `json:"amount"`
}

// toModel normalizes an amount row; rows with invalid dates are excluded.
func (r amountRow) toModel() (model.AmountRecord, bool) {
	date, ok := dateOnly(r.ScheduleDate)
	if !ok {
		return model.AmountRecord{}, false
	}
	return model.AmountRecord{
		ScheduleDate: date,
		City:         r.City,
		Junkshop:     r.Junkshop,
		Amount:       amount(r.Amount),
	}, true
}

// collectorRow is the wire form of a live collector position.
type collectorRow struct {
	CollectorID string `json:"collector_id"`
	FullName    string `json:"full_name"`
	Location    string `json:"location"`
}

func (r collectorRow) toModel() (model.CollectorLocation, bool) {
	if r.CollectorID == "" {
		return model.CollectorLocation{}, false
	}
	coords, err := ParseCoordinates(r.Location)
	if err != nil {
		log.Printf("Collector %s has unparseable location: %v", r.CollectorID, err)
		return model.CollectorLocation{}, false
	}
	return model.CollectorLocation{
		CollectorID: r.CollectorID,
		FullName:    r.FullName,
		Location:    coords,
	}, true
}

// paymentRow is the wire form of a recent payment entry.
type paymentRow struct {
	Junkshop     string          `json:"junkshop"`
	Datetime     string          `json:"datetime"`
	ScheduleDate string          `json:"schedule_date"`
	City         string          `json:"city"`
	TotalAmount  json.RawMessage `json:"total_amount"`
}

func (r paymentRow) toModel() (model.RecentPayment, bool) {
	date, ok := dateOnly(r.ScheduleDate)
	if !ok {
		return model.RecentPayment{}, false
	}
	return model.RecentPayment{
		Junkshop:     r.Junkshop,
		Datetime:     r.Datetime,
		ScheduleDate: date,
		City:         r.City,
		TotalAmount:  amount(r.TotalAmount),
	}, true
}
