package dispatch

import "time"

// Resource identifies one independently polled dataset. Each resource has
// its own timer, its own lifecycle state and its own sequence counter;
// nothing synchronizes one resource's poll with another's.
type Resource string

const (
	ResourceBookings   Resource = "bookings"
	ResourceRoster     Resource = "roster"
	ResourceCollectors Resource = "collectors"
	ResourceCities     Resource = "cities"
)

// ResourceStatus is a polled resource's lifecycle state. A resource returns
// to fetching on every timer tick regardless of the prior outcome; there is
// no backoff.
type ResourceStatus string

const (
	StatusIdle     ResourceStatus = "idle"
	StatusFetching ResourceStatus = "fetching"
	StatusReady    ResourceStatus = "ready"
	StatusFailed   ResourceStatus = "failed"
)

// resourceState is the poll bookkeeping for one resource, guarded by the
// synchronizer mutex.
type resourceState struct {
	status   ResourceStatus
	lastErr  error
	lastSync time.Time

	// issued is the sequence number of the most recently started fetch;
	// applied is the highest sequence whose response has been accepted.
	// A response with a sequence at or below applied is stale (a newer
	// response already landed) and is discarded instead of applied.
	issued  uint64
	applied uint64
}

// ResourceView is the externally visible state of a polled resource.
type ResourceView struct {
	Resource Resource       `json:"resource"`
	Status   ResourceStatus `json:"status"`
	LastSync *time.Time     `json:"last_sync,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func (rs *resourceState) view(res Resource) ResourceView {
	v := ResourceView{Resource: res, Status: rs.status}
	if !rs.lastSync.IsZero() {
		t := rs.lastSync
		v.LastSync = &t
	}
	if rs.lastErr != nil {
		v.Error = rs.lastErr.Error()
	}
	return v
}
