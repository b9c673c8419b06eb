package trace

// StateRecord captures one device's observable state at a slot boundary.
type StateRecord struct {
	Slot     int64   `json:"slot"`
	DeviceID int     `json:"device_id"`
	State    string  `json:"state"`
	Energy   float64 `json:"energy"`
}
