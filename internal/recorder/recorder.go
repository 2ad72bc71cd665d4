package recorder

import "time"

// CrossoverEvent is one detected crossover, confirmed or not.
type CrossoverEvent struct {
	Instrument string
	Kind       string // "PRICE" or "AVERAGE_STACK"
	Direction  string // "BULLISH" or "BEARISH"
	Close      float64
	Trigger    string
	DetectedAt time.Time
}

// AlertRecord is one raised alert and the outcome of its delivery.
type AlertRecord struct {
	ID             string    `json:"id"`
	Instrument     string    `json:"instrument"`
	Direction      string    `json:"direction"`
	Close          float64   `json:"close"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Message        string    `json:"message"`
	Trigger        string    `json:"trigger"`
	Delivered      bool      `json:"delivered"`
	DeliveryError  string    `json:"delivery_error,omitempty"`
	FiredAt        time.Time `json:"fired_at"`
}

// Recorder keeps an audit log of detections and alerts. It is write-mostly;
// correlation state is never rebuilt from it.
type Recorder interface {
	RecordCrossover(evt *CrossoverEvent) error
	RecordAlert(rec *AlertRecord) error
	RecentAlerts(instrument string, limit int) ([]AlertRecord, error)
	Close() error
}
