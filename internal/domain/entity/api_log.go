package entity

import "time"

// APILog represents a log entry for a request sent to the SignIt API
type APILog struct {
	ID           int64     `json:"id"`
	RequestID    string    `json:"request_id,omitempty"`
	Endpoint     string    `json:"endpoint"`
	Method       string    `json:"method"`
	RequestBody  string    `json:"request_body"`
	ResponseBody string    `json:"response_body"`
	StatusCode   int       `json:"status_code"`
	Duration     int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsSuccess reports whether the logged call returned a 2xx status
func (l *APILog) IsSuccess() bool {
	return l.StatusCode >= 200 && l.StatusCode < 300
}
