package event

import "time"

// Metadata carries contextual information attached to an event.
type Metadata struct {
	UserID        string    `json:"user_id,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	CausationID   string    `json:"causation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp,omitempty"`
	IPAddress     string    `json:"ip_address,omitempty"`
	UserAgent     string    `json:"user_agent,omitempty"`
}

// NewMetadata creates metadata stamped with the current time.
func NewMetadata(userID, correlationID, causationID string) Metadata {
	return Metadata{
		UserID:        userID,
		CorrelationID: correlationID,
		CausationID:   causationID,
		Timestamp:     time.Now(),
	}
}

// WithIPAddress returns a copy with the client IP set.
func (m Metadata) WithIPAddress(ip string) Metadata {
	m.IPAddress = ip
	return m
}

// WithUserAgent returns a copy with the client user agent set.
func (m Metadata) WithUserAgent(ua string) Metadata {
	m.UserAgent = ua
	return m
}
