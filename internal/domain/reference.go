package domain

import (
	"fmt"
	"strings"
	"time"
)

// Reference entities (cost centers, account heads, GST states, events) are
// served by the generic CRUD factory; their shape lives in the resource
// registry rather than per-entity structs. Event is the one structured
// reference record.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidateLabelField checks the single semantic field of a reference entity
// (costCenter, accountHead, gstState).
func ValidateLabelField(field string, body map[string]any) error {
	raw, ok := body[field]
	if !ok {
		return fmt.Errorf("%s is required", field)
	}
	value, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%s must be a string", field)
	}
	value = strings.TrimSpace(value)
	if len(value) < 2 || len(value) > 100 {
		return fmt.Errorf("%s must be between 2 and 100 characters", field)
	}
	return nil
}

// ValidateEventBody checks an event create/update body.
func ValidateEventBody(body map[string]any) error {
	name, _ := body["name"].(string)
	if l := len(strings.TrimSpace(name)); l < 2 || l > 100 {
		return fmt.Errorf("name must be between 2 and 100 characters")
	}
	location, _ := body["location"].(string)
	if l := len(strings.TrimSpace(location)); l < 2 || l > 100 {
		return fmt.Errorf("location must be between 2 and 100 characters")
	}
	rawDate, ok := body["date"].(string)
	if !ok {
		return fmt.Errorf("date is required")
	}
	if _, err := time.Parse(time.RFC3339, rawDate); err != nil {
		return fmt.Errorf("date must be a valid RFC 3339 timestamp")
	}
	if desc, ok := body["description"].(string); ok && len(desc) > 500 {
		return fmt.Errorf("description must be at most 500 characters")
	}
	return nil
}
