package models

import "time"

type HazardType string

const (
	HazardTypeAccident     HazardType = "accident"
	HazardTypeConstruction HazardType = "construction"
	HazardTypeClosure      HazardType = "closure"
	HazardTypeCongestion   HazardType = "congestion"
	HazardTypeWeather      HazardType = "weather"
	HazardTypeLane         HazardType = "lane"
	HazardTypeIncident     HazardType = "incident"
	HazardTypeOther        HazardType = "other"
)

// Critical hazard types escalate route scoring more heavily than others.
func (t HazardType) Critical() bool {
	return t == HazardTypeAccident || t == HazardTypeClosure || t == HazardTypeWeather
}

// Hazard is the canonical record every source is normalized into.
// Latitude/Longitude are guaranteed finite; records that fail coordinate
// extraction never make it past the normalizer.
type Hazard struct {
	ID          string     `json:"id"` // Unique ID from source (e.g., "mdot-17")
	Source      string     `json:"source"`
	Type        HazardType `json:"type"`
	Description string     `json:"description"`
	Impact      string     `json:"impact,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	CreatedAt   time.Time  `json:"created_at"` // when we ingested it
}
