package models

// WeatherSnapshot holds current conditions at one query point.
// VisibilityMiles is nil when the provider omits it.
type WeatherSnapshot struct {
	TemperatureF        float64  `json:"temperature_f"`
	FeelsLikeF          float64  `json:"feels_like_f"`
	Condition           string   `json:"condition"` // e.g. "Rain", "Fog", "Clear"
	Description         string   `json:"description"`
	HumidityPct         float64  `json:"humidity_pct"`
	WindMph             float64  `json:"wind_mph"`
	VisibilityMiles     *float64 `json:"visibility_miles,omitempty"`
	PrecipitationInches float64  `json:"precipitation_inches"`
}
