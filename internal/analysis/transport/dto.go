// Package transport defines the request and response DTOs for the analysis
// HTTP API.
package transport

// LocationAnalysisRequest asks for the spatial context of one location.
// Callers supply either a coordinate pair or a free-form address.
type LocationAnalysisRequest struct {
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Address     string   `json:"address" validate:"omitempty,min=3,max=500"`
	RadiusMiles float64  `json:"radiusMiles" validate:"omitempty,gt=0,lte=5"`
	Factors     []string `json:"factors" validate:"omitempty,dive,oneof=proximity schools transit crime development propertyValues"`
}

// HasCoordinates reports whether both coordinate fields were supplied.
func (r LocationAnalysisRequest) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// RefreshRequest schedules a background cache refresh for a coordinate so
// the next read does not pay the provider fan-out.
type RefreshRequest struct {
	Latitude     float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude    float64 `json:"longitude" validate:"gte=-180,lte=180"`
	RadiusMiles  float64 `json:"radiusMiles" validate:"omitempty,gt=0,lte=5"`
	DelaySeconds int     `json:"delaySeconds" validate:"omitempty,gte=0,lte=86400"`
}
