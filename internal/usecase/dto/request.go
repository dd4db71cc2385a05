package dto

// NearestRequest describes a proximity lookup around a point.
type NearestRequest struct {
	Lat      float64 `json:"lat" query:"lat" validate:"min=-90,max=90"`
	Lon      float64 `json:"lon" query:"lon" validate:"min=-180,max=180"`
	Page     int     `json:"page" query:"page" validate:"omitempty,min=1"`
	PerPage  int     `json:"per_page" query:"per_page" validate:"omitempty,min=1,max=100"`
	RadiusKm float64 `json:"radius_km" query:"radius_km" validate:"omitempty,min=0.1,max=100"`
}

// ListAvailableRequest pages through car parks with free lots.
type ListAvailableRequest struct {
	Page    int `json:"page" query:"page" validate:"omitempty,min=1"`
	PerPage int `json:"per_page" query:"per_page" validate:"omitempty,min=1,max=100"`
}
