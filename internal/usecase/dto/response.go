package dto

import (
	"time"

	"github.com/carpark-service/internal/domain"
)

// CarParkView is the external representation of a car park.
type CarParkView struct {
	CarParkNo           string   `json:"car_park_no"`
	Address             string   `json:"address"`
	Latitude            float64  `json:"latitude"`
	Longitude           float64  `json:"longitude"`
	TotalLots           int      `json:"total_lots"`
	AvailableLots       int      `json:"available_lots"`
	LotType             string   `json:"lot_type,omitempty"`
	CarParkType         string   `json:"car_park_type,omitempty"`
	TypeOfParkingSystem string   `json:"type_of_parking_system,omitempty"`
	ShortTermParking    string   `json:"short_term_parking,omitempty"`
	FreeParking         string   `json:"free_parking,omitempty"`
	NightParking        string   `json:"night_parking,omitempty"`
	CarParkDecks        string   `json:"car_park_decks,omitempty"`
	GantryHeight        string   `json:"gantry_height,omitempty"`
	CarParkBasement     string   `json:"car_park_basement,omitempty"`
	DistanceKm          *float64 `json:"distance_km,omitempty"`
}

// NearestResponse - car parks around a point, closest first.
type NearestResponse struct {
	CarParks []CarParkView `json:"car_parks"`
	Total    int           `json:"total"`
}

// AvailableResponse - one page of car parks with free lots.
type AvailableResponse struct {
	CarParks []CarParkView `json:"car_parks"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PerPage  int           `json:"per_page"`
}

// StatsResponse - store-level counters for the operational surface.
type StatsResponse struct {
	TotalActive      int64 `json:"total_active"`
	WithAvailability int64 `json:"with_availability"`
}

// ImportResult summarizes one bulk attribute import run.
type ImportResult struct {
	RunID      string        `json:"run_id"`
	Processed  int           `json:"processed"`
	Imported   int           `json:"imported"`
	Skipped    int           `json:"skipped"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"duration_ms"`
}

// SyncResult summarizes one availability feed sync run.
type SyncResult struct {
	RunID      string        `json:"run_id"`
	Received   int           `json:"received"`
	Updated    int64         `json:"updated"`
	Unmatched  int           `json:"unmatched"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"duration_ms"`
}

// ToCarParkView converts a domain car park, optionally attaching distance.
func ToCarParkView(cp *domain.CarPark, distanceKm *float64) CarParkView {
	return CarParkView{
		CarParkNo:           cp.CarParkNo,
		Address:             cp.Address,
		Latitude:            cp.Latitude,
		Longitude:           cp.Longitude,
		TotalLots:           cp.TotalLots,
		AvailableLots:       cp.AvailableLots,
		LotType:             cp.LotType,
		CarParkType:         cp.CarParkType,
		TypeOfParkingSystem: cp.TypeOfParkingSystem,
		ShortTermParking:    cp.ShortTermParking,
		FreeParking:         cp.FreeParking,
		NightParking:        cp.NightParking,
		CarParkDecks:        cp.CarParkDecks,
		GantryHeight:        cp.GantryHeight,
		CarParkBasement:     cp.CarParkBasement,
		DistanceKm:          distanceKm,
	}
}
