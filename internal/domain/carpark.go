package domain

import (
	"sort"
	"time"
)

// SystemUser is recorded in audit columns for writes made by the feeds.
const SystemUser = "SYSTEM"

// CarPark is the canonical car park record. The backing store is authoritative;
// the geo cache only mirrors code + position.
type CarPark struct {
	ID                  int64      `json:"id" db:"id"`
	CarParkNo           string     `json:"car_park_no" db:"car_park_no"`
	Address             string     `json:"address" db:"address"`
	Latitude            float64    `json:"latitude" db:"latitude"`
	Longitude           float64    `json:"longitude" db:"longitude"`
	TotalLots           int        `json:"total_lots" db:"total_lots"`
	AvailableLots       int        `json:"available_lots" db:"available_lots"`
	LotType             string     `json:"lot_type" db:"lot_type"`
	CarParkType         string     `json:"car_park_type" db:"car_park_type"`
	TypeOfParkingSystem string     `json:"type_of_parking_system" db:"type_of_parking_system"`
	ShortTermParking    string     `json:"short_term_parking" db:"short_term_parking"`
	FreeParking         string     `json:"free_parking" db:"free_parking"`
	NightParking        string     `json:"night_parking" db:"night_parking"`
	CarParkDecks        string     `json:"car_park_decks" db:"car_park_decks"`
	GantryHeight        string     `json:"gantry_height" db:"gantry_height"`
	CarParkBasement     string     `json:"car_park_basement" db:"car_park_basement"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	CreatedBy           string     `json:"created_by" db:"created_by"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
	UpdatedBy           string     `json:"updated_by" db:"updated_by"`
	DeletedAt           *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted reports whether the soft-delete marker is set.
func (cp *CarPark) IsDeleted() bool {
	return cp.DeletedAt != nil
}

// HasAvailability reports whether the car park currently has free lots.
func (cp *CarPark) HasAvailability() bool {
	return cp.AvailableLots > 0
}

// AvailabilitySample is one parsed item from the live availability feed.
// It is never persisted as-is, only applied as an update to an existing record.
type AvailabilitySample struct {
	CarParkNo     string `json:"carpark_number"`
	TotalLots     int    `json:"total_lots"`
	AvailableLots int    `json:"lots_available"`
	LotType       string `json:"lot_type"`
}

// GeoEntry is the cache projection of a located car park: code + position only.
type GeoEntry struct {
	CarParkNo string  `json:"car_park_no"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// CarParkDistance is a radius-search hit from the geo index.
type CarParkDistance struct {
	CarParkNo  string  `json:"car_park_no"`
	DistanceKm float64 `json:"distance_km"`
}

// SortByDistance orders hits by ascending distance, ties broken by car park
// number ascending so results are deterministic.
func SortByDistance(hits []CarParkDistance) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceKm != hits[j].DistanceKm {
			return hits[i].DistanceKm < hits[j].DistanceKm
		}
		return hits[i].CarParkNo < hits[j].CarParkNo
	})
}
