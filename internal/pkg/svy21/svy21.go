// Package svy21 converts SVY21 plane coordinates (easting/northing) to WGS84
// latitude/longitude. The projection is a Transverse Mercator on the WGS84
// ellipsoid with the published SVY21 origin; the inverse series used here is an
// approximation and is treated as such.
package svy21

import (
	"math"

	"github.com/carpark-service/internal/pkg/errors"
)

// SVY21 projection parameters.
const (
	a = 6378137.0           // semi-major axis
	f = 1 / 298.257223563   // flattening
	k = 1.0                 // scale factor

	originLat = 1.366666     // origin latitude, degrees
	originLon = 103.833333   // origin longitude, degrees
	falseN    = 38744.572    // false northing, metres
	falseE    = 28001.642    // false easting, metres
)

// Derived ellipsoid constants.
var (
	b  = a * (1 - f)
	e2 = 2*f - f*f
	e4 = e2 * e2
	e6 = e4 * e2

	a0 = 1 - e2/4 - 3*e4/64 - 5*e6/256
	a2 = (3.0 / 8.0) * (e2 + e4/4 + 15*e6/128)
	a4 = (15.0 / 256.0) * (e4 + 3*e6/4)
	a6 = 35 * e6 / 3072

	n  = (a - b) / (a + b)
	n2 = n * n
	n3 = n2 * n
	n4 = n2 * n2

	g = a * (1 - n) * (1 - n2) * (1 + 9*n2/4 + 225*n4/64) * (math.Pi / 180)
)

// Bounds is the geographic envelope a converted coordinate must fall inside.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// SingaporeBounds covers the island with a small margin, the default envelope
// for the local projection.
var SingaporeBounds = Bounds{
	MinLat: 1.13,
	MaxLat: 1.47,
	MinLon: 103.59,
	MaxLon: 104.07,
}

func (bo Bounds) contains(lat, lon float64) bool {
	return lat >= bo.MinLat && lat <= bo.MaxLat && lon >= bo.MinLon && lon <= bo.MaxLon
}

// Converter converts plane coordinates and validates the result against its
// bounds. The zero value is not usable; use New.
type Converter struct {
	bounds Bounds
}

func New(bounds Bounds) *Converter {
	return &Converter{bounds: bounds}
}

// ToWGS84 converts an SVY21 (easting, northing) pair to (latitude, longitude)
// in decimal degrees, rounded to 8 decimal places. A non-finite result or one
// outside the configured bounds is an error, never a substituted default.
func (c *Converter) ToWGS84(easting, northing float64) (float64, float64, error) {
	lat, lon := inverse(easting, northing)

	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0, 0, errors.ErrCoordinateOutOfBounds.WithDetails(map[string]interface{}{
			"x": easting,
			"y": northing,
		})
	}

	lat = round8(lat)
	lon = round8(lon)

	if !c.bounds.contains(lat, lon) {
		return 0, 0, errors.ErrCoordinateOutOfBounds.WithDetails(map[string]interface{}{
			"latitude":  lat,
			"longitude": lon,
		})
	}

	return lat, lon, nil
}

// inverse is the Transverse Mercator inverse projection series.
func inverse(easting, northing float64) (float64, float64) {
	nPrime := northing - falseN
	mPrime := calcM(originLat) + nPrime/k
	sigma := mPrime * math.Pi / (180 * g)

	latPrime := sigma +
		(3*n/2-27*n3/32)*math.Sin(2*sigma) +
		(21*n2/16-55*n4/32)*math.Sin(4*sigma) +
		(151*n3/96)*math.Sin(6*sigma) +
		(1097*n4/512)*math.Sin(8*sigma)

	sinLat := math.Sin(latPrime)
	sin2Lat := sinLat * sinLat
	rhoPrime := calcRho(sin2Lat)
	vPrime := calcV(sin2Lat)
	psiPrime := vPrime / rhoPrime
	psi2 := psiPrime * psiPrime
	psi3 := psi2 * psiPrime
	psi4 := psi2 * psi2
	tPrime := math.Tan(latPrime)
	t2 := tPrime * tPrime
	t4 := t2 * t2
	t6 := t4 * t2

	ePrime := easting - falseE
	x := ePrime / (k * vPrime)
	x2 := x * x
	x3 := x2 * x
	x5 := x3 * x2
	x7 := x5 * x2

	// Latitude terms.
	latFactor := tPrime / (k * rhoPrime)
	latTerm1 := latFactor * ePrime * x / 2
	latTerm2 := latFactor * ePrime * x3 / 24 *
		(-4*psi2 + 9*psiPrime*(1-t2) + 12*t2)
	latTerm3 := latFactor * ePrime * x5 / 720 *
		(8*psi4*(11-24*t2) - 12*psi3*(21-71*t2) +
			15*psi2*(15-98*t2+15*t4) + 180*psiPrime*(5*t2-3*t4) + 360*t4)
	latTerm4 := latFactor * ePrime * x7 / 40320 *
		(1385 - 3633*t2 + 4095*t4 + 1575*t6)

	lat := latPrime - latTerm1 + latTerm2 - latTerm3 + latTerm4

	// Longitude terms.
	secLat := 1 / math.Cos(latPrime)
	lonTerm1 := x * secLat
	lonTerm2 := x3 * secLat / 6 * (psiPrime + 2*t2)
	lonTerm3 := x5 * secLat / 120 *
		(-4*psi3*(1-6*t2) + psi2*(9-68*t2) + 72*psiPrime*t2 + 24*t4)
	lonTerm4 := x7 * secLat / 5040 *
		(61 + 662*t2 + 1320*t4 + 720*t6)

	lon := originLon*math.Pi/180 + lonTerm1 - lonTerm2 + lonTerm3 - lonTerm4

	return lat * 180 / math.Pi, lon * 180 / math.Pi
}

// calcM returns the meridian distance for a latitude in degrees.
func calcM(latDeg float64) float64 {
	latRad := latDeg * math.Pi / 180
	return a * (a0*latRad - a2*math.Sin(2*latRad) + a4*math.Sin(4*latRad) - a6*math.Sin(6*latRad))
}

// calcRho returns the radius of curvature in the meridian plane.
func calcRho(sin2Lat float64) float64 {
	num := a * (1 - e2)
	denom := math.Pow(1-e2*sin2Lat, 1.5)
	return num / denom
}

// calcV returns the radius of curvature in the prime vertical.
func calcV(sin2Lat float64) float64 {
	return a / math.Sqrt(1-e2*sin2Lat)
}

func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
