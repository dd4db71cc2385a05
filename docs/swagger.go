// Package docs Car Park Availability Service API.
//
// Service answering "where can I park near me right now". Car park
// attributes and positions come from a bulk CSV feed, live lot counts from
// a streaming availability feed. Lookups are served from a Redis geo index
// backed by PostgreSQL.
//
// Main capabilities:
// - Nearest car parks with free lots, ordered by distance
// - Paged listing of car parks with availability
// - Bulk attribute import and live availability sync
// - Soft delete and restore of car park records
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
