package errors

import "net/http"

var (
	ErrCarParkNotFound = New(
		"CARPARK_NOT_FOUND",
		"Car park not found",
		http.StatusNotFound,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidPageParameters = New(
		"INVALID_PAGE_PARAMETERS",
		"Invalid page parameters",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrCoordinateOutOfBounds = New(
		"COORDINATE_OUT_OF_BOUNDS",
		"Converted coordinate falls outside configured bounds",
		http.StatusUnprocessableEntity,
	)

	ErrUpstreamUnavailable = New(
		"UPSTREAM_UNAVAILABLE",
		"External feed unreachable or timed out",
		http.StatusBadGateway,
	)

	ErrImportInProgress = New(
		"IMPORT_IN_PROGRESS",
		"An ingestion run is already in progress",
		http.StatusConflict,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
