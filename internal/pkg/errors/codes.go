package errors

import "net/http"

var (
	ErrIndicatorNotFound = New(
		"INDICATOR_NOT_FOUND",
		"Indicator not found",
		http.StatusNotFound,
	)

	ErrNoData = New(
		"NO_DATA",
		"No indicator values for the requested period and level",
		http.StatusNotFound,
	)

	ErrInvalidGeometry = New(
		"INVALID_GEOMETRY",
		"Invalid feature geometry",
		http.StatusBadRequest,
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
