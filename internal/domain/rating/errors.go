package rating

import (
	"errors"

	"ratingserver/internal/domain/repositories"
)

// Доменные ошибки для Rating Domain
var (
	ErrInvalidProviderKey  = errors.New("invalid provider key")
	ErrInvalidRatingValue  = errors.New("rating value must be between 0 and 5")
	ErrStoreUnavailable    = repositories.ErrStoreUnavailable
	ErrExternalFetchFailed = errors.New("external rating fetch failed")
	ErrUnauthorized        = errors.New("invalid admin key")
	ErrInvalidTables       = errors.New("invalid rating tables")
)
