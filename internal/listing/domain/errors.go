package domain

import "errors"

var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrForbidden        = errors.New("not allowed to modify this listing")
	ErrInvalidStatus    = errors.New("invalid listing status")
	ErrInvalidCategory  = errors.New("invalid listing category")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrUnsupportedPhoto = errors.New("unsupported photo type")
	ErrPhotoTooLarge    = errors.New("photo exceeds size limit")
	ErrStorageDisabled  = errors.New("photo storage is not configured")
)

// ErrCacheMiss is returned by Cache implementations when a key is absent.
var ErrCacheMiss = errors.New("key not found in cache")
