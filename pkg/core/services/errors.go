package services

import "errors"

var (
	ErrLinkNotFound         = errors.New("link not found")
	ErrLinkInactive         = errors.New("link is not active")
	ErrInvalidURL           = errors.New("invalid url")
	ErrInvalidCustomPath    = errors.New("custom path may only contain letters, digits, '-' and '_'")
	ErrCustomPathTaken      = errors.New("custom path already exists")
	ErrCodeGenerationFailed = errors.New("failed to generate unique short code")
	ErrInvalidRule          = errors.New("invalid redirect rule")
	ErrInvalidStatus        = errors.New("invalid link status")
)
