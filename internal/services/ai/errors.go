package ai

import "errors"

var (
	ErrUpstreamUnavailable = errors.New("AI provider is currently unavailable") // 502
	ErrNotConfigured       = errors.New("AI provider is not configured")        // 503
	ErrInvalidInput        = errors.New("invalid input parameters")             // 400
)
