package graphql

import "fmt"

// LimitConfig defines limits for list results
type LimitConfig struct {
	DefaultLimit int // used when a list field has no limit argument
	MaxLimit     int // largest limit a query may request
}

// DefaultLimitConfig allows every device of a full API extraction
func DefaultLimitConfig() *LimitConfig {
	return &LimitConfig{DefaultLimit: 500, MaxLimit: 1000}
}

// ValidateLimitConfig validates the limit configuration
func ValidateLimitConfig(config *LimitConfig) error {
	if config.MaxLimit <= 0 {
		return fmt.Errorf("max limit must be greater than 0, got %d", config.MaxLimit)
	}
	if config.DefaultLimit > config.MaxLimit {
		return fmt.Errorf("default limit (%d) cannot exceed max limit (%d)", config.DefaultLimit, config.MaxLimit)
	}
	if config.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be greater than 0, got %d", config.DefaultLimit)
	}
	return nil
}

// applyLimit applies default and max limit constraints to a limit value
func applyLimit(requestedLimit int, config *LimitConfig) int {
	// If no limit specified or negative, use default
	if requestedLimit < 0 {
		return config.DefaultLimit
	}

	// If limit is 0, return 0 (empty results)
	if requestedLimit == 0 {
		return 0
	}

	// Cap at max limit
	if requestedLimit > config.MaxLimit {
		return config.MaxLimit
	}

	return requestedLimit
}
