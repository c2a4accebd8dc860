package validation

import (
	"fmt"
	"unicode/utf8"

	dErrors "targetkit/pkg/domain-errors"
)

// MaxBodySize is the default request body limit (64 KB).
const MaxBodySize = 64 * 1024

// Field limits enforced before a request reaches the upstream API.
const (
	// MaxNameLength matches the upstream limit on offer and activity names.
	MaxNameLength = 250

	// MaxOfferContentLength bounds HTML offer content.
	MaxOfferContentLength = 32 * 1024

	// MaxOptionUpdates is the most option remaps accepted in one call.
	MaxOptionUpdates = 50
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed max characters.
func CheckStringLength(fieldName, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
