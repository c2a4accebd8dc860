package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "targetkit/pkg/domain-errors"
)

// LimitsSuite pins the boundary: max passes, max+1 fails.
type LimitsSuite struct {
	suite.Suite
}

func TestLimitsSuite(t *testing.T) {
	suite.Run(t, new(LimitsSuite))
}

func (s *LimitsSuite) TestCheckSliceCount() {
	s.Run("passes when count equals max", func() {
		s.NoError(CheckSliceCount("options", 50, 50))
	})

	s.Run("passes when count is zero", func() {
		s.NoError(CheckSliceCount("options", 0, 50))
	})

	s.Run("fails when count exceeds max", func() {
		err := CheckSliceCount("options", 51, 50)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "too many options")
		s.Contains(err.Error(), "max 50 allowed")
	})
}

func (s *LimitsSuite) TestCheckStringLength() {
	s.Run("passes when length equals max", func() {
		s.NoError(CheckStringLength("name", strings.Repeat("a", MaxNameLength), MaxNameLength))
	})

	s.Run("counts characters, not bytes", func() {
		s.NoError(CheckStringLength("name", strings.Repeat("é", MaxNameLength), MaxNameLength))
	})

	s.Run("fails when length exceeds max", func() {
		err := CheckStringLength("name", strings.Repeat("a", MaxNameLength+1), MaxNameLength)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "name exceeds max length of 250")
	})
}
