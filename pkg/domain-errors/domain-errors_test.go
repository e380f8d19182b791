package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite covers the error primitives every layer relies on to
// carry a stable code from the store up to the HTTP boundary.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("message wins over code", func() {
		err := &Error{Code: CodeNotFound, Message: "registrant not found"}
		s.Equal("registrant not found", err.Error())
	})

	s.Run("falls back to code", func() {
		err := &Error{Code: CodeUnavailable}
		s.Equal("unavailable", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	s.True(errors.Is(New(CodeNotFound, "registrant not found"), &Error{Code: CodeNotFound}))
	s.False(errors.Is(New(CodeNotFound, "registrant not found"), &Error{Code: CodeInternal}))
	s.False((&Error{Code: CodeNotFound}).Is(errors.New("not found")))

	s.Run("through a wrapped chain", func() {
		inner := &Error{Code: CodeNotFound, Message: "no registrants found"}
		outer := fmt.Errorf("export: %w", inner)
		s.True(errors.Is(outer, &Error{Code: CodeNotFound}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps the code of a wrapped domain error", func() {
		wrapped := Wrap(New(CodeValidation, "email is required"), CodeInternal, "update payment status")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeValidation, domainErr.Code)
		s.Equal("update payment status", domainErr.Message)
	})

	s.Run("applies the given code to infrastructure errors", func() {
		driverErr := errors.New("connection refused")
		wrapped := Wrap(driverErr, CodeInternal, "failed to save registrant")

		s.True(HasCode(wrapped, CodeInternal))
		s.True(errors.Is(wrapped, driverErr))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.True(HasCode(New(CodeInvalidInput, "invalid registrant ID format"), CodeInvalidInput))
	s.False(HasCode(New(CodeInvalidInput, "invalid registrant ID format"), CodeNotFound))
	s.False(HasCode(errors.New("plain"), CodeNotFound))
	s.False(HasCode(nil, CodeNotFound))
}
