package validation

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "regdesk/pkg/domain-errors"
)

type presenceFixture struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Phone    string `json:"phone"`
}

type PresenceSuite struct {
	suite.Suite
}

func TestPresenceSuite(t *testing.T) {
	suite.Run(t, new(PresenceSuite))
}

func (s *PresenceSuite) TestPassesWhenRequiredFieldsPresent() {
	s.NoError(Struct(&presenceFixture{FullName: "A B", Email: "a@b.com"}))
}

func (s *PresenceSuite) TestReportsJSONFieldName() {
	err := Struct(&presenceFixture{FullName: "A B"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal("email is required", err.Error())
}

func (s *PresenceSuite) TestReportsFirstMissingField() {
	err := Struct(&presenceFixture{})
	s.Require().Error(err)
	s.Equal("fullName is required", err.Error())
}

func (s *PresenceSuite) TestNonStructInput() {
	err := Struct("not a struct")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}
