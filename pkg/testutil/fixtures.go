package testutil

import (
	"time"

	"github.com/google/uuid"

	"regdesk/internal/registrant/models"
	id "regdesk/pkg/domain"
)

// TestIDs provides pre-generated IDs for deterministic test data.
var TestIDs = struct {
	RegistrantID1 id.RegistrantID
	RegistrantID2 id.RegistrantID
}{
	RegistrantID1: id.RegistrantID(uuid.MustParse("11111111-1111-4111-8111-111111111111")),
	RegistrantID2: id.RegistrantID(uuid.MustParse("22222222-2222-4222-8222-222222222222")),
}

// RegistrantBuilder provides a fluent interface for building test registrants.
type RegistrantBuilder struct {
	registrant *models.Registrant
}

// NewRegistrantBuilder creates a RegistrantBuilder with sensible defaults.
func NewRegistrantBuilder() *RegistrantBuilder {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &RegistrantBuilder{
		registrant: &models.Registrant{
			ID:            id.NewRegistrantID(),
			FullName:      "Anna Joseph",
			HouseName:     "Rose Villa",
			Place:         "Kottayam",
			Parish:        "St. Mary's",
			Email:         "anna@example.org",
			Phone:         "9000000000",
			Accommodation: "Required",
			Gender:        "Female",
			Category:      "Family",
			Children:      []models.Dependent{},
			PaymentStatus: models.PaymentStatusNo,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

func (b *RegistrantBuilder) WithID(registrantID id.RegistrantID) *RegistrantBuilder {
	b.registrant.ID = registrantID
	return b
}

func (b *RegistrantBuilder) WithName(name string) *RegistrantBuilder {
	b.registrant.FullName = name
	return b
}

func (b *RegistrantBuilder) WithEmail(email string) *RegistrantBuilder {
	b.registrant.Email = email
	return b
}

func (b *RegistrantBuilder) WithPaymentStatus(status models.PaymentStatus) *RegistrantBuilder {
	b.registrant.PaymentStatus = status
	return b
}

func (b *RegistrantBuilder) WithDOB(dob time.Time) *RegistrantBuilder {
	b.registrant.DOB = &dob
	return b
}

func (b *RegistrantBuilder) WithExperience(years float64) *RegistrantBuilder {
	b.registrant.Experience = &years
	return b
}

// WithChild appends a dependent and keeps NumChildren in step with it.
func (b *RegistrantBuilder) WithChild(name string, age float64, gender string) *RegistrantBuilder {
	b.registrant.Children = append(b.registrant.Children, models.Dependent{Name: name, Age: &age, Gender: gender})
	b.registrant.NumChildren = len(b.registrant.Children)
	return b
}

func (b *RegistrantBuilder) WithSpouse(name, phone string) *RegistrantBuilder {
	b.registrant.SpouseName = name
	b.registrant.SpousePhone = phone
	return b
}

// CreatedAt sets both timestamps.
func (b *RegistrantBuilder) CreatedAt(t time.Time) *RegistrantBuilder {
	b.registrant.CreatedAt = t
	b.registrant.UpdatedAt = t
	return b
}

func (b *RegistrantBuilder) Build() *models.Registrant {
	return b.registrant
}
