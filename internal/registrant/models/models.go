package models

import (
	"time"

	id "regdesk/pkg/domain"
)

// Registrant is a single form submission. PaymentStatus is the only field
// that changes after creation.
type Registrant struct {
	ID            id.RegistrantID `json:"id"`
	FullName      string          `json:"fullName"`
	HouseName     string          `json:"houseName"`
	Place         string          `json:"place"`
	Parish        string          `json:"parish"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	DOB           *time.Time      `json:"dob,omitempty"`
	Experience    *float64        `json:"experience,omitempty"`
	Accommodation string          `json:"accommodation"`
	HomeLocation  string          `json:"homeLocation"`
	Gender        string          `json:"gender"`
	Category      string          `json:"category"`
	SpouseName    string          `json:"spouseName"`
	SpousePhone   string          `json:"spousePhone"`
	NumChildren   int             `json:"numChildren"`
	Children      []Dependent     `json:"children"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Dependent is a child listed on a registration. It has no identity of its own.
type Dependent struct {
	Name   string   `json:"name"`
	Age    *float64 `json:"age,omitempty"`
	Gender string   `json:"gender"`
}

// SetPaymentStatus overwrites the payment status and bumps UpdatedAt.
func (r *Registrant) SetPaymentStatus(status PaymentStatus, now time.Time) {
	r.PaymentStatus = status
	r.UpdatedAt = now
}

// Clone returns a deep copy so stores can hand out records without sharing
// the children slice or pointer fields.
func (r *Registrant) Clone() *Registrant {
	if r == nil {
		return nil
	}
	c := *r
	if r.DOB != nil {
		dob := *r.DOB
		c.DOB = &dob
	}
	if r.Experience != nil {
		exp := *r.Experience
		c.Experience = &exp
	}
	c.Children = make([]Dependent, len(r.Children))
	for i, d := range r.Children {
		c.Children[i] = d
		if d.Age != nil {
			age := *d.Age
			c.Children[i].Age = &age
		}
	}
	return &c
}
