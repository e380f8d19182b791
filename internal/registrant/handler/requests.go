package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"regdesk/internal/registrant/models"
	"regdesk/internal/registrant/service"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/httputil"
	"regdesk/pkg/platform/validation"
)

// HTTP Request DTOs. Converted to service commands before processing.

// SubmitRequest is the registration form body.
type SubmitRequest struct {
	FullName      string         `json:"fullName" validate:"required"`
	HouseName     string         `json:"houseName"`
	Place         string         `json:"place"`
	Parish        string         `json:"parish"`
	Email         string         `json:"email" validate:"required"`
	Phone         string         `json:"phone"`
	DOB           flexDate       `json:"dob"`
	Experience    flexNumber     `json:"experience"`
	Accommodation string         `json:"accommodation"`
	HomeLocation  string         `json:"homeLocation"`
	Gender        string         `json:"gender"`
	Category      string         `json:"category"`
	SpouseName    string         `json:"spouseName"`
	SpousePhone   string         `json:"spousePhone"`
	NumChildren   flexNumber     `json:"numChildren"`
	Children      []ChildRequest `json:"children"`
	PaymentOption string         `json:"paymentOption"`
	// Accepted so older forms still decode; the stored status always comes
	// from PaymentOption.
	PaymentStatus string `json:"paymentStatus"`
}

type ChildRequest struct {
	Name   string     `json:"name"`
	Age    flexNumber `json:"age"`
	Gender string     `json:"gender"`
}

func (r *SubmitRequest) Normalize() {
	if r == nil {
		return
	}
	for _, f := range []*string{
		&r.FullName, &r.HouseName, &r.Place, &r.Parish, &r.Email, &r.Phone,
		&r.Accommodation, &r.HomeLocation, &r.Gender, &r.Category,
		&r.SpouseName, &r.SpousePhone, &r.PaymentOption,
	} {
		*f = strings.TrimSpace(*f)
	}
	for i := range r.Children {
		r.Children[i].Name = strings.TrimSpace(r.Children[i].Name)
		r.Children[i].Gender = strings.TrimSpace(r.Children[i].Gender)
	}
}

func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Struct(r); err != nil {
		return err
	}
	if _, err := r.numChildren(); err != nil {
		return err
	}
	return nil
}

func (r *SubmitRequest) numChildren() (int, error) {
	if r.NumChildren.Value == nil {
		return 0, nil
	}
	n := *r.NumChildren.Value
	if n != math.Trunc(n) || n < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "numChildren must be a non-negative whole number")
	}
	if n > math.MaxInt32 {
		return 0, dErrors.New(dErrors.CodeValidation, "numChildren is too large")
	}
	return int(n), nil
}

// ToCommand converts the request into a service command. Call after Validate.
func (r *SubmitRequest) ToCommand() *service.SubmitCommand {
	numChildren, _ := r.numChildren()
	children := make([]models.Dependent, 0, len(r.Children))
	for _, c := range r.Children {
		children = append(children, models.Dependent{
			Name:   c.Name,
			Age:    c.Age.Value,
			Gender: c.Gender,
		})
	}
	return &service.SubmitCommand{
		FullName:      r.FullName,
		HouseName:     r.HouseName,
		Place:         r.Place,
		Parish:        r.Parish,
		Email:         r.Email,
		Phone:         r.Phone,
		DOB:           r.DOB.Value,
		Experience:    r.Experience.Value,
		Accommodation: r.Accommodation,
		HomeLocation:  r.HomeLocation,
		Gender:        r.Gender,
		Category:      r.Category,
		SpouseName:    r.SpouseName,
		SpousePhone:   r.SpousePhone,
		NumChildren:   numChildren,
		Children:      children,
		PaymentOption: r.PaymentOption,
	}
}

type UpdatePaymentStatusRequest struct {
	Email         string `json:"email" validate:"required"`
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

func (r *UpdatePaymentStatusRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.TrimSpace(r.Email)
	r.PaymentStatus = strings.TrimSpace(r.PaymentStatus)
}

func (r *UpdatePaymentStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Struct(r); err != nil {
		return err
	}
	_, err := models.ParsePaymentStatus(r.PaymentStatus)
	return err
}

func init() {
	httputil.RegisterFormType(func(vals []string) (interface{}, error) {
		v, err := parseFlexNumber(lastValue(vals))
		return flexNumber{Value: v}, err
	}, flexNumber{})
	httputil.RegisterFormType(func(vals []string) (interface{}, error) {
		v, err := parseFlexDate(lastValue(vals))
		return flexDate{Value: v}, err
	}, flexDate{})
}

func lastValue(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[len(vals)-1]
}

// flexNumber accepts a JSON number, a numeric string, an empty string or null.
// Browser forms send numeric inputs as strings.
type flexNumber struct {
	Value *float64
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	v, err := parseFlexNumber(raw)
	if err != nil {
		return err
	}
	n.Value = v
	return nil
}

func parseFlexNumber(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid number %q", raw)
	}
	return &v, nil
}

const dateLayout = "2006-01-02"

// flexDate accepts "2006-01-02", RFC 3339, an empty string or null.
// The value is a calendar date held at midnight UTC.
type flexDate struct {
	Value *time.Time
}

func (d *flexDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("dob must be a string: %w", err)
	}
	v, err := parseFlexDate(s)
	if err != nil {
		return err
	}
	d.Value = v
	return nil
}

func parseFlexDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", s)
	}
	// Keep the calendar date as written, whatever the offset.
	civil := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &civil, nil
}
