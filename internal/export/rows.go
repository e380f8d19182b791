// Package export flattens registrants into spreadsheet rows and writes them
// as XLSX, CSV or into a Google Sheets tab.
package export

import (
	"strconv"
	"strings"
	"time"

	"regdesk/internal/registrant/models"
)

// NotAvailable fills any column whose source value is absent.
const NotAvailable = "N/A"

const dobLayout = "02/01/2006"

// Columns is the header row, in output order.
var Columns = []string{
	"ID",
	"FullName",
	"HouseName",
	"Place",
	"Parish",
	"Email",
	"Phone",
	"DateOfBirth",
	"Experience",
	"Accommodation",
	"HomeLocation",
	"Gender",
	"Category",
	"SpouseName",
	"SpousePhone",
	"NumberOfChildren",
	"PaymentStatus",
	"ChildrenDetails",
}

// FlatRow is one registrant rendered as strings, aligned with Columns.
type FlatRow struct {
	ID               string
	FullName         string
	HouseName        string
	Place            string
	Parish           string
	Email            string
	Phone            string
	DateOfBirth      string
	Experience       string
	Accommodation    string
	HomeLocation     string
	Gender           string
	Category         string
	SpouseName       string
	SpousePhone      string
	NumberOfChildren string
	PaymentStatus    string
	ChildrenDetails  string
}

// Values returns the row cells in Columns order.
func (r FlatRow) Values() []string {
	return []string{
		r.ID,
		r.FullName,
		r.HouseName,
		r.Place,
		r.Parish,
		r.Email,
		r.Phone,
		r.DateOfBirth,
		r.Experience,
		r.Accommodation,
		r.HomeLocation,
		r.Gender,
		r.Category,
		r.SpouseName,
		r.SpousePhone,
		r.NumberOfChildren,
		r.PaymentStatus,
		r.ChildrenDetails,
	}
}

// Cells returns the row in Columns order with Experience and
// NumberOfChildren as numbers when present.
func (r FlatRow) Cells() []any {
	values := r.Values()
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	cells[experienceColumn] = numericCell(r.Experience)
	cells[childrenCountColumn] = numericCell(r.NumberOfChildren)
	return cells
}

const (
	experienceColumn    = 8
	childrenCountColumn = 15
)

func numericCell(v string) any {
	if v == NotAvailable {
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// ToRows flattens registrants one row each, preserving order. Dates of birth
// are rendered in loc (UTC when nil).
func ToRows(registrants []*models.Registrant, loc *time.Location) []FlatRow {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]FlatRow, 0, len(registrants))
	for _, r := range registrants {
		if r == nil {
			continue
		}
		rows = append(rows, toRow(r, loc))
	}
	return rows
}

func toRow(r *models.Registrant, loc *time.Location) FlatRow {
	status := string(r.PaymentStatus)
	if status == "" {
		status = string(models.PaymentStatusNo)
	}
	return FlatRow{
		ID:               r.ID.String(),
		FullName:         orNA(r.FullName),
		HouseName:        orNA(r.HouseName),
		Place:            orNA(r.Place),
		Parish:           orNA(r.Parish),
		Email:            orNA(r.Email),
		Phone:            orNA(r.Phone),
		DateOfBirth:      formatDOB(r.DOB, loc),
		Experience:       formatNumber(r.Experience),
		Accommodation:    orNA(r.Accommodation),
		HomeLocation:     orNA(r.HomeLocation),
		Gender:           orNA(r.Gender),
		Category:         orNA(r.Category),
		SpouseName:       orNA(r.SpouseName),
		SpousePhone:      orNA(r.SpousePhone),
		NumberOfChildren: strconv.Itoa(r.NumChildren),
		PaymentStatus:    status,
		ChildrenDetails:  FormatChildren(r.Children),
	}
}

// FormatChildren renders dependents as "<name> (<age> years, <gender>)"
// joined by ", ", or N/A when there are none.
func FormatChildren(children []models.Dependent) string {
	if len(children) == 0 {
		return NotAvailable
	}
	parts := make([]string, 0, len(children))
	for _, c := range children {
		parts = append(parts, orNA(c.Name)+" ("+formatNumber(c.Age)+" years, "+orNA(c.Gender)+")")
	}
	return strings.Join(parts, ", ")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func formatNumber(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Dates of birth are calendar dates stored at midnight UTC and render as
// that date in every location. Only values carrying a time of day are
// shifted into loc.
func formatDOB(dob *time.Time, loc *time.Location) string {
	if dob == nil || dob.IsZero() {
		return NotAvailable
	}
	u := dob.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format(dobLayout)
	}
	return dob.In(loc).Format(dobLayout)
}
