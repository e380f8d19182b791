package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"regdesk/internal/registrant/models"
	id "regdesk/pkg/domain"
	"regdesk/pkg/platform/sentinel"
)

// PostgresStore persists registrants in PostgreSQL. Dependents are kept in a
// JSONB column since they have no lifecycle of their own.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registrant store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const registrantColumns = `id, full_name, house_name, place, parish, email, phone, dob, experience,
	accommodation, home_location, gender, category, spouse_name, spouse_phone,
	num_children, children, payment_status, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, r *models.Registrant) error {
	if r == nil {
		return fmt.Errorf("registrant is required")
	}
	children, err := json.Marshal(nonNilChildren(r.Children))
	if err != nil {
		return fmt.Errorf("marshal children: %w", err)
	}
	query := `
		INSERT INTO registrants (` + registrantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(r.ID),
		r.FullName,
		r.HouseName,
		r.Place,
		r.Parish,
		r.Email,
		r.Phone,
		nullTime(r.DOB),
		nullFloat(r.Experience),
		r.Accommodation,
		r.HomeLocation,
		r.Gender,
		r.Category,
		r.SpouseName,
		r.SpousePhone,
		r.NumChildren,
		children,
		string(r.PaymentStatus),
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create registrant: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.Registrant, error) {
	query := `SELECT ` + registrantColumns + ` FROM registrants ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Registrant, 0)
	for rows.Next() {
		r, err := scanRegistrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registrant: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrants: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, registrantID id.RegistrantID) (*models.Registrant, error) {
	query := `SELECT ` + registrantColumns + ` FROM registrants WHERE id = $1`
	r, err := scanRegistrant(s.db.QueryRowContext(ctx, query, uuid.UUID(registrantID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registrant by id: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) CountByEmail(ctx context.Context, email string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrants WHERE lower(btrim(email)) = $1`,
		models.NormalizeEmail(email),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrants by email: %w", err)
	}
	return count, nil
}

// UpdatePaymentStatus sets the status on the most recently created registrant
// whose normalized email matches.
func (s *PostgresStore) UpdatePaymentStatus(ctx context.Context, email string, status models.PaymentStatus, now time.Time) (*models.Registrant, error) {
	query := `
		UPDATE registrants
		SET payment_status = $2, updated_at = $3
		WHERE id = (
			SELECT id FROM registrants
			WHERE lower(btrim(email)) = $1
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
		RETURNING ` + registrantColumns
	r, err := scanRegistrant(s.db.QueryRowContext(ctx, query,
		models.NormalizeEmail(email),
		string(status),
		now,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	return r, nil
}

type registrantRow interface {
	Scan(dest ...any) error
}

func scanRegistrant(row registrantRow) (*models.Registrant, error) {
	var (
		r            models.Registrant
		registrantID uuid.UUID
		dob          sql.NullTime
		experience   sql.NullFloat64
		children     []byte
		status       string
	)
	err := row.Scan(
		&registrantID,
		&r.FullName,
		&r.HouseName,
		&r.Place,
		&r.Parish,
		&r.Email,
		&r.Phone,
		&dob,
		&experience,
		&r.Accommodation,
		&r.HomeLocation,
		&r.Gender,
		&r.Category,
		&r.SpouseName,
		&r.SpousePhone,
		&r.NumChildren,
		&children,
		&status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.ID = id.RegistrantID(registrantID)
	r.PaymentStatus = models.PaymentStatus(status)
	if dob.Valid {
		t := dob.Time.UTC()
		r.DOB = &t
	}
	if experience.Valid {
		v := experience.Float64
		r.Experience = &v
	}
	r.Children = []models.Dependent{}
	if len(children) > 0 {
		if err := json.Unmarshal(children, &r.Children); err != nil {
			return nil, fmt.Errorf("decode children: %w", err)
		}
	}
	return &r, nil
}

func nonNilChildren(c []models.Dependent) []models.Dependent {
	if c == nil {
		return []models.Dependent{}
	}
	return c
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
