package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbook/medbook/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const doctorCols = `id, name, email, password_hash, specialty, experience_years, location, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.PasswordHash, &d.Specialty,
		&d.ExperienceYears, &d.Location, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, email, password_hash, specialty, experience_years, location)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			d.ID, d.Name, d.Email, d.PasswordHash, d.Specialty, d.ExperienceYears, d.Location)
		if err != nil {
			return err
		}
		return insertAvailability(ctx, tx, d.ID, d.Availability)
	})
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	if d.Availability, err = r.GetAvailability(ctx, d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	d, err := scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE email = $1`, email))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get doctor by email: %w", err)
	}
	return d, nil
}

func (r *repoPG) GetAvailability(ctx context.Context, doctorID uuid.UUID) ([]AvailabilityEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day, start_time, end_time, location
		FROM doctor_availability WHERE doctor_id = $1 ORDER BY position`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("query availability: %w", err)
	}
	defer rows.Close()

	var entries []AvailabilityEntry
	for rows.Next() {
		var e AvailabilityEntry
		if err := rows.Scan(&e.Day, &e.StartTime, &e.EndTime, &e.Location); err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability: %w", err)
	}
	return entries, nil
}

// ReplaceAvailability overwrites the doctor's entire availability list in one
// transaction, preserving the order the entries were submitted in.
func (r *repoPG) ReplaceAvailability(ctx context.Context, doctorID uuid.UUID, entries []AvailabilityEntry) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE doctors SET updated_at = NOW() WHERE id = $1`, doctorID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM doctor_availability WHERE doctor_id = $1`, doctorID); err != nil {
			return err
		}
		return insertAvailability(ctx, tx, doctorID, entries)
	})
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("replace availability: %w", err)
	}
	return err
}

func insertAvailability(ctx context.Context, tx pgx.Tx, doctorID uuid.UUID, entries []AvailabilityEntry) error {
	for i, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO doctor_availability (doctor_id, position, day, start_time, end_time, location)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			doctorID, i, e.Day, e.StartTime, e.EndTime, e.Location)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	query := `SELECT ` + doctorCols + ` FROM doctors WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM doctors WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["specialty"]; ok {
		query += fmt.Sprintf(` AND specialty ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND specialty ILIKE $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["location"]; ok {
		query += fmt.Sprintf(` AND location ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND location ILIKE $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count doctors: %w", err)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search doctors: %w", err)
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan doctor: %w", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate doctors: %w", err)
	}

	if err := r.loadAvailability(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) loadAvailability(ctx context.Context, doctors []*Doctor) error {
	if len(doctors) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(doctors))
	byID := make(map[uuid.UUID]*Doctor, len(doctors))
	for i, d := range doctors {
		ids[i] = d.ID
		byID[d.ID] = d
	}

	rows, err := r.pool.Query(ctx, `
		SELECT doctor_id, day, start_time, end_time, location
		FROM doctor_availability WHERE doctor_id = ANY($1) ORDER BY doctor_id, position`, ids)
	if err != nil {
		return fmt.Errorf("query availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doctorID uuid.UUID
		var e AvailabilityEntry
		if err := rows.Scan(&doctorID, &e.Day, &e.StartTime, &e.EndTime, &e.Location); err != nil {
			return fmt.Errorf("scan availability: %w", err)
		}
		if d, ok := byID[doctorID]; ok {
			d.Availability = append(d.Availability, e)
		}
	}
	return rows.Err()
}
