package repositories

import (
	"context"
	"errors"

	"vetdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ClinicRepository interface {
	Create(ctx context.Context, clinic *models.Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Clinic, error)
	List(ctx context.Context, limit, offset int) ([]*models.Clinic, error)
}

type clinicRepo struct {
	db Database
}

func NewClinicRepo(db Database) ClinicRepository {
	return &clinicRepo{db: db}
}

func (r *clinicRepo) Create(ctx context.Context, clinic *models.Clinic) error {
	query := `
		INSERT INTO clinics (id, name, address, city, country, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, clinic.ID, clinic.Name, clinic.Address, clinic.City, clinic.Country, clinic.Phone)
	return err
}

func (r *clinicRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	clinic := &models.Clinic{}
	query := `
		SELECT id, name, address, city, country, phone, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&clinic.ID, &clinic.Name, &clinic.Address, &clinic.City, &clinic.Country, &clinic.Phone, &clinic.CreatedAt, &clinic.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return clinic, nil
}

func (r *clinicRepo) List(ctx context.Context, limit, offset int) ([]*models.Clinic, error) {
	query := `
		SELECT id, name, address, city, country, phone, created_at, updated_at
		FROM clinics
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clinics []*models.Clinic
	for rows.Next() {
		clinic := &models.Clinic{}
		if err := rows.Scan(&clinic.ID, &clinic.Name, &clinic.Address, &clinic.City, &clinic.Country, &clinic.Phone, &clinic.CreatedAt, &clinic.UpdatedAt); err != nil {
			return nil, err
		}
		clinics = append(clinics, clinic)
	}
	return clinics, rows.Err()
}
