package repositories

import (
	"context"
	"errors"

	"vetdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StaffRepository interface {
	Create(ctx context.Context, staff *models.ClinicStaff, roleIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ClinicStaff, error)
	GetByClinicAndID(ctx context.Context, clinicID, id uuid.UUID) (*models.ClinicStaff, error)
	Save(ctx context.Context, staff *models.ClinicStaff) error
	ExistsByLicenseNumber(ctx context.Context, licenseNumber string, excludeID *uuid.UUID) (bool, error)
	ExistsByPublicKey(ctx context.Context, fingerprint string, excludeID *uuid.UUID) (bool, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*models.ClinicStaff, error)
	ListByClinicAndActive(ctx context.Context, clinicID uuid.UUID, active bool, limit, offset int) ([]*models.ClinicStaff, error)
}

type staffRepo struct {
	db Database
}

func NewStaffRepo(db Database) StaffRepository {
	return &staffRepo{db: db}
}

const staffSelect = `
	SELECT u.id, u.username, u.email, u.password_hash, u.enabled, u.created_at, u.updated_at,
	       s.clinic_id, s.kind, s.first_name, s.last_name, s.avatar_url, s.active,
	       s.license_number, s.public_key_fingerprint, s.public_key_path, s.private_key_path,
	       COALESCE((SELECT array_agg(r.name ORDER BY r.name)
	                 FROM user_roles ur JOIN roles r ON r.id = ur.role_id
	                 WHERE ur.user_id = u.id), '{}') AS roles
	FROM users u
	JOIN clinic_staff s ON s.user_id = u.id
`

func scanStaff(row pgx.Row) (*models.ClinicStaff, error) {
	staff := &models.ClinicStaff{}
	var (
		licenseNumber  *string
		fingerprint    *string
		publicKeyPath  *string
		privateKeyPath *string
	)
	err := row.Scan(
		&staff.ID, &staff.Username, &staff.Email, &staff.PasswordHash, &staff.Enabled, &staff.CreatedAt, &staff.UpdatedAt,
		&staff.ClinicID, &staff.Kind, &staff.FirstName, &staff.LastName, &staff.AvatarURL, &staff.Active,
		&licenseNumber, &fingerprint, &publicKeyPath, &privateKeyPath,
		&staff.Roles,
	)
	if err != nil {
		return nil, err
	}
	if staff.Kind == models.StaffKindVet && licenseNumber != nil {
		vet := &models.VetCredentials{
			LicenseNumber:  *licenseNumber,
			PublicKeyPath:  publicKeyPath,
			PrivateKeyPath: privateKeyPath,
		}
		if fingerprint != nil {
			vet.PublicKeyFingerprint = *fingerprint
		}
		staff.Vet = vet
	}
	return staff, nil
}

func vetColumns(staff *models.ClinicStaff) (licenseNumber, fingerprint, publicKeyPath, privateKeyPath *string) {
	if staff.Vet == nil {
		return nil, nil, nil, nil
	}
	return &staff.Vet.LicenseNumber, &staff.Vet.PublicKeyFingerprint, staff.Vet.PublicKeyPath, staff.Vet.PrivateKeyPath
}

func (r *staffRepo) Create(ctx context.Context, staff *models.ClinicStaff, roleIDs []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	userQuery := `
		INSERT INTO users (id, username, email, password_hash, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, userQuery, staff.ID, staff.Username, staff.Email, staff.PasswordHash, staff.Enabled); err != nil {
		return mapUniqueViolation(err)
	}

	licenseNumber, fingerprint, publicKeyPath, privateKeyPath := vetColumns(staff)
	staffQuery := `
		INSERT INTO clinic_staff (user_id, clinic_id, kind, first_name, last_name, avatar_url, active,
		                          license_number, public_key_fingerprint, public_key_path, private_key_path,
		                          created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, staffQuery, staff.ID, staff.ClinicID, staff.Kind, staff.FirstName, staff.LastName,
		staff.AvatarURL, staff.Active, licenseNumber, fingerprint, publicKeyPath, privateKeyPath); err != nil {
		return mapUniqueViolation(err)
	}

	roleQuery := `
		INSERT INTO user_roles (id, user_id, role_id, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	for _, roleID := range roleIDs {
		if _, err := tx.Exec(ctx, roleQuery, uuid.New(), staff.ID, roleID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *staffRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ClinicStaff, error) {
	query := staffSelect + ` WHERE u.id = $1`
	staff, err := scanStaff(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *staffRepo) GetByClinicAndID(ctx context.Context, clinicID, id uuid.UUID) (*models.ClinicStaff, error) {
	query := staffSelect + ` WHERE s.clinic_id = $1 AND u.id = $2`
	staff, err := scanStaff(r.db.QueryRow(ctx, query, clinicID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return staff, nil
}

// Save updates the mutable fields of an existing staff member. The
// clinic_id and email columns are deliberately not part of the UPDATE;
// neither is reassignable through this service.
func (r *staffRepo) Save(ctx context.Context, staff *models.ClinicStaff) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	userQuery := `
		UPDATE users
		SET username = $1, enabled = $2, updated_at = NOW()
		WHERE id = $3
	`
	if _, err := tx.Exec(ctx, userQuery, staff.Username, staff.Enabled, staff.ID); err != nil {
		return mapUniqueViolation(err)
	}

	licenseNumber, fingerprint, publicKeyPath, privateKeyPath := vetColumns(staff)
	staffQuery := `
		UPDATE clinic_staff
		SET first_name = $1, last_name = $2, avatar_url = $3, active = $4,
		    license_number = $5, public_key_fingerprint = $6, public_key_path = $7, private_key_path = $8,
		    updated_at = NOW()
		WHERE user_id = $9
	`
	if _, err := tx.Exec(ctx, staffQuery, staff.FirstName, staff.LastName, staff.AvatarURL, staff.Active,
		licenseNumber, fingerprint, publicKeyPath, privateKeyPath, staff.ID); err != nil {
		return mapUniqueViolation(err)
	}

	return tx.Commit(ctx)
}

func (r *staffRepo) ExistsByLicenseNumber(ctx context.Context, licenseNumber string, excludeID *uuid.UUID) (bool, error) {
	var count int
	if excludeID != nil {
		query := `SELECT COUNT(*) FROM clinic_staff WHERE license_number = $1 AND user_id != $2`
		if err := r.db.QueryRow(ctx, query, licenseNumber, *excludeID).Scan(&count); err != nil {
			return false, err
		}
		return count > 0, nil
	}
	query := `SELECT COUNT(*) FROM clinic_staff WHERE license_number = $1`
	if err := r.db.QueryRow(ctx, query, licenseNumber).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *staffRepo) ExistsByPublicKey(ctx context.Context, fingerprint string, excludeID *uuid.UUID) (bool, error) {
	var count int
	if excludeID != nil {
		query := `SELECT COUNT(*) FROM clinic_staff WHERE public_key_fingerprint = $1 AND user_id != $2`
		if err := r.db.QueryRow(ctx, query, fingerprint, *excludeID).Scan(&count); err != nil {
			return false, err
		}
		return count > 0, nil
	}
	query := `SELECT COUNT(*) FROM clinic_staff WHERE public_key_fingerprint = $1`
	if err := r.db.QueryRow(ctx, query, fingerprint).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *staffRepo) ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*models.ClinicStaff, error) {
	query := staffSelect + `
		WHERE s.clinic_id = $1
		ORDER BY u.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryStaff(ctx, query, clinicID, limit, offset)
}

func (r *staffRepo) ListByClinicAndActive(ctx context.Context, clinicID uuid.UUID, active bool, limit, offset int) ([]*models.ClinicStaff, error) {
	query := staffSelect + `
		WHERE s.clinic_id = $1 AND s.active = $2
		ORDER BY u.created_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.queryStaff(ctx, query, clinicID, active, limit, offset)
}

func (r *staffRepo) queryStaff(ctx context.Context, query string, args ...interface{}) ([]*models.ClinicStaff, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []*models.ClinicStaff
	for rows.Next() {
		member, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, member)
	}
	return staff, rows.Err()
}
