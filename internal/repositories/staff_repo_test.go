package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"vetdesk/internal/apperrors"
	"vetdesk/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const staffSelectPattern = `(?s)SELECT u\.id, u\.username, u\.email, u\.password_hash, u\.enabled, u\.created_at, u\.updated_at,.*FROM users u.*JOIN clinic_staff s ON s\.user_id = u\.id`

var staffColumns = []string{
	"id", "username", "email", "password_hash", "enabled", "created_at", "updated_at",
	"clinic_id", "kind", "first_name", "last_name", "avatar_url", "active",
	"license_number", "public_key_fingerprint", "public_key_path", "private_key_path",
	"roles",
}

type StaffRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     StaffRepository
	clinicID uuid.UUID
	staffID  uuid.UUID
	roleID   uuid.UUID
	context  context.Context
}

func (suite *StaffRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewStaffRepo(mock)
	suite.clinicID = uuid.New()
	suite.staffID = uuid.New()
	suite.roleID = uuid.New()
	suite.context = context.Background()
}

func (suite *StaffRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestStaffRepoTestSuite(t *testing.T) {
	suite.Run(t, new(StaffRepoTestSuite))
}

func (suite *StaffRepoTestSuite) vetStaff() *models.ClinicStaff {
	publicKeyPath := "clinic-" + suite.clinicID.String() + "/" + suite.staffID.String() + ".pub"
	return &models.ClinicStaff{
		User: models.User{
			ID:           suite.staffID,
			Username:     "drjones",
			Email:        "drjones@clinic.test",
			PasswordHash: "$2a$10$hash",
			Enabled:      true,
		},
		ClinicID:  suite.clinicID,
		Kind:      models.StaffKindVet,
		FirstName: "Ada",
		LastName:  "Jones",
		Active:    true,
		Roles:     []string{models.RoleVet},
		Vet: &models.VetCredentials{
			LicenseNumber:        "VET-12345",
			PublicKeyFingerprint: "aaaa1111",
			PublicKeyPath:        &publicKeyPath,
		},
	}
}

func (suite *StaffRepoTestSuite) TestCreate_VetSuccess() {
	staff := suite.vetStaff()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO users \(id, username, email, password_hash, enabled, created_at, updated_at\)`).
		WithArgs(staff.ID, staff.Username, staff.Email, staff.PasswordHash, staff.Enabled).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO clinic_staff`).
		WithArgs(staff.ID, staff.ClinicID, staff.Kind, staff.FirstName, staff.LastName,
			staff.AvatarURL, staff.Active, &staff.Vet.LicenseNumber, &staff.Vet.PublicKeyFingerprint,
			staff.Vet.PublicKeyPath, staff.Vet.PrivateKeyPath).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO user_roles \(id, user_id, role_id, created_at\)`).
		WithArgs(pgxmock.AnyArg(), staff.ID, suite.roleID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback() // deferred rollback after commit is a no-op

	err := suite.repo.Create(suite.context, staff, []uuid.UUID{suite.roleID})
	assert.NoError(suite.T(), err)
}

func (suite *StaffRepoTestSuite) TestCreate_EmailUniqueViolation() {
	staff := suite.vetStaff()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO users`).
		WithArgs(staff.ID, staff.Username, staff.Email, staff.PasswordHash, staff.Enabled).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	suite.mock.ExpectRollback()

	err := suite.repo.Create(suite.context, staff, []uuid.UUID{suite.roleID})
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrEmailExists)
	assert.ErrorIs(suite.T(), err, apperrors.ErrConflict)
}

func (suite *StaffRepoTestSuite) TestCreate_PublicKeyUniqueViolation() {
	staff := suite.vetStaff()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO users`).
		WithArgs(staff.ID, staff.Username, staff.Email, staff.PasswordHash, staff.Enabled).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO clinic_staff`).
		WithArgs(staff.ID, staff.ClinicID, staff.Kind, staff.FirstName, staff.LastName,
			staff.AvatarURL, staff.Active, &staff.Vet.LicenseNumber, &staff.Vet.PublicKeyFingerprint,
			staff.Vet.PublicKeyPath, staff.Vet.PrivateKeyPath).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "clinic_staff_public_key_fingerprint_key"})
	suite.mock.ExpectRollback()

	err := suite.repo.Create(suite.context, staff, []uuid.UUID{suite.roleID})
	assert.ErrorIs(suite.T(), err, apperrors.ErrPublicKeyExists)
}

func (suite *StaffRepoTestSuite) TestSave_Success() {
	staff := suite.vetStaff()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE users`).
		WithArgs(staff.Username, staff.Enabled, staff.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE clinic_staff`).
		WithArgs(staff.FirstName, staff.LastName, staff.AvatarURL, staff.Active,
			&staff.Vet.LicenseNumber, &staff.Vet.PublicKeyFingerprint,
			staff.Vet.PublicKeyPath, staff.Vet.PrivateKeyPath, staff.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback()

	err := suite.repo.Save(suite.context, staff)
	assert.NoError(suite.T(), err)
}

func (suite *StaffRepoTestSuite) TestSave_UsernameUniqueViolation() {
	staff := suite.vetStaff()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE users`).
		WithArgs(staff.Username, staff.Enabled, staff.ID).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
	suite.mock.ExpectRollback()

	err := suite.repo.Save(suite.context, staff)
	assert.ErrorIs(suite.T(), err, apperrors.ErrUsernameExists)
}

func (suite *StaffRepoTestSuite) TestGetByID_VetRow() {
	now := time.Now()
	publicKeyPath := "clinic-" + suite.clinicID.String() + "/" + suite.staffID.String() + ".pub"

	rows := pgxmock.NewRows(staffColumns).AddRow(
		suite.staffID, "drjones", "drjones@clinic.test", "$2a$10$hash", true, now, now,
		suite.clinicID, models.StaffKindVet, "Ada", "Jones", (*string)(nil), true,
		stringPtr("VET-12345"), stringPtr("aaaa1111"), &publicKeyPath, (*string)(nil),
		[]string{models.RoleVet},
	)

	suite.mock.ExpectQuery(staffSelectPattern + `.*WHERE u\.id = \$1`).
		WithArgs(suite.staffID).
		WillReturnRows(rows)

	staff, err := suite.repo.GetByID(suite.context, suite.staffID)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), staff)
	assert.Equal(suite.T(), models.StaffKindVet, staff.Kind)
	assert.NotNil(suite.T(), staff.Vet)
	assert.Equal(suite.T(), "VET-12345", staff.Vet.LicenseNumber)
	assert.Equal(suite.T(), "aaaa1111", staff.Vet.PublicKeyFingerprint)
	assert.Equal(suite.T(), []string{models.RoleVet}, staff.Roles)
}

func (suite *StaffRepoTestSuite) TestGetByID_AdminRowHasNoVetCredentials() {
	now := time.Now()

	rows := pgxmock.NewRows(staffColumns).AddRow(
		suite.staffID, "frontdesk", "frontdesk@clinic.test", "$2a$10$hash", true, now, now,
		suite.clinicID, models.StaffKindAdmin, "Pat", "Doe", (*string)(nil), true,
		(*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil),
		[]string{models.RoleAdmin},
	)

	suite.mock.ExpectQuery(staffSelectPattern + `.*WHERE u\.id = \$1`).
		WithArgs(suite.staffID).
		WillReturnRows(rows)

	staff, err := suite.repo.GetByID(suite.context, suite.staffID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StaffKindAdmin, staff.Kind)
	assert.Nil(suite.T(), staff.Vet)
}

func (suite *StaffRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(staffSelectPattern + `.*WHERE u\.id = \$1`).
		WithArgs(suite.staffID).
		WillReturnError(pgx.ErrNoRows)

	staff, err := suite.repo.GetByID(suite.context, suite.staffID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), staff)
}

func (suite *StaffRepoTestSuite) TestGetByClinicAndID_ScopesByClinic() {
	otherClinic := uuid.New()

	suite.mock.ExpectQuery(staffSelectPattern + `.*WHERE s\.clinic_id = \$1 AND u\.id = \$2`).
		WithArgs(otherClinic, suite.staffID).
		WillReturnError(pgx.ErrNoRows)

	staff, err := suite.repo.GetByClinicAndID(suite.context, otherClinic, suite.staffID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), staff)
}

func (suite *StaffRepoTestSuite) TestExistsByLicenseNumber() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clinic_staff WHERE license_number = \$1`).
		WithArgs("VET-12345").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := suite.repo.ExistsByLicenseNumber(suite.context, "VET-12345", nil)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), exists)
}

func (suite *StaffRepoTestSuite) TestExistsByLicenseNumber_ExcludesSelf() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clinic_staff WHERE license_number = \$1 AND user_id != \$2`).
		WithArgs("VET-12345", suite.staffID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := suite.repo.ExistsByLicenseNumber(suite.context, "VET-12345", &suite.staffID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), exists)
}

func (suite *StaffRepoTestSuite) TestExistsByPublicKey() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clinic_staff WHERE public_key_fingerprint = \$1`).
		WithArgs("aaaa1111").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := suite.repo.ExistsByPublicKey(suite.context, "aaaa1111", nil)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), exists)
}

func (suite *StaffRepoTestSuite) TestListByClinicAndActive() {
	now := time.Now()

	rows := pgxmock.NewRows(staffColumns).AddRow(
		uuid.New(), "drjones", "drjones@clinic.test", "$2a$10$hash", true, now, now,
		suite.clinicID, models.StaffKindVet, "Ada", "Jones", (*string)(nil), true,
		stringPtr("VET-12345"), stringPtr("aaaa1111"), (*string)(nil), (*string)(nil),
		[]string{models.RoleVet},
	)

	suite.mock.ExpectQuery(staffSelectPattern + `.*WHERE s\.clinic_id = \$1 AND s\.active = \$2`).
		WithArgs(suite.clinicID, true, 50, 0).
		WillReturnRows(rows)

	staff, err := suite.repo.ListByClinicAndActive(suite.context, suite.clinicID, true, 50, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), staff, 1)
	assert.True(suite.T(), staff[0].Active)
}

func (suite *StaffRepoTestSuite) TestListByClinic_Empty() {
	suite.mock.ExpectQuery(staffSelectPattern + `.*WHERE s\.clinic_id = \$1`).
		WithArgs(suite.clinicID, 50, 0).
		WillReturnRows(pgxmock.NewRows(staffColumns))

	staff, err := suite.repo.ListByClinic(suite.context, suite.clinicID, 50, 0)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), staff)
}

func (suite *StaffRepoTestSuite) TestCreate_DatabaseError() {
	staff := suite.vetStaff()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO users`).
		WithArgs(staff.ID, staff.Username, staff.Email, staff.PasswordHash, staff.Enabled).
		WillReturnError(errors.New("database connection failed"))
	suite.mock.ExpectRollback()

	err := suite.repo.Create(suite.context, staff, []uuid.UUID{suite.roleID})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "database connection failed")
}

func stringPtr(s string) *string {
	return &s
}
