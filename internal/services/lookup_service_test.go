package services

import (
	"context"
	"errors"
	"testing"

	"vetdesk/internal/apperrors"
	"vetdesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockClinicRepository struct {
	mock.Mock
}

func (m *MockClinicRepository) Create(ctx context.Context, clinic *models.Clinic) error {
	args := m.Called(ctx, clinic)
	return args.Error(0)
}

func (m *MockClinicRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Clinic), args.Error(1)
}

func (m *MockClinicRepository) List(ctx context.Context, limit, offset int) ([]*models.Clinic, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Clinic), args.Error(1)
}

type LookupServiceTestSuite struct {
	suite.Suite
	mockUserRepo   *MockUserRepository
	mockClinicRepo *MockClinicRepository
	mockStaffRepo  *MockStaffRepository
	service        LookupService
}

func (suite *LookupServiceTestSuite) SetupTest() {
	suite.mockUserRepo = &MockUserRepository{}
	suite.mockClinicRepo = &MockClinicRepository{}
	suite.mockStaffRepo = &MockStaffRepository{}
	suite.service = NewLookupService(suite.mockUserRepo, suite.mockClinicRepo, suite.mockStaffRepo)
}

func (suite *LookupServiceTestSuite) TearDownTest() {
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockClinicRepo.AssertExpectations(suite.T())
	suite.mockStaffRepo.AssertExpectations(suite.T())
}

func TestLookupServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LookupServiceTestSuite))
}

func (suite *LookupServiceTestSuite) TestFindUserOrFail_Found() {
	ctx := context.Background()
	userID := uuid.New()
	user := &models.User{ID: userID, Username: "drjones"}

	suite.mockUserRepo.On("GetByID", ctx, userID).Return(user, nil)

	found, err := suite.service.FindUserOrFail(ctx, userID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user, found)
}

func (suite *LookupServiceTestSuite) TestFindUserOrFail_NotFound() {
	ctx := context.Background()
	userID := uuid.New()

	suite.mockUserRepo.On("GetByID", ctx, userID).Return(nil, nil)

	found, err := suite.service.FindUserOrFail(ctx, userID)
	assert.Nil(suite.T(), found)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
	assert.Equal(suite.T(), "User not found with id: "+userID.String(), err.Error())
}

func (suite *LookupServiceTestSuite) TestFindClinicOrFail_NotFound() {
	ctx := context.Background()
	clinicID := uuid.New()

	suite.mockClinicRepo.On("GetByID", ctx, clinicID).Return(nil, nil)

	found, err := suite.service.FindClinicOrFail(ctx, clinicID)
	assert.Nil(suite.T(), found)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
	assert.Equal(suite.T(), "Clinic not found with id: "+clinicID.String(), err.Error())
}

func (suite *LookupServiceTestSuite) TestFindStaffOrFail_NotFound() {
	ctx := context.Background()
	staffID := uuid.New()

	suite.mockStaffRepo.On("GetByID", ctx, staffID).Return(nil, nil)

	found, err := suite.service.FindStaffOrFail(ctx, staffID)
	assert.Nil(suite.T(), found)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
	assert.Equal(suite.T(), "Staff not found with id: "+staffID.String(), err.Error())
}

func (suite *LookupServiceTestSuite) TestFindStaffOrFail_RepositoryError() {
	ctx := context.Background()
	staffID := uuid.New()

	suite.mockStaffRepo.On("GetByID", ctx, staffID).Return(nil, errors.New("database connection failed"))

	found, err := suite.service.FindStaffOrFail(ctx, staffID)
	assert.Nil(suite.T(), found)
	assert.Error(suite.T(), err)
	assert.NotErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *LookupServiceTestSuite) TestFindClinicStaffOrFail_ScopedToClinic() {
	ctx := context.Background()
	clinicID := uuid.New()
	staffID := uuid.New()
	staff := &models.ClinicStaff{
		User:     models.User{ID: staffID, Username: "drjones"},
		ClinicID: clinicID,
	}

	suite.mockStaffRepo.On("GetByClinicAndID", ctx, clinicID, staffID).Return(staff, nil)

	found, err := suite.service.FindClinicStaffOrFail(ctx, clinicID, staffID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), clinicID, found.ClinicID)
}

func (suite *LookupServiceTestSuite) TestFindClinicStaffOrFail_WrongClinic() {
	ctx := context.Background()
	clinicID := uuid.New()
	staffID := uuid.New()

	suite.mockStaffRepo.On("GetByClinicAndID", ctx, clinicID, staffID).Return(nil, nil)

	found, err := suite.service.FindClinicStaffOrFail(ctx, clinicID, staffID)
	assert.Nil(suite.T(), found)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}
