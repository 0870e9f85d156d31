package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	attendanceEngine "geoattend/internal/attendance/engine"
	attendanceModels "geoattend/internal/attendance/models"
	attendanceStore "geoattend/internal/attendance/store"
	"geoattend/internal/face"
	faceModels "geoattend/internal/face/models"
	faceStore "geoattend/internal/face/store"
	"geoattend/internal/identity/models"
	"geoattend/internal/identity/store"
	"geoattend/internal/jwt"
	"geoattend/internal/upload"
	zoneService "geoattend/internal/zone/service"
	zoneStore "geoattend/internal/zone/store"
	id "geoattend/pkg/domain"
	dErrors "geoattend/pkg/domain-errors"
)

type IdentityServiceSuite struct {
	suite.Suite

	users  *store.InMemory
	faces  *faceStore.InMemory
	ledger *attendanceStore.InMemoryLedger
	photos *upload.Store
	svc    *Service
}

func (s *IdentityServiceSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)

	s.users = store.NewInMemory()
	s.faces = faceStore.NewInMemory()
	s.ledger = attendanceStore.NewInMemoryLedger()

	var err error
	s.photos, err = upload.New(s.T().TempDir())
	s.Require().NoError(err)

	zones := zoneService.New(zoneStore.NewInMemory(), logger)
	engine := attendanceEngine.New(zones, s.ledger, attendanceStore.NewInMemoryLog(),
		attendanceStore.InMemoryTx{}, face.Disabled{}, s.photos, nil, nil, logger)

	s.svc = New(s.users, store.NewInMemoryRevocations(), jwt.NewService("test-signing-key", "geoattend"),
		time.Hour, engine, s.faces, s.photos, nil, logger)
}

func (s *IdentityServiceSuite) register(username string) *models.User {
	user, err := s.svc.Register(context.Background(), RegisterInput{
		Username: username,
		FullName: "Test User",
		Password: "correct horse battery",
		Role:     models.RoleMember,
	})
	s.Require().NoError(err)
	return user
}

func (s *IdentityServiceSuite) TestRegisterAndAuthenticate() {
	user := s.register("somchai")
	s.Equal("somchai", user.Username)
	s.True(user.Active)

	token, authed, err := s.svc.Authenticate(context.Background(), "somchai", "correct horse battery")
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.Equal(user.ID, authed.ID)

	claims, err := s.svc.ValidateToken(context.Background(), token)
	s.Require().NoError(err)
	s.Equal(user.ID, claims.UserID)
	s.Equal("member", claims.Role)
}

func (s *IdentityServiceSuite) TestRegisterRejectsShortPassword() {
	_, err := s.svc.Register(context.Background(), RegisterInput{
		Username: "somchai",
		FullName: "Test User",
		Password: "short",
		Role:     models.RoleMember,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *IdentityServiceSuite) TestRegisterRejectsDuplicateUsername() {
	s.register("somchai")

	_, err := s.svc.Register(context.Background(), RegisterInput{
		Username: "Somchai",
		FullName: "Another User",
		Password: "correct horse battery",
		Role:     models.RoleMember,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *IdentityServiceSuite) TestAuthenticateWrongPassword() {
	s.register("somchai")

	_, _, err := s.svc.Authenticate(context.Background(), "somchai", "wrong password")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *IdentityServiceSuite) TestDeactivatedUserCannotAuthenticate() {
	user := s.register("somchai")

	toggled, err := s.svc.ToggleActive(context.Background(), user.ID)
	s.Require().NoError(err)
	s.False(toggled.Active)

	_, _, err = s.svc.Authenticate(context.Background(), "somchai", "correct horse battery")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *IdentityServiceSuite) TestLogoutRevokesToken() {
	s.register("somchai")
	token, _, err := s.svc.Authenticate(context.Background(), "somchai", "correct horse battery")
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Logout(context.Background(), token))

	_, err = s.svc.ValidateToken(context.Background(), token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *IdentityServiceSuite) TestDeleteUserCascades() {
	user := s.register("somchai")

	photoPath, err := s.photos.Save(user.ID, "enroll", time.Now(), []byte("jpeg"))
	s.Require().NoError(err)
	s.Require().NoError(s.faces.Create(context.Background(), &faceModels.FaceProfile{
		ID:        id.NewProfileID(),
		UserID:    user.ID,
		Encoding:  make([]float64, faceModels.EncodingLength),
		PhotoPath: photoPath,
		Active:    true,
	}))
	s.Require().NoError(s.ledger.CreateCheckIn(context.Background(), &attendanceModels.Record{
		ID:     id.NewRecordID(),
		UserID: user.ID,
		Date:   "2026-03-02",
		TimeIn: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}))

	s.Require().NoError(s.svc.DeleteUser(context.Background(), user.ID))

	_, err = s.svc.GetUser(context.Background(), user.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	total, _ := s.faces.CountByUser(user.ID)
	s.Zero(total)
	s.False(s.photos.Exists(photoPath))

	records, err := s.ledger.ListByUser(context.Background(), user.ID, "", "")
	s.Require().NoError(err)
	s.Empty(records)
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}
