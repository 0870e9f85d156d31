package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"geoattend/internal/face"
	"geoattend/internal/face/models"
	"geoattend/internal/face/store"
	"geoattend/internal/upload"
	id "geoattend/pkg/domain"
	dErrors "geoattend/pkg/domain-errors"
)

type FaceServiceSuite struct {
	suite.Suite

	store   *store.InMemory
	photos  *upload.Store
	encoder *face.StaticEncoder
	svc     *Service
}

func (s *FaceServiceSuite) SetupTest() {
	var err error
	s.store = store.NewInMemory()
	s.photos, err = upload.New(s.T().TempDir())
	s.Require().NoError(err)
	s.encoder = &face.StaticEncoder{Encodings: [][]float64{make([]float64, models.EncodingLength)}}
	s.svc = New(s.store, s.photos, s.encoder, slog.New(slog.DiscardHandler))
}

func (s *FaceServiceSuite) TestEnroll() {
	userID := id.NewUserID()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	profile, err := s.svc.Enroll(context.Background(), userID, []byte("jpeg"), now)
	s.Require().NoError(err)
	s.True(profile.Active)
	s.Len(profile.Encoding, models.EncodingLength)
	s.True(s.photos.Exists(profile.PhotoPath))

	enrolled, err := s.svc.Enrolled(context.Background(), userID)
	s.Require().NoError(err)
	s.True(enrolled)
}

func (s *FaceServiceSuite) TestEnrollReplacesPriorProfile() {
	userID := id.NewUserID()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	first, err := s.svc.Enroll(context.Background(), userID, []byte("jpeg-1"), now)
	s.Require().NoError(err)
	second, err := s.svc.Enroll(context.Background(), userID, []byte("jpeg-2"), now.Add(time.Hour))
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)

	total, active := s.store.CountByUser(userID)
	s.Equal(2, total)
	s.Equal(1, active)

	current, err := s.store.FindActiveByUser(context.Background(), userID)
	s.Require().NoError(err)
	s.Equal(second.ID, current.ID)
}

func (s *FaceServiceSuite) TestEnrollRejectsNoFace() {
	s.encoder.Encodings = nil

	_, err := s.svc.Enroll(context.Background(), id.NewUserID(), []byte("jpeg"), time.Now())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	s.Equal("no face detected in photo", dErrors.MessageOf(err))
}

func (s *FaceServiceSuite) TestEnrollRejectsMultipleFaces() {
	encoding := make([]float64, models.EncodingLength)
	s.encoder.Encodings = [][]float64{encoding, encoding}

	_, err := s.svc.Enroll(context.Background(), id.NewUserID(), []byte("jpeg"), time.Now())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *FaceServiceSuite) TestUnenroll() {
	userID := id.NewUserID()
	_, err := s.svc.Enroll(context.Background(), userID, []byte("jpeg"), time.Now())
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Unenroll(context.Background(), userID))

	enrolled, err := s.svc.Enrolled(context.Background(), userID)
	s.Require().NoError(err)
	s.False(enrolled)
}

func (s *FaceServiceSuite) TestUnenrollWithoutProfileIsNoOp() {
	s.Require().NoError(s.svc.Unenroll(context.Background(), id.NewUserID()))
}

func TestFaceServiceSuite(t *testing.T) {
	suite.Run(t, new(FaceServiceSuite))
}
