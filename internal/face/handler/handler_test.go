package handler

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"geoattend/internal/face"
	"geoattend/internal/face/models"
	"geoattend/internal/face/service"
	"geoattend/internal/face/store"
	"geoattend/internal/upload"
	id "geoattend/pkg/domain"
	"geoattend/pkg/requestcontext"
	"geoattend/pkg/testutil"
)

type FaceHandlerSuite struct {
	suite.Suite

	router  chi.Router
	encoder *face.StaticEncoder
	userID  id.UserID
}

func (s *FaceHandlerSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.userID = id.NewUserID()
	s.encoder = &face.StaticEncoder{Encodings: [][]float64{make([]float64, models.EncodingLength)}}

	photos, err := upload.New(s.T().TempDir())
	s.Require().NoError(err)

	svc := service.New(store.NewInMemory(), photos, s.encoder, logger)

	s.router = chi.NewRouter()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(r.Context(), s.userID)))
		})
	})
	New(svc, logger).Register(s.router, s.router)
}

func (s *FaceHandlerSuite) enroll(photo []byte) *http.Request {
	return testutil.NewMultipartRequest(s.T(), http.MethodPost, "/face/enroll", nil, photo)
}

func (s *FaceHandlerSuite) status() bool {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/face/status"))
	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[struct {
		Enrolled bool `json:"enrolled"`
	}](s.T(), rr)
	return resp.Enrolled
}

func (s *FaceHandlerSuite) TestEnrollFlow() {
	s.False(s.status())

	rr := testutil.DoRequest(s.router, s.enroll([]byte("jpeg")))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	s.True(s.status())

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/face/enroll"))
	testutil.AssertStatusOK(s.T(), rr)
	s.False(s.status())
}

func (s *FaceHandlerSuite) TestEnrollRequiresPhoto() {
	rr := testutil.DoRequest(s.router, s.enroll(nil))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	testutil.AssertErrorCode(s.T(), rr, "invalid_input")
}

func (s *FaceHandlerSuite) TestEnrollRejectsPhotoWithoutFace() {
	s.encoder.Encodings = nil

	rr := testutil.DoRequest(s.router, s.enroll([]byte("jpeg")))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	testutil.AssertErrorCode(s.T(), rr, "invalid_input")
}

func TestFaceHandlerSuite(t *testing.T) {
	suite.Run(t, new(FaceHandlerSuite))
}
