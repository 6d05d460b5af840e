package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"campusconnect/internal/identity/handler/mocks"
	"campusconnect/internal/identity/models"
	"campusconnect/internal/identity/service"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
	"campusconnect/pkg/requestcontext"
)

type IdentityHandlerSuite struct {
	suite.Suite
	router  chi.Router
	service *mocks.MockService
	me      id.UserID
}

func (s *IdentityHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(s.service, logger)
	s.router = chi.NewRouter()
	h.RegisterPublic(s.router)
	h.RegisterProtected(s.router)
	s.me = id.NewUserID()
}

func TestIdentityHandlerSuite(t *testing.T) {
	suite.Run(t, new(IdentityHandlerSuite))
}

func (s *IdentityHandlerSuite) postJSON(target string, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *IdentityHandlerSuite) get(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(requestcontext.WithUserID(req.Context(), s.me))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *IdentityHandlerSuite) TestRegister() {
	s.Run("returns 201 with the public profile", func() {
		user, err := models.NewUser(id.NewUserID(), "Asha Rao", "CS21-001", "asha@campus.edu", "9900000000", "hash", time.Now())
		s.Require().NoError(err)

		s.service.EXPECT().Register(gomock.Any(), service.RegisterInput{
			FirstName:       "Asha",
			LastName:        "Rao",
			RegNo:           "CS21-001",
			Email:           "asha@campus.edu",
			Mobile:          "9900000000",
			Password:        "s3cret-password",
			ConfirmPassword: "s3cret-password",
		}).Return(user, nil)

		w := s.postJSON("/register", map[string]string{
			"first_name":       "Asha",
			"last_name":        "Rao",
			"reg_no":           "CS21-001",
			"email":            "asha@campus.edu",
			"mobile":           "9900000000",
			"password":         "s3cret-password",
			"confirm_password": "s3cret-password",
		})
		s.Equal(http.StatusCreated, w.Code)

		var resp models.Summary
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("Asha Rao", resp.Name)
		s.NotContains(w.Body.String(), "hash")
	})

	s.Run("maps whitelist refusal to 403", func() {
		s.service.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "registration number is not eligible"))

		w := s.postJSON("/register", map[string]string{"reg_no": "ZZ99-999"})
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("rejects a malformed body", func() {
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *IdentityHandlerSuite) TestLogin() {
	s.Run("returns the token and profile", func() {
		s.service.EXPECT().Login(gomock.Any(), "CS21-001", "s3cret-password").
			Return(&service.LoginResult{
				Token: "signed-token",
				User:  models.Summary{ID: s.me, Name: "Asha Rao", RegNo: "CS21-001"},
			}, nil)

		w := s.postJSON("/login", map[string]string{"reg_no": "CS21-001", "password": "s3cret-password"})
		s.Equal(http.StatusOK, w.Code)

		var resp loginResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("signed-token", resp.Token)
		s.Equal("Asha Rao", resp.User.Name)
	})

	s.Run("maps bad credentials to 401", func() {
		s.service.EXPECT().Login(gomock.Any(), "CS21-001", "wrong").
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid registration number or password"))

		w := s.postJSON("/login", map[string]string{"reg_no": "CS21-001", "password": "wrong"})
		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *IdentityHandlerSuite) TestSearch() {
	s.Run("forwards the query and caller", func() {
		s.service.EXPECT().Search(gomock.Any(), s.me, "alice").
			Return([]models.Summary{{ID: id.NewUserID(), Name: "Alice Kumar"}}, nil)

		w := s.get("/users?q=alice")
		s.Equal(http.StatusOK, w.Code)

		var resp map[string][]models.Summary
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Len(resp["users"], 1)
	})

	s.Run("renders an empty result as an empty array", func() {
		s.service.EXPECT().Search(gomock.Any(), s.me, "").Return(nil, nil)

		w := s.get("/users")
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"users":[]}`, w.Body.String())
	})
}

func (s *IdentityHandlerSuite) TestGetUser() {
	s.Run("returns the member profile", func() {
		s.service.EXPECT().GetByRegNo(gomock.Any(), "CS21-001").
			Return(&models.Summary{ID: id.NewUserID(), Name: "Asha Rao", RegNo: "CS21-001"}, nil)

		w := s.get("/users/CS21-001")
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("maps unknown regNo to 404", func() {
		s.service.EXPECT().GetByRegNo(gomock.Any(), "ZZ99-999").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "user not found"))

		w := s.get("/users/ZZ99-999")
		s.Equal(http.StatusNotFound, w.Code)
	})
}
