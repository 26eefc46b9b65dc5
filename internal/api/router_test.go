package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yadgarautos/jobfiles/internal/api/dto"
	v1 "github.com/yadgarautos/jobfiles/internal/api/v1"
	"github.com/yadgarautos/jobfiles/internal/pyroscope"
	"github.com/yadgarautos/jobfiles/internal/service"
	"github.com/yadgarautos/jobfiles/internal/testutil"
	"github.com/yadgarautos/jobfiles/internal/types"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	gin.SetMode(gin.TestMode)

	stores := s.GetStores()
	params := service.NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetSentry(),
		s.GetCache(),
		stores.JobFileRepo,
		stores.CounterRepo,
		s.GetBlobs(),
		s.GetPDFGenerator(),
		s.GetPubSub(),
		s.GetAuthProvider(),
	)
	sequenceService := service.NewSequenceService(params)
	authService := service.NewAuthService(params)

	handlers := Handlers{
		Health:   v1.NewHealthHandler(s.GetConfig(), s.GetLogger()),
		Auth:     v1.NewAuthHandler(authService, s.GetLogger()),
		Billing:  v1.NewBillingHandler(service.NewBillingService(params), s.GetLogger()),
		Sequence: v1.NewSequenceHandler(sequenceService, s.GetLogger()),
		JobFile:  v1.NewJobFileHandler(service.NewJobFileService(params, sequenceService), s.GetLogger()),
	}
	profiler := pyroscope.NewPyroscopeService(s.GetConfig(), s.GetLogger())
	s.router = NewRouter(handlers, s.GetConfig(), s.GetLogger(), s.GetSentry(), profiler, authService)
}

func (s *RouterSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		s.Require().NoError(err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(types.HeaderAuthorization, "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) login() string {
	w := s.do(http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{
		Email:    testutil.TestAdminEmail,
		Password: testutil.TestAdminPassword,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.AuthResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().NotEmpty(resp.Token)
	return resp.Token
}

func (s *RouterSuite) TestHealthIsPublic() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestPrivateRoutesNeedToken() {
	for _, path := range []string{"/v1/jobfiles", "/v1/sequence", "/v1/jobfiles/export"} {
		w := s.do(http.MethodGet, path, "", nil)
		s.Equal(http.StatusUnauthorized, w.Code, path)
	}
}

func (s *RouterSuite) TestLoginRejectsWrongPassword() {
	w := s.do(http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{
		Email:    testutil.TestAdminEmail,
		Password: "wrong",
	})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *RouterSuite) TestJobFileLifecycle() {
	token := s.login()

	w := s.do(http.MethodGet, "/v1/sequence", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var seq dto.SequenceResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &seq))
	s.Equal("YAI-0000", seq.LastIssued)
	s.Equal("YAI-0001", seq.NextExpected)

	create := map[string]any{
		"vehicleNo": "LEA-1234",
		"make":      "Toyota",
		"items": map[string]any{
			"parts":  []map[string]any{{"name": "Bumper", "price": 1000}},
			"labour": []map[string]any{{"name": "Paint", "price": 500}},
		},
	}
	w = s.do(http.MethodPost, "/v1/jobfiles", token, create)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID     string `json:"id"`
		BillNo string `json:"billNo"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	s.Equal("YAI-0001", created.BillNo)
	s.Require().NotEmpty(created.ID)

	w = s.do(http.MethodGet, "/v1/jobfiles/"+created.ID+"/invoice.pdf", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("application/pdf", w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), "YAI-0001.pdf")
	s.True(bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.do(http.MethodGet, "/v1/jobfiles?vehicle_no=LEA-1234", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Items []json.RawMessage `json:"items"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	s.Len(list.Items, 1)

	w = s.do(http.MethodDelete, "/v1/jobfiles/"+created.ID, token, nil)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/v1/jobfiles/"+created.ID, token, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestLogoutRevokesToken() {
	token := s.login()

	w := s.do(http.MethodPost, "/v1/auth/logout", token, nil)
	s.Require().Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/v1/sequence", token, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}
