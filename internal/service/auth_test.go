package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yadgarautos/jobfiles/internal/api/dto"
	"github.com/yadgarautos/jobfiles/internal/domain/auth"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/testutil"
	"github.com/yadgarautos/jobfiles/internal/types"
)

type AuthServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AuthService
}

func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewAuthService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *AuthServiceSuite) login() *dto.AuthResponse {
	resp, err := s.service.Login(s.GetContext(), &dto.LoginRequest{
		Email:    testutil.TestAdminEmail,
		Password: testutil.TestAdminPassword,
	})
	s.Require().NoError(err)
	return resp
}

func (s *AuthServiceSuite) TestLogin() {
	resp := s.login()
	s.NotEmpty(resp.Token)
	s.Equal(testutil.TestAdminEmail, resp.Email)
	s.True(resp.ExpiresAt.After(time.Now()))

	claims, err := s.service.ValidateToken(s.GetContext(), resp.Token)
	s.Require().NoError(err)
	s.Equal(resp.UserID, claims.UserID)
}

func (s *AuthServiceSuite) TestLoginRejected() {
	testCases := []struct {
		name     string
		req      dto.LoginRequest
		validate bool
	}{
		{name: "wrong_password", req: dto.LoginRequest{Email: testutil.TestAdminEmail, Password: "nope"}},
		{name: "unknown_email", req: dto.LoginRequest{Email: "someone@else.test", Password: testutil.TestAdminPassword}},
		{name: "malformed_email", req: dto.LoginRequest{Email: "admin", Password: "x"}, validate: true},
		{name: "missing_password", req: dto.LoginRequest{Email: testutil.TestAdminEmail}, validate: true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.service.Login(s.GetContext(), &tc.req)
			s.Error(err)
			if tc.validate {
				s.True(ierr.IsValidation(err))
			} else {
				s.True(ierr.IsPermissionDenied(err))
			}
		})
	}
}

func (s *AuthServiceSuite) TestSignOutRevokesToken() {
	resp := s.login()

	s.NoError(s.service.SignOut(s.GetContext(), resp.Token))

	_, err := s.service.ValidateToken(s.GetContext(), resp.Token)
	s.True(ierr.IsUnauthenticated(err))

	// a second sign out has nothing left to revoke
	s.True(ierr.IsUnauthenticated(s.service.SignOut(s.GetContext(), resp.Token)))
}

func (s *AuthServiceSuite) TestValidateTokenRejectsGarbage() {
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := s.service.ValidateToken(s.GetContext(), token)
		s.True(ierr.IsUnauthenticated(err), token)
	}
}

func (s *AuthServiceSuite) TestOnSessionChange() {
	changes := make(chan auth.SessionChange, 4)
	s.Require().NoError(s.service.OnSessionChange(s.GetContext(), func(c auth.SessionChange) {
		changes <- c
	}))

	resp := s.login()
	s.Require().NoError(s.service.SignOut(s.GetContext(), resp.Token))

	// delivery order across messages is not guaranteed by the channel pubsub
	received := make([]types.SessionEvent, 0, 2)
	for len(received) < 2 {
		select {
		case c := <-changes:
			s.Equal(resp.UserID, c.UserID)
			received = append(received, c.Event)
		case <-time.After(2 * time.Second):
			s.FailNow("no session change received", "got %v", received)
		}
	}
	s.ElementsMatch([]types.SessionEvent{types.SessionEventSignedIn, types.SessionEventSignedOut}, received)
}
