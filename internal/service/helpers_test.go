package service

import (
	"github.com/yadgarautos/jobfiles/internal/testutil"
)

// newTestParams wires the in-memory stores of the base suite into services
func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return NewServiceParams(
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
}
