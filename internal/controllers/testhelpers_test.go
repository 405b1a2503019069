package controllers

import (
	"counterd/internal/models"
	"counterd/internal/services"
	"counterd/internal/testutil"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

func newTestService() (services.CounterServiceInterface, *testutil.MockPersister) {
	p := &testutil.MockPersister{}
	return newServiceWith(p), p
}

func newServiceWith(p *testutil.MockPersister) services.CounterServiceInterface {
	return services.NewCounterService(p)
}

func failSaves(p *testutil.MockPersister) {
	p.SaveFn = func(_ *models.Snapshot) error { return errDiskFull }
}

func call(t *testing.T, h http.HandlerFunc, method, target string, body io.Reader) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rr := httptest.NewRecorder()
	h(rr, req)
	data, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return rr.Code, string(data)
}
