package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit/store/memory"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/confidential"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/coprocessor"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/jwttoken"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/lifecycle"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/registry"
	registrymetrics "github.com/ClarenceRuth/cipher-shipment-stream/internal/registry/metrics"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/threshold"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
)

// Registered once per binary; promauto refuses duplicate registration.
var testMetrics = registrymetrics.New()

type HandlerSuite struct {
	suite.Suite
	owner  id.PrincipalID
	actor  id.PrincipalID
	tokens *jwttoken.Service
	sim    *coprocessor.Simulator
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.owner = id.NewPrincipalID()
	s.actor = id.NewPrincipalID()
	s.tokens = jwttoken.NewService("test-signing-key", "shipment-stream", "shipment-stream-api")
	s.sim = coprocessor.NewSimulator()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditP := audit.NewPublisher(memory.New())

	life := lifecycle.NewService(s.owner, logger, auditP)
	values := confidential.NewService(
		id.NewPrincipalID(), life, s.sim,
		confidential.NewStore(), confidential.NewLedger(),
		auditP, logger,
	)
	thresh := threshold.NewService(5, threshold.PolicyStrict, false, life, values, s.sim, auditP, logger)
	reg := registry.NewService(registry.NewStore(), values, auditP, logger, testMetrics)

	h := NewHandler(reg, values, thresh, life, logger, 0)
	s.router = NewRouter(h, s.tokens, true)
}

// do runs a request as the given actor via the dev header.
func (s *HandlerSuite) do(method, path string, actor id.PrincipalID, payload any) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if !actor.IsNil() {
		req.Header.Set("X-Actor-ID", actor.String())
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(out))
}

func (s *HandlerSuite) register(driver id.PrincipalID) {
	rec := s.do(http.MethodPost, "/v1/drivers", s.actor, RegisterRequest{DriverID: driver})
	s.Require().Equal(http.StatusCreated, rec.Code)
}

func (s *HandlerSuite) TestAuthRequired() {
	s.Run("no credentials", func() {
		rec := s.do(http.MethodGet, "/v1/drivers/count", id.NilPrincipal, nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("bearer token accepted", func() {
		token, err := s.tokens.GenerateActorToken(s.actor, time.Hour)
		s.Require().NoError(err)

		req := httptest.NewRequest(http.MethodGet, "/v1/drivers/count", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("garbage bearer token refused", func() {
		req := httptest.NewRequest(http.MethodGet, "/v1/drivers/count", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("health and metrics stay open", func() {
		for _, path := range []string{"/healthz", "/metrics"} {
			rec := s.do(http.MethodGet, path, id.NilPrincipal, nil)
			s.Equal(http.StatusOK, rec.Code, path)
		}
	})
}

func (s *HandlerSuite) TestDriverLifecycle() {
	driver := id.NewPrincipalID()
	s.register(driver)

	s.Run("duplicate registration conflicts", func() {
		rec := s.do(http.MethodPost, "/v1/drivers", s.actor, RegisterRequest{DriverID: driver})
		s.Equal(http.StatusConflict, rec.Code)

		var envelope map[string]string
		s.decode(rec, &envelope)
		s.Equal("conflict", envelope["error"])
	})

	s.Run("status and count reflect membership", func() {
		rec := s.do(http.MethodGet, "/v1/drivers/"+driver.String(), s.actor, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var status DriverStatusResponse
		s.decode(rec, &status)
		s.True(status.Registered)

		rec = s.do(http.MethodGet, "/v1/drivers/count", s.actor, nil)
		var count CountResponse
		s.decode(rec, &count)
		s.Equal(1, count.Count)
	})

	s.Run("deregistration removes the driver", func() {
		rec := s.do(http.MethodDelete, "/v1/drivers/"+driver.String(), s.actor, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.do(http.MethodDelete, "/v1/drivers/"+driver.String(), s.actor, nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("malformed driver id is rejected", func() {
		rec := s.do(http.MethodGet, "/v1/drivers/not-a-uuid", s.actor, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestBatchEndpoints() {
	a, b := id.NewPrincipalID(), id.NewPrincipalID()

	rec := s.do(http.MethodPost, "/v1/drivers/batch-register", s.actor, BatchRequest{
		DriverIDs: []id.PrincipalID{a, b, a},
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	var result BatchResponse
	s.decode(rec, &result)
	s.Equal(2, result.Processed)
	s.Equal(1, result.Skipped)
	s.True(result.Complete)

	s.Run("empty batch is a bad request", func() {
		rec := s.do(http.MethodPost, "/v1/drivers/batch-register", s.actor, BatchRequest{})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("batch deregister mirrors", func() {
		rec := s.do(http.MethodPost, "/v1/drivers/batch-deregister", s.actor, BatchRequest{
			DriverIDs: []id.PrincipalID{a, b},
		})
		s.Require().Equal(http.StatusOK, rec.Code)

		var result BatchResponse
		s.decode(rec, &result)
		s.Equal(2, result.Processed)
	})
}

func (s *HandlerSuite) TestValueAndEvaluate() {
	driver := id.NewPrincipalID()
	s.register(driver)

	blob, err := coprocessor.Encrypt(7)
	s.Require().NoError(err)

	s.Run("submit then read", func() {
		rec := s.do(http.MethodPut, "/v1/drivers/"+driver.String()+"/value", s.actor, SubmitValueRequest{
			Ciphertext: blob,
			Proof:      coprocessor.SealProof(blob),
		})
		s.Require().Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodGet, "/v1/drivers/"+driver.String()+"/value", s.actor, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var value HandleResponse
		s.decode(rec, &value)
		s.True(value.Set)
		s.NotEmpty(value.Handle)
	})

	s.Run("bad proof is rejected", func() {
		rec := s.do(http.MethodPut, "/v1/drivers/"+driver.String()+"/value", s.actor, SubmitValueRequest{
			Ciphertext: blob,
			Proof:      "tampered",
		})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("evaluate returns a result handle the driver can decrypt", func() {
		rec := s.do(http.MethodPost, "/v1/drivers/"+driver.String()+"/evaluate", s.actor, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var result HandleResponse
		s.decode(rec, &result)
		s.Require().True(result.Set)

		verdict, err := s.sim.DecryptBool(context.Background(), coprocessor.Handle(result.Handle), driver)
		s.Require().NoError(err)
		s.True(verdict) // 7 > 5
	})

	s.Run("deregistering wipes the value for a later re-registration", func() {
		rec := s.do(http.MethodDelete, "/v1/drivers/"+driver.String(), s.actor, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.register(driver)

		rec = s.do(http.MethodGet, "/v1/drivers/"+driver.String()+"/value", s.actor, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var value HandleResponse
		s.decode(rec, &value)
		s.False(value.Set)
	})

	s.Run("unset value reads as not set", func() {
		other := id.NewPrincipalID()
		s.register(other)
		rec := s.do(http.MethodGet, "/v1/drivers/"+other.String()+"/value", s.actor, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var value HandleResponse
		s.decode(rec, &value)
		s.False(value.Set)
		s.Empty(value.Handle)
	})
}

func (s *HandlerSuite) TestThresholdEndpoints() {
	rec := s.do(http.MethodGet, "/v1/threshold", s.actor, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var before ThresholdResponse
	s.decode(rec, &before)
	s.Equal(uint32(5), before.Threshold)
	s.Equal("strict", before.Policy)

	rec = s.do(http.MethodPut, "/v1/threshold", s.actor, SetThresholdRequest{Threshold: 9})
	s.Require().Equal(http.StatusOK, rec.Code)
	var after ThresholdResponse
	s.decode(rec, &after)
	s.Equal(uint32(9), after.Threshold)
}

func (s *HandlerSuite) TestAdminEndpoints() {
	s.Run("pause is owner-gated", func() {
		rec := s.do(http.MethodPost, "/v1/admin/pause", s.actor, nil)
		s.Equal(http.StatusUnauthorized, rec.Code)

		rec = s.do(http.MethodPost, "/v1/admin/pause", s.owner, nil)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("paused surfaces as a conflict on submit", func() {
		driver := id.NewPrincipalID()
		s.register(driver)

		blob, err := coprocessor.Encrypt(1)
		s.Require().NoError(err)
		rec := s.do(http.MethodPut, "/v1/drivers/"+driver.String()+"/value", s.actor, SubmitValueRequest{
			Ciphertext: blob,
			Proof:      coprocessor.SealProof(blob),
		})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("status reports the pause", func() {
		rec := s.do(http.MethodGet, "/v1/status", s.actor, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var status StatusResponse
		s.decode(rec, &status)
		s.True(status.Paused)
		s.Equal(s.owner.String(), status.Owner)
	})

	s.Run("unpause restores service", func() {
		rec := s.do(http.MethodPost, "/v1/admin/unpause", s.owner, nil)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("ownership transfer moves the gate", func() {
		next := id.NewPrincipalID()
		rec := s.do(http.MethodPost, "/v1/admin/ownership/transfer", s.owner, TransferOwnershipRequest{NewOwner: next})
		s.Require().Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodPost, "/v1/admin/pause", s.owner, nil)
		s.Equal(http.StatusUnauthorized, rec.Code)

		rec = s.do(http.MethodPost, "/v1/admin/ownership/renounce", next, nil)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodPost, "/v1/admin/pause", next, nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}
