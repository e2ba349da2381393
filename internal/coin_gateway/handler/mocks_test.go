package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/coin_gateway/middleware"
	"github.com/gym-coin-ledger/internal/coin_gateway/service"
	"github.com/gym-coin-ledger/internal/domain/audit"
	"github.com/stretchr/testify/mock"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Purchase(ctx context.Context, cmd service.PurchaseCommand) (*service.PurchaseResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PurchaseResult), args.Error(1)
}

func (m *MockLedgerService) Redeem(ctx context.Context, cmd service.RedeemCommand) (*service.RedemptionResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RedemptionResult), args.Error(1)
}

func (m *MockLedgerService) Payout(ctx context.Context, cmd service.PayoutCommand) (*service.PayoutResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PayoutResult), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) MemberStatement(ctx context.Context, memberID uuid.UUID, page, perPage int) (*service.MemberStatement, error) {
	args := m.Called(ctx, memberID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MemberStatement), args.Error(1)
}

func (m *MockReportService) VenueStatement(ctx context.Context, venueID uuid.UUID, page, perPage int) (*service.VenueStatement, error) {
	args := m.Called(ctx, venueID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VenueStatement), args.Error(1)
}

func (m *MockReportService) PlatformOverview(ctx context.Context) (*service.PlatformOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlatformOverview), args.Error(1)
}

type MockCodeService struct {
	mock.Mock
}

func (m *MockCodeService) MemberCode(ctx context.Context, memberID uuid.UUID) (*service.IssuedCode, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IssuedCode), args.Error(1)
}

func (m *MockCodeService) VenueCode(ctx context.Context, venueID uuid.UUID) (*service.IssuedCode, error) {
	args := m.Called(ctx, venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IssuedCode), args.Error(1)
}

func (m *MockCodeService) ResolveCodes(memberCode, venueCode string) (uuid.UUID, uuid.UUID, error) {
	args := m.Called(memberCode, venueCode)
	return args.Get(0).(uuid.UUID), args.Get(1).(uuid.UUID), args.Error(2)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Trail(ctx context.Context, filter audit.Filter, page, perPage int) ([]*audit.Entry, int64, error) {
	args := m.Called(ctx, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*audit.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *MockAuditService) Reconcile(ctx context.Context) (*service.Reconciliation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Reconciliation), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.CorrelationID())
	return router
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func stringsReader(s string) *strings.Reader {
	return strings.NewReader(s)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
