package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	appreferral "github.com/worldref/backend/internal/application/referral"
	"github.com/worldref/backend/internal/domain/referral"
	"github.com/worldref/backend/internal/domain/shared"
	"github.com/worldref/backend/internal/interfaces/http/middleware"
)

func newTrackerHandler(
	memberRepo *MockMemberRepository,
	clickRepo *MockClickRepository,
	visits *MockVisitCounter,
	fallbackURL string,
) *TrackerHandler {
	tracker := appreferral.NewTrackerService(memberRepo, clickRepo, visits, nil, zap.NewNop())
	return NewTrackerHandler(tracker, fallbackURL)
}

func TestTrackerHandler_Redirect(t *testing.T) {
	gin.SetMode(gin.TestMode)

	memberRepo := new(MockMemberRepository)
	clickRepo := new(MockClickRepository)
	h := newTrackerHandler(memberRepo, clickRepo, new(MockVisitCounter), "https://worldref.example/")

	member := testMember(t, "Alice", "alice")

	memberRepo.On("FindByCode", mock.Anything, "alice").Return(member, nil)
	clickRepo.On("Create", mock.Anything, mock.AnythingOfType("*referral.Click")).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/r/alice", nil)
	c.Params = gin.Params{{Key: "code", Value: "alice"}}

	h.Redirect(c)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://worldcoin.org/join/alice", w.Header().Get("Location"))
	clickRepo.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*referral.Click"))
}

func TestTrackerHandler_Redirect_UnknownCodeFallsBack(t *testing.T) {
	gin.SetMode(gin.TestMode)

	memberRepo := new(MockMemberRepository)
	h := newTrackerHandler(memberRepo, new(MockClickRepository), new(MockVisitCounter), "https://worldref.example/")

	memberRepo.On("FindByCode", mock.Anything, "ghost").Return(nil, shared.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/r/ghost", nil)
	c.Params = gin.Params{{Key: "code", Value: "ghost"}}

	h.Redirect(c)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://worldref.example/", w.Header().Get("Location"))
}

func TestTrackerHandler_Redirect_UnknownCodeWithoutFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	memberRepo := new(MockMemberRepository)
	h := newTrackerHandler(memberRepo, new(MockClickRepository), new(MockVisitCounter), "")

	memberRepo.On("FindByCode", mock.Anything, "ghost").Return(nil, shared.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/r/ghost", nil)
	c.Params = gin.Params{{Key: "code", Value: "ghost"}}

	h.Redirect(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REFERRAL_CODE")
}

func TestTrackerHandler_RecordClick(t *testing.T) {
	gin.SetMode(gin.TestMode)

	memberRepo := new(MockMemberRepository)
	clickRepo := new(MockClickRepository)
	h := newTrackerHandler(memberRepo, clickRepo, new(MockVisitCounter), "")

	member := testMember(t, "Alice", "alice")

	memberRepo.On("FindByCode", mock.Anything, "alice").Return(member, nil)
	clickRepo.On("Create", mock.Anything, mock.AnythingOfType("*referral.Click")).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/clicks/alice", nil)
	c.Params = gin.Params{{Key: "code", Value: "alice"}}

	h.RecordClick(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), member.ID.String())
	assert.Contains(t, w.Body.String(), "https://worldcoin.org/join/alice")
}

func TestTrackerHandler_Convert(t *testing.T) {
	gin.SetMode(gin.TestMode)

	memberRepo := new(MockMemberRepository)
	clickRepo := new(MockClickRepository)
	h := newTrackerHandler(memberRepo, clickRepo, new(MockVisitCounter), "")

	member := testMember(t, "Alice", "alice")
	click, err := referral.NewClick(member.ID, member.ReferralCode, "203.0.113.9", "test-agent")
	if err != nil {
		t.Fatalf("NewClick: %v", err)
	}

	clickRepo.On("FindByID", mock.Anything, click.ID).Return(click, nil)
	clickRepo.On("Update", mock.Anything, click).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/clicks/"+click.ID.String()+"/convert", nil)
	c.Params = gin.Params{{Key: "id", Value: click.ID.String()}}

	h.Convert(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, click.Converted)
}

func TestTrackerHandler_Convert_Authenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	memberRepo := new(MockMemberRepository)
	clickRepo := new(MockClickRepository)
	h := newTrackerHandler(memberRepo, clickRepo, new(MockVisitCounter), "")

	member := testMember(t, "Alice", "alice")
	click, err := referral.NewClick(member.ID, member.ReferralCode, "203.0.113.9", "test-agent")
	if err != nil {
		t.Fatalf("NewClick: %v", err)
	}
	accountID := uuid.New()

	clickRepo.On("FindByID", mock.Anything, click.ID).Return(click, nil)
	clickRepo.On("Update", mock.Anything, click).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/clicks/"+click.ID.String()+"/convert", nil)
	c.Params = gin.Params{{Key: "id", Value: click.ID.String()}}
	c.Set(middleware.JWTAccountIDKey, accountID.String())

	h.Convert(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, click.Converted)
	if assert.NotNil(t, click.ConvertedAccountID) {
		assert.Equal(t, accountID, *click.ConvertedAccountID)
	}
}

func TestTrackerHandler_Convert_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	clickRepo := new(MockClickRepository)
	h := newTrackerHandler(new(MockMemberRepository), clickRepo, new(MockVisitCounter), "")

	clickID := uuid.New()
	clickRepo.On("FindByID", mock.Anything, clickID).Return(nil, shared.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/clicks/"+clickID.String()+"/convert", nil)
	c.Params = gin.Params{{Key: "id", Value: clickID.String()}}

	h.Convert(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "CLICK_NOT_FOUND")
}

func TestTrackerHandler_Convert_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newTrackerHandler(new(MockMemberRepository), new(MockClickRepository), new(MockVisitCounter), "")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/clicks/not-a-uuid/convert", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.Convert(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrackerHandler_RecordVisit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	visits := new(MockVisitCounter)
	h := newTrackerHandler(new(MockMemberRepository), new(MockClickRepository), visits, "")

	visits.On("RecordVisit", mock.Anything, mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/visits", nil)

	h.RecordVisit(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	visits.AssertCalled(t, "RecordVisit", mock.Anything, mock.Anything)
}

func TestTrackerHandler_RecordVisit_CounterDown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	visits := new(MockVisitCounter)
	h := newTrackerHandler(new(MockMemberRepository), new(MockClickRepository), visits, "")

	visits.On("RecordVisit", mock.Anything, mock.Anything).Return(assert.AnError)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/visits", nil)

	h.RecordVisit(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "STORAGE_UNAVAILABLE")
}
