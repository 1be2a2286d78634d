package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appreferral "github.com/worldref/backend/internal/application/referral"
	"github.com/worldref/backend/internal/domain/referral"
	"github.com/worldref/backend/internal/domain/shared"
	"github.com/worldref/backend/internal/interfaces/http/middleware"
)

func newMemberHandler(memberRepo *MockMemberRepository, accountRepo *MockAccountRepository) *MemberHandler {
	return NewMemberHandler(appreferral.NewDirectoryService(memberRepo, accountRepo, zap.NewNop()))
}

func testMember(t *testing.T, name, code string) *referral.Member {
	t.Helper()
	member, err := referral.NewMember(uuid.New(), name, code, "https://worldcoin.org/join/"+code)
	require.NoError(t, err)
	return member
}

func TestMemberHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	memberRepo := new(MockMemberRepository)
	h := newMemberHandler(memberRepo, new(MockAccountRepository))

	members := []*referral.Member{testMember(t, "Alice", "alice"), testMember(t, "Bob", "bob")}
	memberRepo.On("FindAll", mock.Anything, mock.AnythingOfType("referral.MemberFilter")).
		Return(members, int64(2), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/members?page=1&page_size=20", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
	assert.Contains(t, w.Body.String(), "bob")
	assert.Contains(t, w.Body.String(), `"total":2`)
}

func TestMemberHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)

	memberRepo := new(MockMemberRepository)
	h := newMemberHandler(memberRepo, new(MockAccountRepository))

	member := testMember(t, "Alice", "alice")
	memberRepo.On("FindByID", mock.Anything, member.ID).Return(member, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/members/"+member.ID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: member.ID.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), member.ID.String())
}

func TestMemberHandler_Get_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newMemberHandler(new(MockMemberRepository), new(MockAccountRepository))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/members/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMemberHandler_Get_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	memberRepo := new(MockMemberRepository)
	h := newMemberHandler(memberRepo, new(MockAccountRepository))

	missing := uuid.New()
	memberRepo.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/members/"+missing.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: missing.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "MEMBER_NOT_FOUND")
}

func TestMemberHandler_MyMember(t *testing.T) {
	gin.SetMode(gin.TestMode)

	memberRepo := new(MockMemberRepository)
	h := newMemberHandler(memberRepo, new(MockAccountRepository))

	member := testMember(t, "Alice", "alice")
	memberRepo.On("FindByAccountID", mock.Anything, member.AccountID).Return(member, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/me/member", nil)
	c.Set(middleware.JWTAccountIDKey, member.AccountID.String())

	h.MyMember(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestMemberHandler_SetReferralCode_FirstUse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	memberRepo := new(MockMemberRepository)
	accountRepo := new(MockAccountRepository)
	h := newMemberHandler(memberRepo, accountRepo)

	accountID := uuid.New()
	memberRepo.On("FindByAccountID", mock.Anything, accountID).Return(nil, shared.ErrNotFound)
	memberRepo.On("FindByCode", mock.Anything, "alice").Return(nil, shared.ErrNotFound)
	memberRepo.On("Create", mock.Anything, mock.AnythingOfType("*referral.Member")).Return(nil)

	body, _ := json.Marshal(SetReferralCodeRequest{
		Name:         "Alice",
		ReferralCode: "alice",
		ReferralLink: "https://worldcoin.org/join/alice",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/me/referral-code", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.JWTAccountIDKey, accountID.String())

	h.SetReferralCode(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
	memberRepo.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*referral.Member"))
}

func TestMemberHandler_SetReferralCode_MalformedCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	memberRepo := new(MockMemberRepository)
	h := newMemberHandler(memberRepo, new(MockAccountRepository))

	body, _ := json.Marshal(SetReferralCodeRequest{ReferralCode: "bad code!"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/me/referral-code", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.JWTAccountIDKey, uuid.New().String())

	h.SetReferralCode(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "referral_code")
	memberRepo.AssertNotCalled(t, "FindByAccountID", mock.Anything, mock.Anything)
}

func TestMemberHandler_SetReferralCode_CodeTaken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	memberRepo := new(MockMemberRepository)
	h := newMemberHandler(memberRepo, new(MockAccountRepository))

	mine := testMember(t, "Alice", "alice")
	other := testMember(t, "Bob", "bob")

	memberRepo.On("FindByAccountID", mock.Anything, mine.AccountID).Return(mine, nil)
	memberRepo.On("FindByCode", mock.Anything, "bob").Return(other, nil)

	body, _ := json.Marshal(SetReferralCodeRequest{ReferralCode: "bob"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/me/referral-code", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.JWTAccountIDKey, mine.AccountID.String())

	h.SetReferralCode(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CODE_TAKEN")
}

func TestMemberHandler_SetCapacity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	memberRepo := new(MockMemberRepository)
	h := newMemberHandler(memberRepo, new(MockAccountRepository))

	member := testMember(t, "Alice", "alice")
	memberRepo.On("FindByID", mock.Anything, member.ID).Return(member, nil)
	memberRepo.On("Update", mock.Anything, member).Return(nil)

	body, _ := json.Marshal(SetCapacityRequest{MaxAssignments: 25})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/members/"+member.ID.String()+"/capacity", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: member.ID.String()}}

	h.SetCapacity(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"max_assignments":25`)
}

func TestMemberHandler_ActivateDeactivate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	memberRepo := new(MockMemberRepository)
	h := newMemberHandler(memberRepo, new(MockAccountRepository))

	member := testMember(t, "Alice", "alice")
	memberRepo.On("FindByID", mock.Anything, member.ID).Return(member, nil)
	memberRepo.On("Update", mock.Anything, member).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/members/"+member.ID.String()+"/deactivate", nil)
	c.Params = gin.Params{{Key: "id", Value: member.ID.String()}}

	h.Deactivate(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, member.IsActive)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/members/"+member.ID.String()+"/activate", nil)
	c.Params = gin.Params{{Key: "id", Value: member.ID.String()}}

	h.Activate(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, member.IsActive)
}
