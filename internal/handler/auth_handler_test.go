package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"gram_sahay/internal/middleware"
	"gram_sahay/internal/model"
	"gram_sahay/internal/repository"
	"gram_sahay/internal/service"
	"gram_sahay/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// newTestServer wires the full API against an in-memory store with the
// OTP delay disabled, mirroring the wiring in cmd/server.
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	store := repository.NewMemoryKVStore()

	sessionRouter := service.NewSessionRouter(ctx, store)
	userLogin := service.NewOTPLogin(ctx, store, model.RoleUser, 0)
	adminLogin := service.NewOTPLogin(ctx, store, model.RoleAdmin, 0)

	complaintSvc := service.NewComplaintService(repository.NewComplaintRepository(store))
	noticeSvc := service.NewNoticeService(repository.NewNoticeRepository(store))
	schemeSvc := service.NewSchemeService()

	jwtUtil := utils.NewJWTUtil("test-secret", 1)
	authMW := middleware.JWTAuthMiddleware(jwtUtil)
	userMW := middleware.UserMiddleware()
	adminMW := middleware.AdminMiddleware()

	engine := gin.New()
	api := engine.Group("/api/v1")

	NewAuthHandler(userLogin, adminLogin, sessionRouter, store, jwtUtil).RegisterAuthRoutes(api)
	NewScreenHandler(sessionRouter).RegisterScreenRoutes(api)
	NewComplaintHandler(complaintSvc).RegisterComplaintRoutes(api, authMW, userMW, adminMW)
	NewSchemeHandler(schemeSvc).RegisterSchemeRoutes(api, authMW, userMW)
	NewNoticeHandler(noticeSvc).RegisterNoticeRoutes(api, authMW, adminMW)

	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuth_UserLoginFlow(t *testing.T) {
	engine := newTestServer(t)

	// Phone entry
	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/otp/send", `{"phone":"9876543210"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "otp", body["step"])

	// Wrong code is rejected and the flow stays on the OTP step
	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/otp/verify", `{"otp":"000000"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/auth/user/state", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "otp", decodeBody(t, w)["step"])

	// Correct code logs in, lands on the dashboard and returns a token
	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/otp/verify", `{"otp":"123456"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, model.RoleUser, body["role"])
	assert.Equal(t, model.ScreenUserDashboard, body["screen"])
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)

	// Session record is now readable
	w = doJSON(t, engine, http.MethodGet, "/api/v1/auth/session", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9876543210", decodeBody(t, w)["phone"])

	// The token opens the citizen routes
	w = doJSON(t, engine, http.MethodPost, "/api/v1/complaints",
		`{"category":"road","description":"Potholes near the school","location":"Ward 3"}`, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	// But not the admin ones
	w = doJSON(t, engine, http.MethodGet, "/api/v1/admin/stats", "", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuth_SendOTP_InvalidPhone(t *testing.T) {
	engine := newTestServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/otp/send", `{"phone":"12345"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "phone", decodeBody(t, w)["field"])
}

func TestAuth_VerifyOTP_BeforePhone(t *testing.T) {
	engine := newTestServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/otp/verify", `{"otp":"123456"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuth_ChangeNumber(t *testing.T) {
	engine := newTestServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/otp/send", `{"phone":"9876543210"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/change-number", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "phone", body["step"])
	assert.Equal(t, "9876543210", body["phone"])
}

func TestAuth_Logout(t *testing.T) {
	engine := newTestServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/admin/otp/send", `{"phone":"9123456780"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/admin/otp/verify", `{"otp":"123456"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/logout", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.ScreenUserLogin, decodeBody(t, w)["screen"])

	w = doJSON(t, engine, http.MethodGet, "/api/v1/auth/session", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScreen_AdminGatedNavigation(t *testing.T) {
	engine := newTestServer(t)

	// Not logged in: admin targets land on the admin login screen
	w := doJSON(t, engine, http.MethodPost, "/api/v1/navigate", `{"target":"admin-dashboard"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, model.ScreenAdminLogin, body["screen"])
	assert.Equal(t, true, body["redirected"])

	// Log in as a citizen
	doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/otp/send", `{"phone":"9876543210"}`, "")
	doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/otp/verify", `{"otp":"123456"}`, "")

	// Citizens asking for admin screens stay on their dashboard
	w = doJSON(t, engine, http.MethodPost, "/api/v1/navigate", `{"target":"admin-dashboard"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, model.ScreenUserDashboard, body["screen"])
	assert.Equal(t, true, body["redirected"])

	// User screens are reachable directly
	w = doJSON(t, engine, http.MethodPost, "/api/v1/navigate", `{"target":"complaint-filing"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, model.ScreenComplaintFiling, body["screen"])
	assert.Equal(t, false, body["redirected"])

	w = doJSON(t, engine, http.MethodGet, "/api/v1/screen", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.ScreenComplaintFiling, decodeBody(t, w)["screen"])
}

func TestScreen_Navigate_UnknownTarget(t *testing.T) {
	engine := newTestServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/navigate", `{"target":"billing"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComplaints_RequireToken(t *testing.T) {
	engine := newTestServer(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/complaints", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminFlow_ManagesComplaint(t *testing.T) {
	engine := newTestServer(t)

	// A citizen files a complaint
	doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/otp/send", `{"phone":"9876543210"}`, "")
	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/otp/verify", `{"otp":"123456"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	userToken, _ := decodeBody(t, w)["token"].(string)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/complaints",
		`{"category":"water","description":"No supply since Monday"}`, userToken)
	assert.Equal(t, http.StatusCreated, w.Code)
	var filed model.Complaint
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &filed))

	// An admin picks it up
	doJSON(t, engine, http.MethodPost, "/api/v1/auth/admin/otp/send", `{"phone":"9123456780"}`, "")
	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/admin/otp/verify", `{"otp":"123456"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	adminToken, _ := decodeBody(t, w)["token"].(string)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/admin/complaints?status=pending", "", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	path := "/api/v1/admin/complaints/" + strconv.FormatInt(filed.ID, 10) + "/status"
	w = doJSON(t, engine, http.MethodPut, path, `{"action":"accept"}`, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	var updated model.Complaint
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, model.StatusInProgress, updated.Status)

	// accept is not repeatable
	w = doJSON(t, engine, http.MethodPut, path, `{"action":"accept"}`, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Admin tokens do not open citizen routes
	w = doJSON(t, engine, http.MethodGet, "/api/v1/complaints", "", adminToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/admin/export/csv", "", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "complaints_export_")
}

func TestNotices_AdminPublishes(t *testing.T) {
	engine := newTestServer(t)

	doJSON(t, engine, http.MethodPost, "/api/v1/auth/admin/otp/send", `{"phone":"9123456780"}`, "")
	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/admin/otp/verify", `{"otp":"123456"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	adminToken, _ := decodeBody(t, w)["token"].(string)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/admin/notices",
		`{"title":"Gram sabha meeting","description":"Sunday 10 AM at the panchayat hall"}`, adminToken)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/notices", "", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	var notices []model.Notice
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &notices))
	assert.Len(t, notices, 1)
	assert.Equal(t, "Gram sabha meeting", notices[0].Title)
}

func TestSchemes_QuestionsAndEligibility(t *testing.T) {
	engine := newTestServer(t)

	doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/otp/send", `{"phone":"9876543210"}`, "")
	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/user/otp/verify", `{"otp":"123456"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	token, _ := decodeBody(t, w)["token"].(string)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/schemes/questions", "", token)
	assert.Equal(t, http.StatusOK, w.Code)
	var questions []model.Question
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &questions))
	assert.NotEmpty(t, questions)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/schemes/eligibility",
		`{"answers":{"income":"below_1lakh"}}`, token)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["count"])
}
