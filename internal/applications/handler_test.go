package applications_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"patta-backend/internal/applications"
	"patta-backend/internal/bootstrap"
	sharedauth "patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/config"
)

func buildTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		LogLevel:        "error",
		RateRPS:         1000,
		RateBurst:       1000,
		SeedUsers:       true,
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func tokenFor(t *testing.T, email, name, role string) string {
	t.Helper()
	token, err := sharedauth.SignJWT(sharedauth.Claims{
		Email: email,
		Name:  name,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "test-" + email,
		},
	})
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return token
}

func submitApplication(t *testing.T, router *gin.Engine, token string, omit string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := map[string]string{
		"district": "Chennai",
		"taluk":    "Ambattur",
		"village":  "Padi",
		"surveyNo": "117/2",
		"subdivNo": "3B",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for _, category := range applications.DocumentCategories {
		if category == omit {
			continue
		}
		fw, err := writer.CreateFormFile(category, category+".pdf")
		if err != nil {
			t.Fatalf("create form file %s: %v", category, err)
		}
		if _, err := fw.Write([]byte("%PDF-1.4 " + category)); err != nil {
			t.Fatalf("write file %s: %v", category, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestSubmitAndTrackLifecycle(t *testing.T) {
	app := buildTestApp(t)
	router := app.Router

	citizen := tokenFor(t, "citizen@test.com", "Citizen", "citizen")
	staff := tokenFor(t, "staff@test.com", "Staff", "staff")

	// Submit.
	resp := submitApplication(t, router, citizen, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		RefID       string `json:"refId"`
		Status      string `json:"status"`
		DaysPending int    `json:"daysPending"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if !applications.ValidRefID(created.RefID) {
		t.Fatalf("expected valid ref id, got %q", created.RefID)
	}
	if created.Status != "pending" {
		t.Fatalf("expected pending, got %s", created.Status)
	}

	// Staff searches by reference id fragment.
	reqList := httptest.NewRequest(http.MethodGet, "/api/v1/applications?search="+strings.ToLower(created.RefID[:14]), nil)
	reqList.Header.Set("Authorization", "Bearer "+staff)
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)
	if respList.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respList.Code)
	}
	var listed struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(respList.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if listed.Count != 1 {
		t.Fatalf("expected search to find 1 record, got %d", listed.Count)
	}

	// Staff approves.
	statusBody := bytes.NewBufferString(`{"status":"approved"}`)
	reqStatus := httptest.NewRequest(http.MethodPost, "/api/v1/applications/"+created.RefID+"/status", statusBody)
	reqStatus.Header.Set("Content-Type", "application/json")
	reqStatus.Header.Set("Authorization", "Bearer "+staff)
	respStatus := httptest.NewRecorder()
	router.ServeHTTP(respStatus, reqStatus)
	if respStatus.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", respStatus.Code, respStatus.Body.String())
	}

	// Citizen sees the decision and the reviewer.
	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/applications/"+created.RefID, nil)
	reqGet.Header.Set("Authorization", "Bearer "+citizen)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respGet.Code)
	}
	var fetched struct {
		Status string `json:"status"`
		Review *struct {
			ReviewerEmail string `json:"reviewerEmail"`
		} `json:"review"`
	}
	if err := json.NewDecoder(respGet.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if fetched.Status != "approved" {
		t.Fatalf("expected approved, got %s", fetched.Status)
	}
	if fetched.Review == nil || fetched.Review.ReviewerEmail != "staff@test.com" {
		t.Fatalf("expected reviewer staff@test.com, got %+v", fetched.Review)
	}
}

func TestSubmitMissingDocumentRejected(t *testing.T) {
	app := buildTestApp(t)
	citizen := tokenFor(t, "citizen@test.com", "Citizen", "citizen")

	resp := submitApplication(t, app.Router, citizen, applications.DocLayoutScan)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), applications.DocLayoutScan) {
		t.Fatalf("expected error naming missing category, got %s", resp.Body.String())
	}
}

func TestSubmitRequiresCitizenRole(t *testing.T) {
	app := buildTestApp(t)

	// Guest gets 401.
	resp := submitApplication(t, app.Router, "", "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for guest, got %d", resp.Code)
	}

	// Staff gets 403.
	staff := tokenFor(t, "staff@test.com", "Staff", "staff")
	resp = submitApplication(t, app.Router, staff, "")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for staff, got %d", resp.Code)
	}
}

func TestGetUnknownApplication(t *testing.T) {
	app := buildTestApp(t)
	staff := tokenFor(t, "staff@test.com", "Staff", "staff")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/PATTA-20260101-9999", nil)
	req.Header.Set("Authorization", "Bearer "+staff)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestDownloadDocument(t *testing.T) {
	app := buildTestApp(t)
	citizen := tokenFor(t, "citizen@test.com", "Citizen", "citizen")

	resp := submitApplication(t, app.Router, citizen, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	var created struct {
		RefID string `json:"refId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/"+created.RefID+"/documents/saleDeed", nil)
	req.Header.Set("Authorization", "Bearer "+citizen)
	respDoc := httptest.NewRecorder()
	app.Router.ServeHTTP(respDoc, req)
	if respDoc.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", respDoc.Code, respDoc.Body.String())
	}
	if !strings.Contains(respDoc.Body.String(), "saleDeed") {
		t.Fatalf("expected stored file content, got %q", respDoc.Body.String())
	}
}

func TestAdminStats(t *testing.T) {
	app := buildTestApp(t)
	citizen := tokenFor(t, "citizen@test.com", "Citizen", "citizen")
	admin := tokenFor(t, "admin@test.com", "Admin", "admin")

	if resp := submitApplication(t, app.Router, citizen, ""); resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var stats struct {
		Total   int `json:"total"`
		Pending int `json:"pending"`
		Users   struct {
			RoleCounts map[string]int `json:"roleCounts"`
			Total      int            `json:"total"`
		} `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 1 || stats.Pending != 1 {
		t.Fatalf("expected 1 pending application, got %+v", stats)
	}

	// Account counts per role ride along for the dashboard.
	if stats.Users.Total != 3 {
		t.Fatalf("expected 3 seeded accounts, got %+v", stats.Users)
	}
	for _, role := range []string{"citizen", "staff", "admin"} {
		if stats.Users.RoleCounts[role] != 1 {
			t.Fatalf("expected 1 %s account, got %+v", role, stats.Users.RoleCounts)
		}
	}

	// Stats are admin-only.
	reqCitizen := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	reqCitizen.Header.Set("Authorization", "Bearer "+citizen)
	respCitizen := httptest.NewRecorder()
	app.Router.ServeHTTP(respCitizen, reqCitizen)
	if respCitizen.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", respCitizen.Code)
	}
}
