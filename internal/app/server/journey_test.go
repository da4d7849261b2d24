package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"hrportal/internal/app/server"
	"hrportal/internal/domain/auth"
	"hrportal/internal/platform/config"
	"hrportal/internal/platform/db"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testApp(t *testing.T) (*server.App, *httptest.Server) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		Addr:               ":0",
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		FrontendDir:        "frontend/dist",
		Environment:        "test",
		SeedAdminUsername:  "admin",
		SeedAdminPassword:  "ChangeMe123!",
		SeedAdminEmail:     "admin@test.local",
		MaxBodyBytes:       8 * 1024 * 1024,
		MaxAttachmentBytes: 2 * 1024 * 1024,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     true,
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("db connect failed: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, "../../../migrations"); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if err := db.Seed(ctx, pool, cfg); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	app := server.New(cfg, pool)
	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts
}

func login(t *testing.T, baseURL, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(baseURL+"/api/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("login failed: %d %s", resp.StatusCode, raw)
	}

	var payload struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if payload.Token == "" {
		t.Fatal("login response carried no token")
	}
	return payload.Token
}

func doJSON(t *testing.T, method, url, token string, payload any) (*http.Response, envelope) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp, env
}

func TestLeaveRequestJourney(t *testing.T) {
	_, ts := testApp(t)
	adminToken := login(t, ts.URL, "admin", "ChangeMe123!")

	username := fmt.Sprintf("journey%d", time.Now().UnixNano())
	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/users", adminToken, map[string]any{
		"name":       "Journey Employee",
		"username":   username,
		"email":      username + "@test.local",
		"job_number": "J-100",
		"role":       "employee",
		"password":   "Password123!",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create employee failed: %d %v", resp.StatusCode, env.Error)
	}

	employeeToken := login(t, ts.URL, username, "Password123!")

	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/leave-requests", employeeToken, map[string]any{
		"subtype":    "study",
		"reason":     "exam week",
		"start_date": "2026-09-07",
		"end_date":   "2026-09-10",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create leave request failed: %d %v", resp.StatusCode, env.Error)
	}
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created request: %v", err)
	}
	if created.Status != "pending" {
		t.Fatalf("new request should be pending, got %s", created.Status)
	}

	// The owner can still edit while pending, and an edit sent as multipart
	// stores its attachment.
	resp, env = doMultipart(t, http.MethodPut, ts.URL+"/api/leave-requests/"+created.ID, employeeToken, map[string]string{
		"subtype":    "medical",
		"reason":     "clinic visit",
		"start_date": "2026-09-07",
		"end_date":   "2026-09-09",
	}, []byte("medical report"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("multipart edit failed: %d %v", resp.StatusCode, env.Error)
	}
	var edited struct {
		Subtype     string `json:"subtype"`
		Attachments []struct {
			URL string `json:"url"`
		} `json:"attachments"`
	}
	if err := json.Unmarshal(env.Data, &edited); err != nil {
		t.Fatalf("decode edited request: %v", err)
	}
	if edited.Subtype != "medical" {
		t.Fatalf("expected edited subtype medical, got %s", edited.Subtype)
	}
	if len(edited.Attachments) != 1 {
		t.Fatalf("expected the edit's attachment to be stored, got %d", len(edited.Attachments))
	}

	// An employee cannot decide their own request.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/leave-requests/"+created.ID+"/approve", employeeToken, map[string]any{
		"status": "approved",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for employee decision, got %d", resp.StatusCode)
	}

	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/leave-requests/"+created.ID+"/approve", adminToken, map[string]any{
		"status":  "approved",
		"comment": "enjoy",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve failed: %d %v", resp.StatusCode, env.Error)
	}
	var decided struct {
		Status    string `json:"status"`
		Approvals []struct {
			Status string `json:"status"`
		} `json:"approvals"`
	}
	if err := json.Unmarshal(env.Data, &decided); err != nil {
		t.Fatalf("decode decided request: %v", err)
	}
	if decided.Status != "approved" {
		t.Fatalf("expected approved, got %s", decided.Status)
	}
	if len(decided.Approvals) == 0 {
		t.Fatal("expected an approval trail entry")
	}

	// Terminal statuses cannot be decided again.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/leave-requests/"+created.ID+"/approve", adminToken, map[string]any{
		"status": "rejected", "comment": "changed my mind",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for double decision, got %d", resp.StatusCode)
	}

	// Owner cannot delete once decided.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/leave-requests/"+created.ID, employeeToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 deleting a decided request as owner, got %d", resp.StatusCode)
	}
}

func TestStatementApprovalRequiresEvidence(t *testing.T) {
	_, ts := testApp(t)
	adminToken := login(t, ts.URL, "admin", "ChangeMe123!")

	username := fmt.Sprintf("stmt%d", time.Now().UnixNano())
	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/users", adminToken, map[string]any{
		"name":     "Statement Employee",
		"username": username,
		"email":    username + "@test.local",
		"role":     "employee",
		"password": "Password123!",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create employee failed: %d %v", resp.StatusCode, env.Error)
	}
	employeeToken := login(t, ts.URL, username, "Password123!")

	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/statement-requests", employeeToken, map[string]any{
		"subtype": "salary",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create statement request failed: %d %v", resp.StatusCode, env.Error)
	}
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(env.Data, &created)

	// Approval without an attachment is rejected before anything is stored.
	resp, env = doMultipart(t, http.MethodPost, ts.URL+"/api/statement-requests/"+created.ID+"/approve", adminToken, map[string]string{"comment": "ok"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without evidence, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Message != "يجب رفع مرفق البيان" {
		t.Fatalf("expected the statement attachment message, got %+v", env.Error)
	}

	// The server can generate the statement document itself.
	resp, env = doMultipart(t, http.MethodPost, ts.URL+"/api/statement-requests/"+created.ID+"/approve", adminToken, map[string]string{"generate": "true"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate approval failed: %d %v", resp.StatusCode, env.Error)
	}
	var decided struct {
		Status      string `json:"status"`
		Attachments []struct {
			URL string `json:"url"`
		} `json:"attachments"`
	}
	if err := json.Unmarshal(env.Data, &decided); err != nil {
		t.Fatalf("decode decided request: %v", err)
	}
	if decided.Status != "approved" {
		t.Fatalf("expected approved, got %s", decided.Status)
	}
	if len(decided.Attachments) != 1 {
		t.Fatalf("expected the generated document to be attached, got %d attachments", len(decided.Attachments))
	}

	// A second approval loses the conditional transition, and its evidence
	// must not land either.
	resp, _ = doMultipart(t, http.MethodPost, ts.URL+"/api/statement-requests/"+created.ID+"/approve", adminToken, map[string]string{"comment": "again"}, []byte("%PDF-1.4 late"))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for a second approval, got %d", resp.StatusCode)
	}
	resp, env = doJSON(t, http.MethodGet, ts.URL+"/api/statement-requests/"+created.ID, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reload after failed approval: %d %v", resp.StatusCode, env.Error)
	}
	if err := json.Unmarshal(env.Data, &decided); err != nil {
		t.Fatalf("decode reloaded request: %v", err)
	}
	if len(decided.Attachments) != 1 {
		t.Fatalf("failed approval must not add attachments, got %d", len(decided.Attachments))
	}
}

func TestLogoutEndsSession(t *testing.T) {
	_, ts := testApp(t)
	adminToken := login(t, ts.URL, "admin", "ChangeMe123!")

	resp, env := doJSON(t, http.MethodGet, ts.URL+"/api/dashboard/summary", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary before logout: %d %v", resp.StatusCode, env.Error)
	}

	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/logout", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout failed: %d %v", resp.StatusCode, env.Error)
	}

	// The JWT is still inside its lifetime; the revoked session has to stop
	// it anyway.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/dashboard/summary", adminToken, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestEmployeeProfileSelfService(t *testing.T) {
	_, ts := testApp(t)
	adminToken := login(t, ts.URL, "admin", "ChangeMe123!")

	username := fmt.Sprintf("profile%d", time.Now().UnixNano())
	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/users", adminToken, map[string]any{
		"name":     "Profile Employee",
		"username": username,
		"email":    username + "@test.local",
		"role":     "employee",
		"password": "Password123!",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create employee failed: %d %v", resp.StatusCode, env.Error)
	}
	employeeToken := login(t, ts.URL, username, "Password123!")

	resp, env = doJSON(t, http.MethodGet, ts.URL+"/api/user/me", employeeToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("read own profile failed: %d %v", resp.StatusCode, env.Error)
	}
	var profile struct {
		Username         string `json:"username"`
		MaritalStatus    string `json:"marital_status"`
		NumberOfChildren int    `json:"number_of_children"`
		Phone            string `json:"phone"`
		University       string `json:"university"`
	}
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Username != username {
		t.Fatalf("expected own record, got username %s", profile.Username)
	}

	resp, env = doJSON(t, http.MethodPut, ts.URL+"/api/user/update", employeeToken, map[string]any{
		"marital_status":     "married",
		"number_of_children": 2,
		"qualification":      "BSc Computer Science",
		"phone":              "0500000000",
		"address":            "Riyadh",
		"university":         "King Saud University",
		"graduation_year":    "2015",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile update failed: %d %v", resp.StatusCode, env.Error)
	}
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("decode updated profile: %v", err)
	}
	if profile.MaritalStatus != "married" || profile.NumberOfChildren != 2 {
		t.Fatalf("personal fields not persisted: %+v", profile)
	}
	if profile.Phone != "0500000000" || profile.University != "King Saud University" {
		t.Fatalf("personal fields not persisted: %+v", profile)
	}

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/user/update", employeeToken, map[string]any{
		"number_of_children": -1,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative children count, got %d", resp.StatusCode)
	}
}

func TestResetPasswordBindsTokenToEmail(t *testing.T) {
	app, ts := testApp(t)
	adminToken := login(t, ts.URL, "admin", "ChangeMe123!")

	username := fmt.Sprintf("reset%d", time.Now().UnixNano())
	email := username + "@test.local"
	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/users", adminToken, map[string]any{
		"name":     "Reset Employee",
		"username": username,
		"email":    email,
		"role":     "employee",
		"password": "Password123!",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create employee failed: %d %v", resp.StatusCode, env.Error)
	}

	// Delivery is out of band, so plant the reset row the way the forgot
	// flow would.
	resetToken := fmt.Sprintf("reset-token-%d", time.Now().UnixNano())
	_, err := app.DB.Exec(context.Background(), `
    INSERT INTO password_resets (user_id, token_hash, expires_at)
    VALUES ((SELECT id FROM users WHERE username = $1), $2, now() + interval '1 hour')
  `, username, auth.TokenHash(resetToken))
	if err != nil {
		t.Fatalf("plant reset token: %v", err)
	}

	// A live token paired with someone else's email must not reset anything.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/reset-password", "", map[string]any{
		"token":                 resetToken,
		"email":                 "admin@test.local",
		"password":              "NewPassword123!",
		"password_confirmation": "NewPassword123!",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched email, got %d", resp.StatusCode)
	}
	login(t, ts.URL, username, "Password123!")

	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/reset-password", "", map[string]any{
		"token":                 resetToken,
		"email":                 email,
		"password":              "NewPassword123!",
		"password_confirmation": "NewPassword123!",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset failed: %d %v", resp.StatusCode, env.Error)
	}
	login(t, ts.URL, username, "NewPassword123!")
}

func TestGuardRedirectsConsoleNavigation(t *testing.T) {
	_, ts := testApp(t)

	client := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp, err := client.Get(ts.URL + "/employee/dashboard")
	if err != nil {
		t.Fatalf("guard request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %s", loc)
	}
}

func doMultipart(t *testing.T, method, url, token string, fields map[string]string, file []byte) (*http.Response, envelope) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		_ = writer.WriteField(key, value)
	}
	if file != nil {
		part, err := writer.CreateFormFile("attachment", "evidence.pdf")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = part.Write(file)
	}
	writer.Close()

	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("multipart %s failed: %v", method, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp, env
}
