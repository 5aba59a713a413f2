package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/otp-auth/pkg/account"
	"github.com/tendant/otp-auth/pkg/authflow"
	"github.com/tendant/otp-auth/pkg/iam"
	"github.com/tendant/otp-auth/pkg/notification"
	"github.com/tendant/otp-auth/pkg/otp"
	"github.com/tendant/otp-auth/pkg/sessions"
)

const testCookieName = "otp-auth.session_token"

type apiFixture struct {
	router   *chi.Mux
	notifier *notification.MockNotifier
	links    *account.LinkService
	iam      *iam.IamService
}

func setupAPI(t *testing.T) *apiFixture {
	notifier := &notification.MockNotifier{}
	otpService := otp.NewOtpService(otp.NewInMemoryOtpRepository(), notifier)
	iamService := iam.NewIamService(iam.NewInMemoryUserRepository())
	sessionService := sessions.NewService(sessions.NewInMemoryRepository())
	linkService := account.NewLinkService(account.NewInMemoryAccountRepository(), []string{"google"})
	flowService := authflow.NewFlowService(otpService, iamService, sessionService)

	cookieSetter := sessions.NewCookieSetter(testCookieName, false, 30*24*time.Hour)
	authMiddleware := sessions.Middleware(sessionService, iamService, testCookieName)
	handler := NewHandler(flowService, linkService, cookieSetter, testCookieName)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, authMiddleware)

	return &apiFixture{router: router, notifier: notifier, links: linkService, iam: iamService}
}

func (f *apiFixture) post(t *testing.T, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) sentCode(t *testing.T) string {
	require.NotEmpty(t, f.notifier.SentNotifications)
	code := f.notifier.SentNotifications[len(f.notifier.SentNotifications)-1].Data["Code"]
	require.NotEmpty(t, code)
	return code
}

// login runs the full send/verify round trip and returns the session cookie
func (f *apiFixture) login(t *testing.T, email string) *http.Cookie {
	rec := f.post(t, "/otp/send", SendOTPRequest{Email: email})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.post(t, "/otp/verify", VerifyOTPRequest{Email: email, Code: f.sentCode(t)})
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestSendOTPEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupAPI(t)

		rec := f.post(t, "/otp/send", SendOTPRequest{Email: "user@example.com"})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp SendOTPResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "OTP sent to your email", resp.Message)
		assert.Len(t, f.notifier.SentNotifications, 1)
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		f := setupAPI(t)

		rec := f.post(t, "/otp/send", SendOTPRequest{Email: "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Valid email is required", decodeError(t, rec))
	})

	t.Run("MalformedBody", func(t *testing.T) {
		f := setupAPI(t)

		req := httptest.NewRequest(http.MethodPost, "/otp/send", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("DeliveryFailure", func(t *testing.T) {
		f := setupAPI(t)
		f.notifier.Err = fmt.Errorf("smtp down")

		rec := f.post(t, "/otp/send", SendOTPRequest{Email: "user@example.com"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "Failed to send OTP email", decodeError(t, rec))
	})
}

func TestVerifyOTPEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupAPI(t)

		rec := f.post(t, "/otp/send", SendOTPRequest{Email: "user@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = f.post(t, "/otp/verify", VerifyOTPRequest{Email: "user@example.com", Code: f.sentCode(t)})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp VerifyOTPResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Login successful", resp.Message)
		assert.Equal(t, "user@example.com", resp.User.Email)

		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == testCookieName {
				cookie = c
			}
		}
		require.NotNil(t, cookie, "session cookie must be set")
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/", cookie.Path)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	})

	t.Run("MissingFields", func(t *testing.T) {
		f := setupAPI(t)

		for _, req := range []VerifyOTPRequest{
			{},
			{Email: "user@example.com"},
			{Code: "123456"},
		} {
			rec := f.post(t, "/otp/verify", req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Email and code are required", decodeError(t, rec))
		}
	})

	t.Run("WrongCode", func(t *testing.T) {
		f := setupAPI(t)

		rec := f.post(t, "/otp/send", SendOTPRequest{Email: "user@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)

		wrong := "000000"
		if f.sentCode(t) == wrong {
			wrong = "000001"
		}
		rec = f.post(t, "/otp/verify", VerifyOTPRequest{Email: "user@example.com", Code: wrong})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid or expired OTP", decodeError(t, rec))
	})

	t.Run("ReplayRejected", func(t *testing.T) {
		f := setupAPI(t)

		rec := f.post(t, "/otp/send", SendOTPRequest{Email: "user@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)
		code := f.sentCode(t)

		rec = f.post(t, "/otp/verify", VerifyOTPRequest{Email: "user@example.com", Code: code})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = f.post(t, "/otp/verify", VerifyOTPRequest{Email: "user@example.com", Code: code})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid or expired OTP", decodeError(t, rec))
	})
}

func TestLogoutEndpoint(t *testing.T) {
	t.Run("ClearsSession", func(t *testing.T) {
		f := setupAPI(t)
		cookie := f.login(t, "user@example.com")

		rec := f.post(t, "/auth/logout", struct{}{}, cookie)
		assert.Equal(t, http.StatusOK, rec.Code)

		var cleared *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == testCookieName {
				cleared = c
			}
		}
		require.NotNil(t, cleared)
		assert.Empty(t, cleared.Value)
		assert.Equal(t, -1, cleared.MaxAge)

		// The old cookie no longer authenticates
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(cookie)
		rec = httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("WithoutCookie", func(t *testing.T) {
		f := setupAPI(t)

		rec := f.post(t, "/auth/logout", struct{}{})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMeEndpoint(t *testing.T) {
	t.Run("RequiresAuth", func(t *testing.T) {
		f := setupAPI(t)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("RejectsBogusCookie", func(t *testing.T) {
		f := setupAPI(t)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "forged"})
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ReturnsProfileWithLinkedAccounts", func(t *testing.T) {
		f := setupAPI(t)
		cookie := f.login(t, "alice@example.com")

		ctx := context.Background()
		user, err := f.iam.ResolveUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NoError(t, f.links.LinkExternalAccount(ctx, user, "google", "g-123", "alice@example.com"))

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp MeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "alice@example.com", resp.Email)
		assert.Equal(t, "alice", resp.Name)
		assert.Equal(t, iam.DefaultRole, resp.Role)
		require.Len(t, resp.Accounts, 1)
		assert.Equal(t, "google", resp.Accounts[0].ProviderID)
		assert.Equal(t, "g-123", resp.Accounts[0].AccountID)
	})
}
