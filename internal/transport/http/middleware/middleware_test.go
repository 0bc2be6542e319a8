package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errEnvelope struct {
	Error apiError `json:"error"`
}

func decodeErr(t *testing.T, rr *httptest.ResponseRecorder) errEnvelope {
	t.Helper()
	var env errEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func TestChain_Order(t *testing.T) {
	order := []string{}

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m1-end")
		})
	}

	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m2-end")
		})
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	chain := Chain(final, m1, m2)
	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/chain", nil))

	require.Equal(t, []string{"m1-begin", "m2-begin", "handler", "m2-end", "m1-end"}, order)
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestID_GenerateAndRespectIncoming(t *testing.T) {
	var seenID string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusOK)
	}))

	// Нет заголовка — генерируем 32-символьный hex id.
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, seenID, 32)
	require.Equal(t, seenID, rr.Header().Get("X-Request-Id"))

	// Входящий заголовок уважаем как есть.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "incoming-id")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, "incoming-id", seenID)
	require.Equal(t, "incoming-id", rr.Header().Get("X-Request-Id"))
}

func TestRecover_PanicBecomes500Envelope(t *testing.T) {
	h := Recover()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	env := decodeErr(t, rr)
	require.Equal(t, "internal", env.Error.Code)
	// Детали паники не утекают.
	require.NotContains(t, rr.Body.String(), "boom")
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var hadDeadline bool
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadDeadline = r.Context().Deadline()
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, hadDeadline)

	// d<=0 — no-op, дедлайн не появляется.
	h = Timeout(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadDeadline = r.Context().Deadline()
		w.WriteHeader(http.StatusOK)
	}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, hadDeadline)
}

// signToken — access-токен внешнего identity-сервиса в тестовом исполнении.
func signToken(t *testing.T, secret string, uid string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid": uid,
		"exp": jwt.NewNumericDate(time.Now().Add(ttl)),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthBearer(t *testing.T) {
	const secret = "test-secret"
	userID := uuid.New()

	var seenUID uuid.UUID
	var seenOK bool
	h := AuthBearer(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUID, seenOK = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	doReq := func(authHeader string) *httptest.ResponseRecorder {
		seenUID, seenOK = uuid.Nil, false
		req := httptest.NewRequest(http.MethodPost, "/comments", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	t.Run("valid_token", func(t *testing.T) {
		rr := doReq("Bearer " + signToken(t, secret, userID.String(), time.Minute))
		require.Equal(t, http.StatusOK, rr.Code)
		require.True(t, seenOK)
		require.Equal(t, userID, seenUID)
	})

	t.Run("missing_header", func(t *testing.T) {
		rr := doReq("")
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.Equal(t, "unauthenticated", decodeErr(t, rr).Error.Code)
		require.False(t, seenOK)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		rr := doReq("Bearer " + signToken(t, "other-secret", userID.String(), time.Minute))
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired_token", func(t *testing.T) {
		rr := doReq("Bearer " + signToken(t, secret, userID.String(), -time.Hour))
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage_uid_claim", func(t *testing.T) {
		rr := doReq("Bearer " + signToken(t, secret, "not-a-uuid", time.Minute))
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("not_bearer_scheme", func(t *testing.T) {
		rr := doReq("Basic dXNlcjpwYXNz")
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
