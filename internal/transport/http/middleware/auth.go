package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apierrors "github.com/savina-m/comments-engine/internal/transport/http/errors"
)

// ctxKey — приватный тип ключей контекста мидлваров.
type ctxKey int

const ctxUserID ctxKey = iota

// accessClaims — полезная нагрузка access-токена внешнего identity-сервиса.
// Нам нужен только uid; всё остальное (email и пр.) токен может нести,
// но мы его не читаем.
type accessClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// AuthBearer проверяет Bearer access-токен (HS256, общий секрет с
// identity-сервисом) и кладёт идентификатор пользователя в контекст.
// Запрос без валидного токена отклоняется с 401.
func AuthBearer(secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, err := verifyBearer(r.Header.Get("Authorization"), secret)
			if err != nil {
				apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID возвращает идентификатор пользователя, положенный AuthBearer.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	uid, ok := ctx.Value(ctxUserID).(uuid.UUID)
	return uid, ok
}

func verifyBearer(auth, secret string) (uuid.UUID, error) {
	const prefix = "Bearer "

	if !strings.HasPrefix(auth, prefix) || len(auth) == len(prefix) {
		return uuid.Nil, fmt.Errorf("missing bearer token")
	}

	tokenStr := strings.TrimSpace(auth[len(prefix):])

	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}

			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uid claim: %w", err)
	}

	return uid, nil
}
