// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает ошибку сервисного слоя (сентинелы internal/service),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Источник истинности по маппингу: сентинелы сервисного слоя.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/savina-m/comments-engine/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// Локальные сентинелы транспортного слоя: сервис про аутентификацию и паники
// не знает, а формат ответа должен быть единым.
var (
	ErrUnauthenticated = stderrors.New("unauthenticated")
	ErrInternal        = stderrors.New("internal")
)

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и унифицированный
// ответ для фронта.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - отказы политики получают различимые машинные коды (not_owner,
//     window_expired, ...), статус 403 либо 409 по смыслу;
//   - всё неопознанное — 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := base(err)
	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// base — базовый маппинг сервисных сентинелов -> HTTP/FE-код/сообщение:
//   - ErrInvalidArgument (битые входные/UUID/пустой текст) -> 400
//   - ErrNotFound / ErrParentNotFound -> 404 (разные машинные коды)
//   - ErrNotOwner / ErrWindowExpired -> 403 (отказ политики)
//   - ErrNotDeleted / ErrParentStillDeleted / ErrConflict -> 409
//   - ErrUnauthenticated -> 401
//   - Canceled -> 499 (клиент закрыл соединение)
//   - DeadlineExceeded -> 504 (истёк дедлайн запроса)
//   - прочее -> 500/internal
func base(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case stderrors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case stderrors.Is(err, service.ErrParentNotFound):
		return http.StatusNotFound, "parent_not_found", "parent comment not found"
	case stderrors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case stderrors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden, "not_owner", "only the author may do this"
	case stderrors.Is(err, service.ErrWindowExpired):
		return http.StatusForbidden, "window_expired", "time window expired"
	case stderrors.Is(err, service.ErrNotDeleted):
		return http.StatusConflict, "not_deleted", "comment is not deleted"
	case stderrors.Is(err, service.ErrParentStillDeleted):
		return http.StatusConflict, "parent_still_deleted", "parent comment is still deleted"
	case stderrors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict", "conflict"
	case stderrors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
