package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/slot-availability/internal/application"
)

var (
	errRateLimited        = errors.New("リクエストが多すぎます。しばらくしてから再試行してください。")
	errLimiterUnavailable = errors.New("レート制限サービスを利用できません。")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || status == http.StatusNotModified || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeBody(ctx context.Context, w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to write response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, code string, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := err.Error(); msg != "" {
			message = msg
		}
	}
	r.writeJSON(ctx, w, status, errorResponse{ErrorCode: code, Message: message})
}

// handleServiceError maps application error kinds onto status codes.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := application.ErrorKind(err)
	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err, "error_kind", kind)
	} else {
		r.loggerFor(ctx).WarnContext(ctx, "request rejected", "status", status, "error", err, "error_kind", kind)
	}

	resp := errorResponse{ErrorCode: kind, Message: localizedStatusMessage(status)}
	if kind == "unexpected" || kind == "" {
		resp.ErrorCode = "internal"
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) && vErr.HasErrors() {
		resp.Errors = localizeValidationErrors(vErr)
	}
	r.writeJSON(ctx, w, status, resp)
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusForKind(kind string) int {
	switch kind {
	case "invalid_timestamp", "validation":
		return http.StatusBadRequest
	case "invalid_event":
		return http.StatusUnprocessableEntity
	case "source_unavailable":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "日付は yyyy-MM-dd 形式で指定してください。"
	case http.StatusNotFound:
		return "指定されたリソースが見つかりません。"
	case http.StatusMethodNotAllowed:
		return "このメソッドは許可されていません。"
	case http.StatusUnprocessableEntity:
		return "登録済みのイベントに不正な日時が含まれています。"
	case http.StatusTooManyRequests:
		return errRateLimited.Error()
	case http.StatusServiceUnavailable:
		return "イベントの取得に失敗しました。しばらくしてから再試行してください。"
	default:
		return "サーバー内部でエラーが発生しました。"
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	translated := make(map[string]string, len(vErr.FieldErrors))
	for field := range vErr.FieldErrors {
		switch field {
		case "date":
			translated[field] = "日付は yyyy-MM-dd 形式で指定してください。"
		default:
			translated[field] = vErr.FieldErrors[field]
		}
	}
	return translated
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
