package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Detail string
	Method string
	Path   string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// UserMessage is the backend's own explanation, if it gave one.
func (e *APIError) UserMessage() string {
	return e.Detail
}

// Is lets callers match common statuses with errors.Is and the domain
// sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrNotAuthenticated:
		return e.Status == http.StatusUnauthorized
	case domain.ErrForbidden:
		return e.Status == http.StatusForbidden
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	case domain.ErrInvalidInput:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	}
	return false
}

// errorPayload covers the shapes the backend and common proxies use:
// {"detail": "..."}, {"detail": [{"msg": "..."}]}, {"error": "..."} and
// {"message": "..."}.
type errorPayload struct {
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type validationItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func parseDetail(body []byte) string {
	var p errorPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return ""
	}

	if len(p.Detail) > 0 {
		var s string
		if err := json.Unmarshal(p.Detail, &s); err == nil && s != "" {
			return s
		}
		var items []validationItem
		if err := json.Unmarshal(p.Detail, &items); err == nil && len(items) > 0 {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg == "" {
					continue
				}
				if field := lastLoc(it.Loc); field != "" {
					msgs = append(msgs, field+": "+it.Msg)
				} else {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if p.Error != "" {
		return p.Error
	}
	return p.Message
}

func lastLoc(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok && s != "body" {
		return s
	}
	return ""
}
