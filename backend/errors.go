package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// FallbackMessage is shown when the backend gives no usable message.
const FallbackMessage = "Something went wrong. Please try again."

// Error is a failed backend call. Status is 0 for transport failures.
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: upstream %d: %s", e.Op, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports whether the backend answered 404.
func (e *Error) NotFound() bool { return e.Status == http.StatusNotFound }

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.NotFound()
}

// MessageFrom extracts a human-readable message from an error payload. It
// looks at "message", then "error", then "errors"; an empty string means the
// payload carried nothing usable.
func MessageFrom(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := textOf(payload["message"]); msg != "" {
		return msg
	}
	if raw, ok := payload["error"]; ok {
		if msg := textOf(raw); msg != "" {
			return msg
		}
		var nested map[string]json.RawMessage
		if json.Unmarshal(raw, &nested) == nil {
			if msg := textOf(nested["message"]); msg != "" {
				return msg
			}
		}
	}
	return firstOf(payload["errors"])
}

func textOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// firstOf handles both ["msg", ...] and {"field": ["msg", ...]} shapes.
func firstOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		for _, item := range list {
			if msg := textOf(item); msg != "" {
				return msg
			}
		}
		return ""
	}
	var byField map[string]json.RawMessage
	if json.Unmarshal(raw, &byField) != nil {
		return ""
	}
	keys := make([]string, 0, len(byField))
	for k := range byField {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msg := textOf(byField[k]); msg != "" {
			return msg
		}
		if msg := firstOf(byField[k]); msg != "" {
			return msg
		}
	}
	return ""
}
