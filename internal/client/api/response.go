package api

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
)

// Response is a successful (2xx) reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// IsJSON reports whether the server labelled the body as JSON.
func (r *Response) IsJSON() bool {
	return isJSON(r.Header.Get("Content-Type"))
}

// Text is the raw body.
func (r *Response) Text() string { return string(r.Body) }

// Decode fills out from the body. A JSON body is unmarshalled; a text body can
// only be decoded into a *string. An empty body (204 and the like) leaves out
// untouched.
func (r *Response) Decode(out any) error {
	if out == nil || len(r.Body) == 0 {
		return nil
	}
	if r.IsJSON() {
		if err := json.Unmarshal(r.Body, out); err != nil {
			return newError(KindInvalidResponse, r.StatusCode, ErrInvalidResponse.Message, err)
		}
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = r.Text()
		return nil
	}
	return newError(KindInvalidResponse, r.StatusCode, "expected a JSON response", nil)
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// errorBody covers FastAPI ({"detail": "..."} or {"detail": [{"loc": [...], "msg": "..."}]})
// and generic ({"message": "..."}) error payloads.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type detailItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseErrorBody extracts a message and field details from an error reply.
func parseErrorBody(header http.Header, body []byte) (string, []FieldError) {
	if len(body) == 0 {
		return "", nil
	}
	if !isJSON(header.Get("Content-Type")) {
		return strings.TrimSpace(string(body)), nil
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return "", nil
	}

	var msg string
	if len(eb.Detail) > 0 {
		var s string
		if json.Unmarshal(eb.Detail, &s) == nil {
			msg = s
		} else {
			var items []detailItem
			if json.Unmarshal(eb.Detail, &items) == nil {
				fields := make([]FieldError, 0, len(items))
				for _, it := range items {
					fields = append(fields, FieldError{Field: fieldName(it.Loc), Message: it.Msg})
				}
				return firstNonEmpty(eb.Message, eb.Error), fields
			}
		}
	}
	return firstNonEmpty(msg, eb.Message, eb.Error), nil
}

// fieldName drops the leading "body"/"query"/"path" segment of a FastAPI loc.
func fieldName(loc []any) string {
	parts := make([]string, 0, len(loc))
	for i, p := range loc {
		s, ok := p.(string)
		if !ok {
			b, _ := json.Marshal(p)
			s = string(b)
		}
		if i == 0 && len(loc) > 1 && (s == "body" || s == "query" || s == "path") {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
