package httputil

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// RespondJSON writes a JSON response with the given status code.
// It handles encoding errors safely by marshaling first, preventing
// partial responses if encoding fails after headers are sent.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		// Encoding failed - return 500 instead
		RespondProblem(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondText writes a plain text response.
func RespondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// ProblemDetail represents an RFC 7807 Problem Details response
type ProblemDetail struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Extra    map[string]interface{} `json:"-"`
}

// MarshalJSON implements custom JSON marshaling to include Extra fields at top level
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}

	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}

	for k, v := range p.Extra {
		m[k] = v
	}

	return json.Marshal(m)
}

// RespondError writes the error in the representation the client asked for:
// RFC 7807 Problem Details when Accept prefers JSON, the bare detail as
// plain text otherwise.
func RespondError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	if r != nil && PrefersJSON(r) {
		RespondProblemWithExtras(w, status, detail, problemExtras(r))
		return
	}
	RespondText(w, status, detail)
}

// RespondProblem writes an RFC 7807 Problem Details error response
func RespondProblem(w http.ResponseWriter, status int, detail string) {
	RespondProblemWithExtras(w, status, detail, nil)
}

// RespondProblemWithExtras writes an RFC 7807 error with additional fields
func RespondProblemWithExtras(w http.ResponseWriter, status int, detail string, extras map[string]interface{}) {
	problem := ProblemDetail{
		Type:   errorTypeFromStatus(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Extra:  extras,
	}

	payload, err := json.Marshal(problem)
	if err != nil {
		// Fallback to plain text if JSON encoding fails
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	w.Write(payload)
}

func problemExtras(r *http.Request) map[string]interface{} {
	if id := GetRequestID(r); id != "" {
		return map[string]interface{}{"request_id": id}
	}
	return nil
}

// PrefersJSON reports whether the Accept header ranks a JSON media type above
// every text type. Wildcards count for neither side.
func PrefersJSON(r *http.Request) bool {
	var jsonQ, textQ float64
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if v, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				q = parsed
			}
		}

		switch {
		case mediaType == "application/json", mediaType == "application/problem+json":
			jsonQ = max(jsonQ, q)
		case strings.HasPrefix(mediaType, "text/"):
			textQ = max(textQ, q)
		}
	}
	return jsonQ > 0 && jsonQ > textQ
}

// errorTypeFromStatus returns the RFC 7807 type URI for a status code
func errorTypeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.1"
	case http.StatusUnauthorized:
		return "https://datatracker.ietf.org/doc/html/rfc7235#section-3.1"
	case http.StatusNotFound:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.4"
	case http.StatusRequestEntityTooLarge:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.11"
	case http.StatusUnprocessableEntity:
		return "https://datatracker.ietf.org/doc/html/rfc4918#section-11.2"
	case http.StatusInternalServerError:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.1"
	case http.StatusGatewayTimeout:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.5"
	default:
		return "about:blank"
	}
}
