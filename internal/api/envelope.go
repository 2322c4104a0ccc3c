package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"nathanbeddoewebdev/revdash/internal/domain"
)

// envelope is the wrapper used by the account endpoints. Dashboard
// endpoints return their payload unwrapped.
type envelope[T any] struct {
	Data   T          `json:"data"`
	Errors []apiError `json:"errors,omitempty"`
}

type apiError struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type results[T any] struct {
	Results T `json:"results"`
}

type resultsWithMeta[T, M any] struct {
	Results T `json:"results"`
	Meta    M `json:"meta"`
}

// err reports API-level errors returned with a successful status.
func (e envelope[T]) err() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, joinErrors(e.Errors))
}

func joinErrors(errs []apiError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch {
		case e.Title != "":
			msgs = append(msgs, e.Title)
		case e.ID != "":
			msgs = append(msgs, e.ID)
		}
	}
	if len(msgs) == 0 {
		return "unknown error"
	}
	return strings.Join(msgs, "; ")
}

// errorMessage extracts a readable message from an error response body.
func errorMessage(body []byte) string {
	var env envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && len(env.Errors) > 0 {
		return joinErrors(env.Errors)
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

// --- Request bodies ---

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

type appsBody struct {
	App []string `json:"app"`
}

type timeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type rangeBody struct {
	App       []string  `json:"app"`
	TimeRange timeRange `json:"time_range"`
}
