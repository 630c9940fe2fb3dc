package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/talent-scout/internal/apierror"
	"github.com/jonathan/talent-scout/internal/pipeline"
	"github.com/jonathan/talent-scout/internal/schemas"
	"github.com/jonathan/talent-scout/internal/search"
)

// User-facing sentences for local failures.
const (
	msgSearchUnconfigured = "Search is not set up. Set BOUNTYLAB_API_KEY to enable developer and repository search."
	msgSaveInvalid        = "Something went wrong saving this developer. Try again from the search page."
	msgCandidateNotFound  = "That candidate is no longer in your pipeline. Please refresh the page."
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	status, _ := errorBody(err)
	return status
}

// errorBody maps err onto a status and the JSON error body sent with it.
func errorBody(err error) (int, apierror.Response) {
	var (
		validation  *ErrValidation
		schemaErr   *schemas.ValidationError
		searchPre   *search.PreconditionError
		pipelinePre *pipeline.PreconditionError
		storeErr    *pipeline.StoreError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, apierror.Response{Error: validation.Error(), UserMessage: apierror.MessageBadRequest}
	case errors.As(err, &schemaErr):
		return http.StatusBadRequest, apierror.Response{Error: schemaErr.Summary(), UserMessage: apierror.MessageBadRequest}
	case errors.As(err, &searchPre):
		return http.StatusBadRequest, apierror.Response{Error: searchPre.Message, UserMessage: apierror.MessageBadRequest}
	case errors.As(err, &pipelinePre):
		return http.StatusBadRequest, apierror.Response{Error: pipelinePre.Message, UserMessage: msgSaveInvalid}
	case errors.Is(err, search.ErrNotFound):
		return http.StatusNotFound, apierror.Response{Error: "User not found", UserMessage: apierror.MessageNotFound}
	case errors.Is(err, pipeline.ErrNotFound):
		return http.StatusNotFound, apierror.Response{Error: "Candidate not found", UserMessage: msgCandidateNotFound}
	case errors.Is(err, pipeline.ErrStoreUnconfigured):
		return http.StatusServiceUnavailable, apierror.Response{Error: "Pipeline store not configured", UserMessage: pipeline.UnconfiguredMessage}
	case errors.Is(err, search.ErrSearchUnconfigured):
		return http.StatusServiceUnavailable, apierror.Response{Error: "Search provider not configured", UserMessage: msgSearchUnconfigured}
	case errors.As(err, &storeErr):
		return http.StatusInternalServerError, apierror.Response{Error: storeErr.Error(), UserMessage: storeErr.UserMessage()}
	}

	n := apierror.Normalize(err)
	return n.Status, n.Body
}

// writeError logs err and writes its normalized JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	} else {
		s.log.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	s.jsonResponse(w, status, body)
}
