package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorsSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsSuite))
}

func (s *ErrorsSuite) TestCodes() {
	s.Run("HasCode finds the code through wrapping", func() {
		base := New(CodeValidation, "amount must be positive")
		wrapped := fmt.Errorf("register: %w", base)

		s.True(HasCode(wrapped, CodeValidation))
		s.False(HasCode(wrapped, CodeConflict))
		s.False(HasCode(errors.New("plain"), CodeValidation))
	})

	s.Run("CodeOf defaults uncoded errors to internal", func() {
		s.Equal(CodeBlocked, CodeOf(New(CodeBlocked, "blocked")))
		s.Equal(CodeInternal, CodeOf(errors.New("plain")))
	})

	s.Run("Wrap keeps the cause reachable", func() {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeUnavailable, "screening source down")

		s.True(errors.Is(err, cause))
		s.Equal(CodeUnavailable, CodeOf(err))
		s.Contains(err.Error(), "connection refused")
	})
}

func (s *ErrorsSuite) TestMessageOf() {
	s.Run("exposes domain messages", func() {
		s.Equal("reason required", MessageOf(New(CodeAuditPolicy, "reason required")))
	})

	s.Run("hides internal details", func() {
		s.Empty(MessageOf(Wrap(errors.New("pq: relation missing"), CodeInternal, "persist client")))
		s.Empty(MessageOf(errors.New("plain")))
	})
}

func (s *ErrorsSuite) TestToHTTPStatus() {
	cases := map[Code]int{
		CodeValidation:  http.StatusUnprocessableEntity,
		CodeBadRequest:  http.StatusBadRequest,
		CodeNotFound:    http.StatusNotFound,
		CodeConflict:    http.StatusConflict,
		CodeAuditPolicy: http.StatusConflict,
		CodeBlocked:     http.StatusForbidden,
		CodeForbidden:   http.StatusForbidden,
		CodeStaleData:   http.StatusServiceUnavailable,
		CodeUnavailable: http.StatusServiceUnavailable,
		CodeInternal:    http.StatusInternalServerError,
	}
	for code, want := range cases {
		s.Equal(want, ToHTTPStatus(code), string(code))
	}
	s.Equal(http.StatusInternalServerError, ToHTTPStatus(Code("made_up")))
}
