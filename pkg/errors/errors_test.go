package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeAndStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{&ErrUnauthorized{}, CodeUnauthorized, http.StatusUnauthorized},
		{&ErrForbidden{}, CodeForbidden, http.StatusForbidden},
		{&ErrNotFound{Resource: "order", ID: "x"}, CodeNotFound, http.StatusNotFound},
		{&ErrValidation{Message: "bad"}, CodeInvalidInput, http.StatusUnprocessableEntity},
		{&ErrPaymentNotConfirmed{SessionID: "cs", Status: "unpaid"}, CodePaymentNotConfirmed, http.StatusPaymentRequired},
		{&ErrTooManyRequests{}, CodeTooManyRequests, http.StatusTooManyRequests},
		{&ErrInternal{Message: "boom"}, CodeInternal, http.StatusInternalServerError},
		{fmt.Errorf("plain"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, Code(tc.err), tc.err.Error())
		assert.Equal(t, tc.status, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestInternalUnwrap(t *testing.T) {
	cause := fmt.Errorf("db down")
	err := Internal("query failed", cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "query failed")
	assert.Contains(t, err.Error(), "db down")
}

func TestValidationDetails(t *testing.T) {
	err := &ErrValidation{Message: "bad", Fields: map[string]string{"stock": "required"}}
	assert.Equal(t, map[string]string{"stock": "required"}, Details(err))

	assert.Nil(t, Details(&ErrValidation{Message: "bad"}))
	assert.Nil(t, Details(&ErrInternal{Message: "boom"}))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "order not found: 42", (&ErrNotFound{Resource: "order", ID: "42"}).Error())
	assert.Equal(t, "unauthorized", (&ErrUnauthorized{}).Error())
	assert.Equal(t, "nope", (&ErrForbidden{Message: "nope"}).Error())
	assert.Contains(t, (&ErrPaymentNotConfirmed{SessionID: "cs_1", Status: "unpaid"}).Error(), "cs_1")
}
