package ierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	cause := errors.New("bad value")

	t.Run("message and unwrap", func(t *testing.T) {
		err := New(ErrorCodeInvalidArgument, cause)

		assert.Equal(t, "InvalidArgument: bad value", err.Error())
		assert.Equal(t, "bad value", err.Message)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("code of wrapped error", func(t *testing.T) {
		err := fmt.Errorf("decode: %w", New(ErrorCodeNotFound, cause))

		assert.Equal(t, ErrorCodeNotFound, CodeOf(err))
	})

	t.Run("json body", func(t *testing.T) {
		body, err := json.Marshal(New(ErrorCodeUnavailable, errors.New("message journal is disabled")))

		assert.NoError(t, err)
		assert.JSONEq(t, `{"code":"Unavailable","message":"message journal is disabled"}`, string(body))
	})

	t.Run("code of plain error", func(t *testing.T) {
		assert.Equal(t, ErrorCodeInternal, CodeOf(cause))
	})
}
