package core

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	err := Error(EINVALID, "font protocol lacks %s", "LoadTable")
	if Code(err) != EINVALID {
		t.Errorf("expected error code %d, is %d", EINVALID, Code(err))
	}
	assert.Equal(t, "font protocol lacks LoadTable", UserMessage(err))
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, EINTERNAL, Code(errors.New("plain")))
	assert.Equal(t, "internal error", UserMessage(errors.New("plain")))
}

func TestWrapError(t *testing.T) {
	cause := errors.New("truncated table")
	err := WrapError(cause, EMISSING, "GDEF not usable")
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, EMISSING, Code(fmt.Errorf("context: %w", err)))
	assert.Contains(t, err.Error(), "truncated table")
	assert.Equal(t, EINVALID, Code(WrapError(nil, EINVALID, "x")))
}

func TestPrintUserError(t *testing.T) {
	var buf bytes.Buffer
	printUserError(&buf, Error(EMISSING, "no such font"))
	assert.Equal(t, "[122] no such font\n", buf.String())
	buf.Reset()
	printUserError(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}
