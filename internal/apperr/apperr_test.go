package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", Storage("record.save", errBoom))

	assert.Equal(t, KindStorage, KindOf(err))
	assert.True(t, Is(err, KindStorage))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, "handler: record.save: boom", err.Error())
}

func TestNilErrorStaysNil(t *testing.T) {
	assert.NoError(t, Validation("x", nil))
}

func TestUnclassified(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errBoom))
	assert.Equal(t, "unknown", KindOf(errBoom).String())
}
