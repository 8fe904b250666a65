package streammanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsMaxFailures(t *testing.T) {
	m := New(nil, nil, 0)
	assert.Equal(t, defaultMaxConsecutiveFailures, m.maxFailures)

	m = New(nil, nil, -3)
	assert.Equal(t, defaultMaxConsecutiveFailures, m.maxFailures)

	m = New(nil, nil, 10)
	assert.Equal(t, 10, m.maxFailures)
}

func TestStreamsReturnsEmptyForFreshManager(t *testing.T) {
	m := New(nil, nil, 0)
	assert.Empty(t, m.Streams())
}
