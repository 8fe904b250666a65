package netcfg

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClientSetsTimeout(t *testing.T) {
	client := NewHTTPClient(5 * time.Second)
	assert.Equal(t, 5*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, transport.DialContext)
}

func TestPreferIPv4DialContextForcesTCP4(t *testing.T) {
	var gotNetwork string
	dialer := &net.Dialer{Control: func(network, _ string, _ syscall.RawConn) error {
		gotNetwork = network
		return errors.New("stop before connecting")
	}}
	dial := preferIPv4DialContext(dialer)
	assert.NotNil(t, dial)

	_, err := dial(context.Background(), "tcp", "127.0.0.1:1")
	require.Error(t, err)
	assert.Equal(t, "tcp4", gotNetwork)
}
