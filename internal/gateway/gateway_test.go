package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestClientOptionsReconnectCadence(t *testing.T) {
	opts := clientOptions(Options{Broker: "tcp://broker:1883", ClientID: "gw-test"}, zap.NewNop())

	assert.Equal(t, "gw-test", opts.ClientID)
	assert.True(t, opts.AutoReconnect)
	assert.Equal(t, 3*time.Second, opts.MaxReconnectInterval)

	// The initial dial is retried by the backoff wrapper in Connect;
	// a blocking paho-side connect retry would defeat its time bound.
	assert.False(t, opts.ConnectRetry)
}
