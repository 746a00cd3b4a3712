package cache

import (
	"context"
	"testing"

	"postboard/internal/observability"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	tests := []struct {
		name    string
		addr    string
		wantNil bool
	}{
		{"empty disables events", "", true},
		{"host and port", mr.Addr(), false},
		{"url", "redis://" + mr.Addr() + "/0", false},
		{"invalid url", "redis://:badport:x", true},
		{"unreachable", "127.0.0.1:1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewRedisClient(context.Background(), tt.addr)
			if tt.wantNil {
				assert.Nil(t, client)
				return
			}
			require.NotNil(t, client)
			assert.NoError(t, Ping(context.Background(), client))
			assert.NoError(t, Close(client))
		})
	}
}

func TestPingAndClose_NilClient(t *testing.T) {
	assert.Error(t, Ping(context.Background(), nil))
	assert.NoError(t, Close(nil))
}

func TestMetricsHook_CountsFailures(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := NewRedisClient(context.Background(), mr.Addr())
	require.NotNil(t, client)
	defer func() { _ = client.Close() }()

	before := testutil.ToFloat64(observability.RedisErrors.WithLabelValues("ping"))
	mr.Close()

	assert.Error(t, Ping(context.Background(), client))
	assert.Equal(t, before+1, testutil.ToFloat64(observability.RedisErrors.WithLabelValues("ping")))
}
