package console

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignInLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewSignInLimiter(3, time.Minute)
	l.now = func() time.Time { return now }

	for range 3 {
		assert.True(t, l.Check("1.2.3.4"))
		l.Record("1.2.3.4")
	}
	assert.False(t, l.Check("1.2.3.4"))
	assert.True(t, l.Check("5.6.7.8"), "limits are per address")

	now = now.Add(61 * time.Second)
	assert.True(t, l.Check("1.2.3.4"), "attempts age out of the window")

	l.Record("1.2.3.4")
	l.Reset("1.2.3.4")
	assert.Empty(t, l.attempts)
}

func TestClientAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", clientAddr(r))

	r.RemoteAddr = "not-a-host-port"
	assert.Equal(t, "not-a-host-port", clientAddr(r))
}
