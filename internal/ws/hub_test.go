package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishQueuesJSON(t *testing.T) {
	h := NewHub()
	h.Publish(map[string]string{"type": "stock_update"})

	msg := <-h.Broadcast
	var got map[string]string
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "stock_update", got["type"])
}

func TestPublishDropsWhenFull(t *testing.T) {
	h := NewHub()
	for i := 0; i < cap(h.Broadcast)+5; i++ {
		h.Publish(i)
	}
	assert.Len(t, h.Broadcast, cap(h.Broadcast))
}

func TestStopEndsRun(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()
	h.Stop()
	<-done
	assert.Zero(t, h.ClientCount())
}
