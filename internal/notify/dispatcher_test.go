package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversJobs(t *testing.T) {
	var mu sync.Mutex
	var received []Job

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var job Job
		require.NoError(t, json.NewDecoder(r.Body).Decode(&job))
		mu.Lock()
		received = append(received, job)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(server.URL, 2000, 8)
	gigID := uuid.New()
	d.EnqueueProcessNotifications(gigID)
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	require.Equal(t, gigID, received[0].GigID)
}

func TestDispatcher_EnqueueNeverBlocksWhenFull(t *testing.T) {
	// No webhook configured and a tiny queue: excess jobs must be dropped
	// without blocking the caller.
	d := NewDispatcher("", 100, 1)
	for i := 0; i < 100; i++ {
		d.EnqueueProcessNotifications(uuid.New())
	}
	d.Close()
}

func TestDispatcher_ProcessorFailureIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	d := NewDispatcher(server.URL, 2000, 8)
	d.EnqueueProcessNotifications(uuid.New())
	d.Close()
}
