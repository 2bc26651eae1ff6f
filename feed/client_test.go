package feed_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deevus/transit-sign/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePredictions = `{
  "4407": [
    {"route": "61A", "destination": "Downtown", "arrivals": [
      {"bus_id": "3201", "capacity": "EMPTY", "seconds": 20},
      {"bus_id": "3202", "capacity": "FULL", "seconds": 600}
    ]}
  ],
  "7117": []
}`

func newFeedServer(t *testing.T, h http.HandlerFunc) *feed.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return feed.NewClient(feed.ClientParams{BaseURL: srv.URL})
}

func TestClient_Fetch(t *testing.T) {
	var gotPath, gotCache, gotMethod string
	client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotCache = r.Header.Get("Cache-Control")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePredictions))
	})

	preds, err := client.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/predictions", gotPath)
	assert.Equal(t, "no-cache", gotCache)

	require.Len(t, preds["4407"], 1)
	route := preds["4407"][0]
	assert.Equal(t, "61A", route.Route)
	assert.Equal(t, "Downtown", route.Destination)
	require.Len(t, route.Arrivals, 2)
	assert.Equal(t, feed.Arrival{BusID: "3201", Capacity: feed.CapacityEmpty, Seconds: 20}, route.Arrivals[0])
	assert.Empty(t, preds["7117"])
}

func TestClient_URL_TrimsTrailingSlash(t *testing.T) {
	client := feed.NewClient(feed.ClientParams{BaseURL: "http://127.0.0.1:8080/"})
	assert.Equal(t, "http://127.0.0.1:8080/predictions", client.URL())
}

func TestClient_Fetch_StatusError(t *testing.T) {
	client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"API Connect Error: timed out"}`))
	})

	_, err := client.Fetch(context.Background())
	require.Error(t, err)

	var statusErr *feed.HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "API Connect Error: timed out", statusErr.Message)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_Fetch_StatusErrorPlainBody(t *testing.T) {
	client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone fishing", http.StatusServiceUnavailable)
	})

	_, err := client.Fetch(context.Background())

	var statusErr *feed.HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "gone fishing", statusErr.Message)
}

func TestClient_Fetch_NetworkError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client := feed.NewClient(feed.ClientParams{BaseURL: "http://" + addr})
	_, err = client.Fetch(context.Background())
	require.Error(t, err)

	var netErr *feed.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, client.URL(), netErr.URL)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx)

	var netErr *feed.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Fetch_ParseError(t *testing.T) {
	bodies := map[string]string{
		"not json":      `<html>oops</html>`,
		"array":         `[{"route":"61A"}]`,
		"empty":         ``,
		"wrong seconds": `{"4407":[{"route":"61A","destination":"X","arrivals":[{"bus_id":"1","capacity":"EMPTY","seconds":"soon"}]}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := client.Fetch(context.Background())

			var parseErr *feed.ParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
		})
	}
}

func TestClient_Fetch_NullDocument(t *testing.T) {
	client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	preds, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, preds)
	assert.Empty(t, preds)
}

func TestClient_Fetch_UnknownCapacityIsData(t *testing.T) {
	client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"A":[{"route":"71B","destination":"Highland Park","arrivals":[{"bus_id":"9","capacity":"UNKNOWN_CODE","seconds":45}]}]}`))
	})

	preds, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, feed.CapacityCode("UNKNOWN_CODE"), preds["A"][0].Arrivals[0].Capacity)
}
