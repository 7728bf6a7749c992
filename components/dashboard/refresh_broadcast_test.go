package dashboard

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := WidgetEvent{Category: CategoryCSPM, Widget: "cloud Accounts", Reason: "add"}
	if err := hook.WidgetUpdated(context.Background(), event); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.Category != event.Category || e.Widget != event.Widget {
			t.Fatalf("expected %+v, got %+v", event, e)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	require.Equal(t, 1, hook.Subscribers())
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hook.Subscribers())
}

func TestBroadcastHookDropsWhenSubscriberIsFull(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	defer cancel()
	for i := 0; i < subscriberBuffer*2; i++ {
		require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "add"}))
	}
}

func TestBroadcastHookStreamStopsOnSendError(t *testing.T) {
	hook := NewBroadcastHook()
	done := make(chan error, 1)
	go func() {
		done <- hook.Stream(context.Background(), func(WidgetEvent) error {
			return errors.New("gone")
		})
	}()
	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "remove"}))
	select {
	case err := <-done:
		assert.EqualError(t, err, "gone")
	case <-time.After(time.Second):
		t.Fatalf("stream did not stop")
	}
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{
		Category: CategoryRegistryScan,
		Widget:   "imageRiskManagement",
		Reason:   "remove",
		Revision: 3,
	}))

	var got WidgetEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, CategoryRegistryScan, got.Category)
	assert.Equal(t, uint64(3), got.Revision)
}

func TestBroadcastHookServeSSE(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Category: CategoryCSPM, Reason: "add"}))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: widget\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"category":"CSPMExclusiveDashboard"`)
}

func TestRefreshHooksCallsEveryHook(t *testing.T) {
	var calls []string
	hooks := RefreshHooks{
		RefreshHookFunc(func(context.Context, WidgetEvent) error {
			calls = append(calls, "first")
			return errors.New("first failed")
		}),
		nil,
		RefreshHookFunc(func(context.Context, WidgetEvent) error {
			calls = append(calls, "second")
			return nil
		}),
	}
	err := hooks.WidgetUpdated(context.Background(), WidgetEvent{Reason: "add"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first failed")
	assert.Equal(t, []string{"first", "second"}, calls)
}
