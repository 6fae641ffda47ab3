package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpn-client/pkg/logbuf"
	"vpn-client/pkg/model"
)

type staticTokens struct{ token string }

func (s staticTokens) Token() (string, error) { return s.token, nil }

func TestNewClientRejectsBadURLs(t *testing.T) {
	assert.Nil(t, NewClient("", nil, logbuf.New()))
	assert.Nil(t, NewClient("://nope", nil, logbuf.New()))
	assert.NotNil(t, NewClient("wss://api.example.com/ws", nil, logbuf.New()))
}

func TestNewClientRewritesHTTPSchemes(t *testing.T) {
	c := NewClient("https://api.example.com/ws", nil, logbuf.New())
	require.NotNil(t, c)
	assert.True(t, strings.HasPrefix(c.endpoint, "wss://"))
}

func TestNilClientIsNoOp(t *testing.T) {
	var c *Client
	c.On("anything", func(Envelope) {})
	c.OnSubscriptionUpdated(func(model.SubscriptionUpdated) {})
	c.Start()
	c.Close()
}

func TestDispatchRunsHandlersInRegistrationOrder(t *testing.T) {
	c := NewClient("wss://api.example.com/ws", nil, logbuf.New())
	var order []string
	c.On("ping", func(Envelope) { order = append(order, "first") })
	c.On("ping", func(Envelope) { order = append(order, "second") })

	c.dispatch(Envelope{Type: "ping"})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatchDropsMalformedTypedPayloads(t *testing.T) {
	log := logbuf.New()
	c := NewClient("wss://api.example.com/ws", nil, log)
	called := 0
	c.OnSubscriptionUpdated(func(model.SubscriptionUpdated) { called++ })

	c.dispatch(Envelope{Type: model.EventSubscriptionUpdated, Payload: json.RawMessage(`{"status":"active"}`)})
	c.dispatch(Envelope{Type: model.EventSubscriptionUpdated})
	c.dispatch(Envelope{Type: model.EventSubscriptionUpdated, Payload: json.RawMessage(`{"subscriptionId":"sub-1","status":"active"}`)})

	assert.Equal(t, 1, called)
	// Each malformed payload left a warning behind.
	warnings := 0
	for _, e := range log.Entries() {
		if e.Level == model.LevelWarning {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)
}

func TestClientReceivesPushedEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	hold := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_ = conn.WriteJSON(Envelope{
			Type:    model.EventSubscriptionUpdated,
			Payload: json.RawMessage(`{"subscriptionId":"sub-1","status":"canceled"}`),
		})
		_ = conn.WriteJSON(Envelope{
			Type:    model.EventNotification,
			Payload: json.RawMessage(`{"id":"n-1","title":"Maintenance"}`),
		})
		<-hold
	}))
	defer srv.Close()
	defer close(hold)

	c := NewClient(srv.URL, staticTokens{token: "tok-123"}, logbuf.New())
	require.NotNil(t, c)

	subs := make(chan model.SubscriptionUpdated, 1)
	notes := make(chan model.NotificationEvent, 1)
	c.OnSubscriptionUpdated(func(e model.SubscriptionUpdated) { subs <- e })
	c.OnNotification(func(e model.NotificationEvent) { notes <- e })
	c.Start()
	defer c.Close()

	select {
	case ev := <-subs:
		assert.Equal(t, "sub-1", ev.SubscriptionID)
		assert.Equal(t, model.SubscriptionCanceled, ev.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscription event")
	}
	select {
	case ev := <-notes:
		assert.Equal(t, "n-1", ev.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification event")
	}
}
