package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBotAPI struct {
	mu        sync.Mutex
	failSends int
	sent      []string
	chatIDs   []string
	modes     []string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Radar","username":"radar_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failSends > 0 {
			f.failSends--
			fmt.Fprint(w, `{"ok":false,"error_code":500,"description":"Internal Server Error"}`)
			return
		}
		f.sent = append(f.sent, r.FormValue("text"))
		f.chatIDs = append(f.chatIDs, r.FormValue("chat_id"))
		f.modes = append(f.modes, r.FormValue("parse_mode"))
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestNotifier(t *testing.T, api *fakeBotAPI) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	n, err := NewTelegramNotifier("TOKEN", "42", TelegramOptions{Endpoint: srv.URL + "/bot%s/%s"})
	require.NoError(t, err)
	return n
}

func TestTelegramSend(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api)

	require.NoError(t, n.Send("<b>hello</b>"))
	assert.Equal(t, []string{"<b>hello</b>"}, api.sent)
	assert.Equal(t, []string{"42"}, api.chatIDs)
	assert.Equal(t, []string{"HTML"}, api.modes)
}

func TestTelegramSendWithRetry(t *testing.T) {
	api := &fakeBotAPI{failSends: 1}
	n := newTestNotifier(t, api)

	require.NoError(t, n.SendWithRetry(context.Background(), "report", 3))
	assert.Equal(t, []string{"report"}, api.sent)
}

func TestTelegramSendWithRetryCanceled(t *testing.T) {
	api := &fakeBotAPI{failSends: 100}
	n := newTestNotifier(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := n.SendWithRetry(ctx, "report", 5)
	assert.Error(t, err)
	assert.Empty(t, api.sent)
}

func TestNewTelegramNotifierRejectsBadChatID(t *testing.T) {
	_, err := NewTelegramNotifier("TOKEN", "not-a-number", TelegramOptions{})
	assert.Error(t, err)
}
