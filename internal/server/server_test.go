package server

import (
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/danielpatrickdp/scenechat/internal/chat"
	"github.com/danielpatrickdp/scenechat/internal/corpus"
	"github.com/danielpatrickdp/scenechat/internal/matcher"
	"github.com/danielpatrickdp/scenechat/internal/metrics"
	"github.com/danielpatrickdp/scenechat/internal/session"
	"github.com/danielpatrickdp/scenechat/internal/surface"
)

// #region helpers
type provider struct{ c *corpus.Corpus }

func (p provider) Corpus() *corpus.Corpus { return p.c }

func demoCorpus() *corpus.Corpus {
	return corpus.New([]*corpus.Scene{
		{ID: 1, Keywords: []string{"hello"}},
		{ID: 2, OnScreenText: "Hi!"},
	})
}

func newTestServer(t *testing.T, c *corpus.Corpus, ttl time.Duration) (*Server, *metrics.Metrics) {
	t.Helper()
	cfg := session.DefaultConfig()
	cfg.ThinkingPeriod = 5 * time.Millisecond
	cfg.MinLoading = 10 * time.Millisecond
	cfg.TypeInterval = time.Millisecond

	p := provider{c}
	m := metrics.New()
	log := zaptest.NewLogger(t)
	s := New(chat.NewFactory(cfg, p, log, m), p, m, log, Options{PageTTL: ttl})
	t.Cleanup(func() { s.Pages().CloseAll() })
	return s, m
}

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(body) > 0 && body[0] == '{' {
		require.NoError(t, json.Unmarshal(body, &out))
	}
	return resp.StatusCode, out
}

// #endregion helpers

// #region http
func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, demoCorpus(), time.Minute)
	code, body := getJSON(t, s.App(), "/healthz")
	assert.Equal(t, 200, code)
	assert.Equal(t, "ok", body["status"])
}

func TestCorpusRoute(t *testing.T) {
	s, _ := newTestServer(t, demoCorpus(), time.Minute)
	code, body := getJSON(t, s.App(), "/api/corpus")
	assert.Equal(t, 200, code)
	assert.Equal(t, true, body["loaded"])
	assert.Equal(t, 2.0, body["scenes"])

	s, _ = newTestServer(t, nil, time.Minute)
	code, _ = getJSON(t, s.App(), "/api/corpus")
	assert.Equal(t, 503, code)
}

func TestMatchRoute(t *testing.T) {
	s, _ := newTestServer(t, demoCorpus(), time.Minute)

	code, body := getJSON(t, s.App(), "/api/scenes/match?q=Hello!")
	assert.Equal(t, 200, code)
	assert.Equal(t, "resolved", body["outcome"])
	assert.Equal(t, "Hi!", body["reply"])
	assert.Equal(t, 1.0, body["matchedId"])

	code, body = getJSON(t, s.App(), "/api/scenes/match?q=nothing")
	assert.Equal(t, 200, code)
	assert.Equal(t, "unmatched", body["outcome"])

	code, _ = getJSON(t, s.App(), "/api/scenes/match")
	assert.Equal(t, 400, code)

	s, _ = newTestServer(t, nil, time.Minute)
	code, _ = getJSON(t, s.App(), "/api/scenes/match?q=hello")
	assert.Equal(t, 503, code)
}

func TestMetricsRoute(t *testing.T) {
	s, _ := newTestServer(t, demoCorpus(), time.Minute)
	resp, err := s.App().Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), "scenechat_active_pages")
}

func TestWSRequiresUpgrade(t *testing.T) {
	s, _ := newTestServer(t, demoCorpus(), time.Minute)
	code, _ := getJSON(t, s.App(), "/ws")
	assert.Equal(t, fiber.StatusUpgradeRequired, code)
}

// #endregion http

// #region pages
func TestPages_EvictionClosesConversation(t *testing.T) {
	f := chat.NewFactory(session.DefaultConfig(), matcher.Fixed(corpus.Empty()), nil)
	var last atomic.Int64
	pages := NewPages(40*time.Millisecond, func(n int) { last.Store(int64(n)) })

	conv := f.Open()
	pages.Add(conv)
	assert.Equal(t, 1, pages.Count())
	assert.Equal(t, int64(1), last.Load())

	select {
	case <-conv.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("idle page was not evicted")
	}
	_, ok := pages.Get(conv.ID)
	assert.False(t, ok)
	require.Eventually(t, func() bool { return last.Load() == 0 }, time.Second, 5*time.Millisecond)
}

func TestPages_RemoveCloses(t *testing.T) {
	f := chat.NewFactory(session.DefaultConfig(), matcher.Fixed(corpus.Empty()), nil)
	pages := NewPages(time.Minute, nil)
	conv := f.Open()
	pages.Add(conv)
	pages.Remove(conv.ID)
	<-conv.Done()
	assert.Zero(t, pages.Count())
}

// #endregion pages

// #region websocket
func TestWebsocket_SubmitRoundTrip(t *testing.T) {
	s, m := newTestServer(t, demoCorpus(), time.Minute)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.App().Listener(ln) }()
	t.Cleanup(func() { _ = s.App().Shutdown() })

	conn, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(surface.Command{Op: surface.OpSubmit, Prompt: "hello"}))

	board := surface.NewBoard()
	sawBusy := false
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var ev surface.Event
		require.NoError(t, conn.ReadJSON(&ev))
		board.Apply(ev)
		if ev.Type == surface.EventBusy {
			if ev.On {
				sawBusy = true
			} else if sawBusy {
				break
			}
		}
	}

	regions := board.Regions()
	require.Len(t, regions, 2)
	assert.Equal(t, "hello", regions[0].Text)
	assert.Equal(t, "Hi!", regions[1].Text)
	assert.Equal(t, 1, s.Pages().Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActivePages))
}

// #endregion websocket
