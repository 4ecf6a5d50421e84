package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/danielpatrickdp/scenechat/internal/corpus"
	"github.com/danielpatrickdp/scenechat/internal/matcher"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// #region fakes
type call struct {
	op    string
	id    ID
	role  Role
	mode  Mode
	text  string
	piece Piece
	flag  bool
	at    time.Time
}

type fakeSurface struct {
	mu    sync.Mutex
	calls []call
}

func (f *fakeSurface) add(c call) {
	c.at = time.Now()
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeSurface) OpenRegion(id ID, role Role, text string) {
	f.add(call{op: "open", id: id, role: role, text: text})
}
func (f *fakeSurface) SetRegion(id ID, mode Mode, text string) {
	f.add(call{op: "set", id: id, mode: mode, text: text})
}
func (f *fakeSurface) AppendRegion(id ID, p Piece) { f.add(call{op: "append", id: id, piece: p}) }
func (f *fakeSurface) SetBusy(b bool)              { f.add(call{op: "busy", flag: b}) }
func (f *fakeSurface) SetRetryAvailable(b bool)    { f.add(call{op: "retry", flag: b}) }

func (f *fakeSurface) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeSurface) ops(op string) []call {
	var out []call
	for _, c := range f.snapshot() {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

// typed rebuilds what the region shows after the plain reset.
func (f *fakeSurface) typed(id ID) string {
	var b strings.Builder
	for _, c := range f.snapshot() {
		if c.id != id {
			continue
		}
		switch {
		case c.op == "set":
			b.Reset()
			b.WriteString(c.text)
		case c.op == "append" && c.piece.LineBreak:
			b.WriteString("\n")
		case c.op == "append":
			b.WriteString(c.piece.Text)
		}
	}
	return b.String()
}

type countingRecorder struct {
	mu       sync.Mutex
	started  []Report
	finished []Report
	dropped  []string
}

func (r *countingRecorder) Started(rep Report) {
	r.mu.Lock()
	r.started = append(r.started, rep)
	r.mu.Unlock()
}

func (r *countingRecorder) Finished(rep Report) {
	r.mu.Lock()
	r.finished = append(r.finished, rep)
	r.mu.Unlock()
}

func (r *countingRecorder) Dropped(_, prompt string) {
	r.mu.Lock()
	r.dropped = append(r.dropped, prompt)
	r.mu.Unlock()
}

func testConfig() Config {
	return Config{
		ThinkingLabel:  "Thinking",
		ThinkingPeriod: 5 * time.Millisecond,
		MinLoading:     40 * time.Millisecond,
		TypeInterval:   time.Millisecond,
		UnmatchedText:  "no match",
		UnpairedText:   "no pair",
	}
}

func demoEngine() *matcher.Engine {
	c := corpus.New([]*corpus.Scene{
		{ID: 1, Keywords: []string{"hello"}},
		{ID: 2, OnScreenText: "Hi there!\nWelcome."},
		{ID: 3, Keywords: []string{"bye"}},
	})
	return matcher.NewEngine(matcher.Fixed(c), nil)
}

func wait(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("session %s did not finish, state=%s", s.ID, s.State())
	}
}

// #endregion fakes

// #region happy-path
func TestSubmit_ResolvedReplyIsTyped(t *testing.T) {
	sf := &fakeSurface{}
	c := NewController(testConfig(), sf, demoEngine())
	defer c.Close()

	s := c.Submit("  Hello!  ")
	require.NotNil(t, s)
	assert.Equal(t, "Hello!", s.Prompt)
	assert.True(t, c.Busy())
	wait(t, s)

	assert.Equal(t, StateDone, s.State())
	assert.Equal(t, []State{StateSubmitting, StateLoading, StateTyping, StateDone}, s.Transitions())
	assert.Equal(t, "Hi there!\nWelcome.", s.Output())
	assert.Equal(t, "Hi there!\nWelcome.", sf.typed(s.ID))
	assert.False(t, c.Busy())
	assert.False(t, c.RetryAvailable())

	opens := sf.ops("open")
	require.Len(t, opens, 2)
	assert.Equal(t, RolePrompt, opens[0].role)
	assert.Equal(t, "Hello!", opens[0].text)
	assert.Equal(t, RoleAnswer, opens[1].role)
	assert.Equal(t, s.ID, opens[1].id)

	busy := sf.ops("busy")
	require.Len(t, busy, 2)
	assert.True(t, busy[0].flag)
	assert.False(t, busy[1].flag)
}

func TestSubmit_NewlineBecomesLineBreak(t *testing.T) {
	sf := &fakeSurface{}
	c := NewController(testConfig(), sf, demoEngine())
	defer c.Close()

	s := c.Submit("hello")
	wait(t, s)

	var breaks int
	for _, a := range sf.ops("append") {
		if a.piece.LineBreak {
			breaks++
			assert.Empty(t, a.piece.Text)
		}
		assert.NotEqual(t, "\n", a.piece.Text)
	}
	assert.Equal(t, 1, breaks)
}

func TestSubmit_FixedSentencesForUnmatchedAndUnpaired(t *testing.T) {
	sf := &fakeSurface{}
	c := NewController(testConfig(), sf, demoEngine())
	defer c.Close()

	s := c.Submit("what is this")
	wait(t, s)
	assert.Equal(t, StateDone, s.State())
	assert.Equal(t, "no match", s.Output())

	s = c.Submit("bye")
	wait(t, s)
	assert.Equal(t, StateDone, s.State())
	assert.Equal(t, "no pair", s.Output())
}

func TestSubmit_EmptyCorpusNeverFaults(t *testing.T) {
	sf := &fakeSurface{}
	c := NewController(testConfig(), sf, matcher.NewEngine(matcher.Fixed(corpus.Empty()), nil))
	defer c.Close()

	s := c.Submit("anything at all")
	wait(t, s)
	assert.Equal(t, StateDone, s.State())
	assert.NoError(t, s.Err())
	assert.Equal(t, "no match", s.Output())
}

// #endregion happy-path

// #region gating
func TestSubmit_BlankPromptIsIgnored(t *testing.T) {
	sf := &fakeSurface{}
	c := NewController(testConfig(), sf, demoEngine())
	defer c.Close()

	assert.Nil(t, c.Submit(""))
	assert.Nil(t, c.Submit("   \t"))
	assert.False(t, c.Busy())
	assert.Empty(t, sf.snapshot())
}

func TestSubmit_WhileBusyIsNoOp(t *testing.T) {
	sf := &fakeSurface{}
	rec := &countingRecorder{}
	c := NewController(testConfig(), sf, demoEngine(), WithRecorder(rec), WithPage("p1"))
	defer c.Close()

	first := c.Submit("hello")
	require.NotNil(t, first)
	assert.Nil(t, c.Submit("bye"))
	assert.Len(t, sf.ops("open"), 2)

	wait(t, first)
	assert.Equal(t, StateDone, first.State())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"bye"}, rec.dropped)
	require.Len(t, rec.finished, 1)
	assert.Equal(t, "p1", rec.finished[0].Page)
	assert.Equal(t, "resolved", rec.finished[0].Result())
}

func TestSubmit_HonorsMinimumLoading(t *testing.T) {
	cfg := testConfig()
	cfg.MinLoading = 120 * time.Millisecond
	sf := &fakeSurface{}
	fast := ResolverFunc(func(context.Context, string) (matcher.Outcome, error) {
		return matcher.Outcome{Kind: matcher.KindResolved, Reply: "ok"}, nil
	})
	c := NewController(cfg, sf, fast)
	defer c.Close()

	s := c.Submit("quick")
	wait(t, s)

	var plainAt time.Time
	for _, call := range sf.ops("set") {
		if call.mode == ModePlain {
			plainAt = call.at
			break
		}
	}
	require.False(t, plainAt.IsZero())
	assert.GreaterOrEqual(t, plainAt.Sub(s.StartedAt), cfg.MinLoading)
}

func TestSubmit_ThinkingCyclesDots(t *testing.T) {
	cfg := testConfig()
	cfg.MinLoading = 150 * time.Millisecond
	sf := &fakeSurface{}
	c := NewController(cfg, sf, demoEngine())
	defer c.Close()

	s := c.Submit("hello")
	wait(t, s)

	seen := map[string]bool{}
	for _, call := range sf.ops("set") {
		if call.mode == ModeLoading {
			seen[call.text] = true
		}
	}
	for _, want := range []string{"Thinking", "Thinking.", "Thinking..", "Thinking..."} {
		assert.True(t, seen[want], "missing %q", want)
	}
	assert.False(t, seen["Thinking...."])
}

func TestBeginThinking_CancelsPreviousForSameRegion(t *testing.T) {
	c := NewController(testConfig(), &fakeSurface{}, demoEngine())
	defer c.Close()

	id := NewID()
	c.beginThinking(id)
	c.mu.Lock()
	first := c.loaders[id]
	c.mu.Unlock()

	c.beginThinking(id)
	select {
	case <-first.done:
	default:
		t.Fatal("previous animation still running")
	}
	c.endThinking(id)
	c.mu.Lock()
	assert.Empty(t, c.loaders)
	c.mu.Unlock()
}

// #endregion gating

// #region errors
func TestSubmit_FaultGoesToRetryReady(t *testing.T) {
	sf := &fakeSurface{}
	rec := &countingRecorder{}
	var calls int
	var mu sync.Mutex
	flaky := ResolverFunc(func(ctx context.Context, prompt string) (matcher.Outcome, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return matcher.Outcome{}, errors.New("boom")
		}
		return demoEngine().Resolve(ctx, prompt)
	})
	c := NewController(testConfig(), sf, flaky, WithRecorder(rec))
	defer c.Close()

	s := c.Submit("hello")
	wait(t, s)
	assert.Equal(t, StateRetryReady, s.State())
	assert.Equal(t, []State{StateSubmitting, StateLoading, StateError, StateRetryReady}, s.Transitions())
	assert.EqualError(t, s.Err(), "boom")
	assert.Equal(t, "Error: boom", s.Output())
	assert.Equal(t, "Error: boom", sf.typed(s.ID))
	assert.True(t, c.RetryAvailable())
	assert.False(t, c.Busy())

	r := c.Retry()
	require.NotNil(t, r)
	assert.Equal(t, s.ID, r.ID)
	assert.Equal(t, s.Prompt, r.Prompt)
	assert.Equal(t, 2, r.Attempt)
	assert.False(t, c.RetryAvailable(), "retry consumes the candidate")
	assert.Nil(t, c.Retry())
	wait(t, r)

	assert.Equal(t, StateDone, r.State())
	assert.Equal(t, "Hi there!\nWelcome.", sf.typed(r.ID))
	assert.Len(t, sf.ops("open"), 2, "retry renders in place")

	retries := sf.ops("retry")
	require.NotEmpty(t, retries)
	assert.True(t, retries[0].flag)
	assert.False(t, retries[len(retries)-1].flag)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.finished, 2)
	assert.Equal(t, "error", rec.finished[0].Result())
	assert.True(t, rec.finished[1].Retry())
}

func TestController_StateFollowsSessions(t *testing.T) {
	sf := &fakeSurface{}
	var calls int
	var mu sync.Mutex
	flaky := ResolverFunc(func(ctx context.Context, prompt string) (matcher.Outcome, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return matcher.Outcome{}, errors.New("boom")
		}
		return demoEngine().Resolve(ctx, prompt)
	})
	c := NewController(testConfig(), sf, flaky)
	defer c.Close()
	assert.Equal(t, StateIdle, c.State())

	s := c.Submit("hello")
	require.Eventually(t, func() bool { return c.State() == StateLoading }, time.Second, time.Millisecond)
	wait(t, s)
	assert.Equal(t, StateRetryReady, c.State())

	r := c.Retry()
	require.NotNil(t, r)
	wait(t, r)
	assert.Equal(t, StateIdle, c.State())
}

func TestSubmit_PanicIsCaughtAsFault(t *testing.T) {
	sf := &fakeSurface{}
	boom := ResolverFunc(func(context.Context, string) (matcher.Outcome, error) {
		panic("index out of range")
	})
	c := NewController(testConfig(), sf, boom)
	defer c.Close()

	s := c.Submit("hello")
	wait(t, s)
	assert.Equal(t, StateRetryReady, s.State())
	assert.Contains(t, s.Output(), "index out of range")
}

func TestSubmit_FaultStillWaitsForFloor(t *testing.T) {
	cfg := testConfig()
	cfg.MinLoading = 100 * time.Millisecond
	sf := &fakeSurface{}
	failing := ResolverFunc(func(context.Context, string) (matcher.Outcome, error) {
		return matcher.Outcome{}, matcher.ErrCorpusUnavailable
	})
	c := NewController(cfg, sf, failing)
	defer c.Close()

	s := c.Submit("hello")
	wait(t, s)
	errs := sf.ops("set")
	last := errs[len(errs)-1]
	assert.Equal(t, ModeError, last.mode)
	assert.GreaterOrEqual(t, last.at.Sub(s.StartedAt), cfg.MinLoading)
	assert.ErrorIs(t, s.Err(), matcher.ErrCorpusUnavailable)
}

func TestRetry_WithoutCandidate(t *testing.T) {
	c := NewController(testConfig(), &fakeSurface{}, demoEngine())
	defer c.Close()
	assert.Nil(t, c.Retry())
}

// #endregion errors

// #region close
func TestClose_AbandonsInFlightSession(t *testing.T) {
	cfg := testConfig()
	cfg.MinLoading = time.Hour
	sf := &fakeSurface{}
	c := NewController(cfg, sf, demoEngine())

	s := c.Submit("hello")
	require.NotNil(t, s)
	time.Sleep(20 * time.Millisecond)
	c.Close()

	before := len(sf.snapshot())
	wait(t, s)
	assert.ErrorIs(t, s.Err(), context.Canceled)
	assert.Equal(t, StateLoading, s.State())

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, sf.snapshot(), before, "no surface calls after Close")
	assert.Nil(t, c.Submit("again"))
}

func TestClose_Idempotent(t *testing.T) {
	c := NewController(testConfig(), &fakeSurface{}, demoEngine())
	c.Close()
	c.Close()
}

// #endregion close
