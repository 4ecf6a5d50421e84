package session

import (
	"strings"
	"sync"
	"time"
)

// #region animation
// animation is a running thinking indicator for one region. stop blocks
// until the ticker goroutine has exited, so nothing writes to the region
// after stop returns.
type animation struct {
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func (a *animation) stop() {
	a.once.Do(func() { close(a.quit) })
	<-a.done
}

// animate shows the label, then cycles zero to three trailing dots, one
// step per period.
func (c *Controller) animate(id ID) *animation {
	a := &animation{quit: make(chan struct{}), done: make(chan struct{})}
	label, period := c.cfg.ThinkingLabel, c.cfg.ThinkingPeriod

	go func() {
		defer close(a.done)
		dots := 0
		render := func() {
			text := label + strings.Repeat(".", dots)
			c.paint(func(s Surface) { s.SetRegion(id, ModeLoading, text) })
		}
		render()

		tick := time.NewTicker(period)
		defer tick.Stop()
		for {
			select {
			case <-a.quit:
				return
			case <-tick.C:
				dots = (dots + 1) % 4
				render()
			}
		}
	}()
	return a
}

// beginThinking cancels any animation already bound to id and starts a
// new one.
func (c *Controller) beginThinking(id ID) {
	c.endThinking(id)
	a := c.animate(id)
	c.mu.Lock()
	c.loaders[id] = a
	c.mu.Unlock()
}

// endThinking stops the animation bound to id, if any.
func (c *Controller) endThinking(id ID) {
	c.mu.Lock()
	a := c.loaders[id]
	delete(c.loaders, id)
	c.mu.Unlock()
	if a != nil {
		a.stop()
	}
}

// #endregion animation
