package server

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/danielpatrickdp/scenechat/internal/chat"
)

// #region pages
// Pages tracks open conversations by id. A conversation that sees no
// traffic for the TTL is evicted, and eviction closes it.
type Pages struct {
	cache    *cache.Cache
	onChange func(open int)
}

// NewPages creates a registry. onChange, when set, receives the open count
// after every add or eviction.
func NewPages(ttl time.Duration, onChange func(open int)) *Pages {
	p := &Pages{cache: cache.New(ttl, ttl/2), onChange: onChange}
	p.cache.OnEvicted(func(_ string, v interface{}) {
		v.(*chat.Conversation).Close()
		p.changed()
	})
	return p
}

// Add registers conv.
func (p *Pages) Add(conv *chat.Conversation) {
	p.cache.Set(conv.ID, conv, cache.DefaultExpiration)
	p.changed()
}

// Get looks up a conversation.
func (p *Pages) Get(id string) (*chat.Conversation, bool) {
	if x, found := p.cache.Get(id); found {
		return x.(*chat.Conversation), true
	}
	return nil, false
}

// Touch restarts the idle timer of id.
func (p *Pages) Touch(id string) {
	if conv, ok := p.Get(id); ok {
		p.cache.Set(id, conv, cache.DefaultExpiration)
	}
}

// Remove closes and forgets id.
func (p *Pages) Remove(id string) {
	p.cache.Delete(id)
}

// Count returns the number of open conversations, including expired ones
// the janitor has not collected yet.
func (p *Pages) Count() int {
	return p.cache.ItemCount()
}

// CloseAll closes every conversation.
func (p *Pages) CloseAll() {
	p.cache.DeleteExpired()
	for id := range p.cache.Items() {
		p.cache.Delete(id)
	}
}

func (p *Pages) changed() {
	if p.onChange != nil {
		p.onChange(p.cache.ItemCount())
	}
}

// #endregion pages
