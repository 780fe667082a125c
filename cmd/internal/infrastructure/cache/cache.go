package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"leadfinder/cmd/internal/logging"
)

const DefaultTTL = 24 * time.Hour

// Key prefixes of the values the application caches.
const (
	PrefixCompanyDetails  = "company_details"
	PrefixAIAnalysis      = "ai_analysis"
	PrefixOutreachEmail   = "outreach_email"
	PrefixAILeads         = "ai_leads"
	PrefixCompanyResearch = "company_research"
	PrefixLeadSources     = "lead_sources"
	PrefixMarketAnalysis  = "market_analysis"
)

// Store persists serialized cache values.
type Store interface {
	Put(ctx context.Context, key, value string, createdAt time.Time) error
	// Fetch returns the value under key if it was written after notBefore.
	Fetch(ctx context.Context, key string, notBefore time.Time) (string, bool, error)
	Delete(ctx context.Context, key string) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Pruner is implemented by stores that need expired entries swept.
type Pruner interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type Options struct {
	Enabled bool
	TTL     time.Duration
	Now     func() time.Time
}

// Cache is a time-bounded key/value cache in front of expensive calls.
// When disabled every operation is a no-op reporting failure or a miss.
type Cache struct {
	store   Store
	ttl     time.Duration
	enabled bool
	now     func() time.Time
	log     logging.Logger
}

func New(store Store, opts Options, logger logging.Logger) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		store:   store,
		ttl:     opts.TTL,
		enabled: opts.Enabled && store != nil,
		now:     opts.Now,
		log:     logger,
	}
}

// Key joins a prefix and its identifying parts with underscores,
// e.g. Key(PrefixAIAnalysis, 4, "Acme", "Dayton") is "ai_analysis_4_Acme_Dayton".
func Key(prefix string, parts ...any) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		b.WriteByte('_')
		fmt.Fprint(&b, p)
	}
	return b.String()
}

func (c *Cache) Enabled() bool {
	return c.enabled
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Set stores value under key. Strings are kept as-is, anything else is
// JSON encoded. It reports whether the value was stored.
func (c *Cache) Set(ctx context.Context, key string, value any) bool {
	if !c.enabled {
		return false
	}

	encoded, err := encode(value)
	if err != nil {
		c.log.Errorf("cache: failed to encode value for %s: %v", key, err)
		return false
	}

	if err = c.store.Put(ctx, key, encoded, c.now()); err != nil {
		c.log.Errorf("cache: failed to set %s: %v", key, err)
		return false
	}
	return true
}

// Get returns the decoded value under key. Values that are not valid JSON
// come back as the raw stored string.
func (c *Cache) Get(ctx context.Context, key string) (any, bool) {
	raw, ok := c.fetch(ctx, key)
	if !ok {
		return nil, false
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw, true
	}
	return v, true
}

// GetInto decodes the value under key into dest. A *string dest also
// accepts values that were stored as plain text.
func (c *Cache) GetInto(ctx context.Context, key string, dest any) bool {
	raw, ok := c.fetch(ctx, key)
	if !ok {
		return false
	}

	err := json.Unmarshal([]byte(raw), dest)
	if err == nil {
		return true
	}

	if s, isString := dest.(*string); isString {
		*s = raw
		return true
	}

	c.log.Warnf("cache: stored value for %s does not fit %T: %v", key, dest, err)
	return false
}

// Clear removes key, or every entry when key is empty.
func (c *Cache) Clear(ctx context.Context, key string) bool {
	if !c.enabled {
		return false
	}

	if key == "" {
		n, err := c.store.DeleteAll(ctx)
		if err != nil {
			c.log.Errorf("cache: failed to clear: %v", err)
			return false
		}
		c.log.Infof("cache: cleared %d entries", n)
		return true
	}

	if _, err := c.store.Delete(ctx, key); err != nil {
		c.log.Errorf("cache: failed to clear %s: %v", key, err)
		return false
	}
	return true
}

// Prune drops expired entries from stores that do not expire them natively.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	if !c.enabled {
		return 0, nil
	}

	pruner, ok := c.store.(Pruner)
	if !ok {
		return 0, nil
	}
	return pruner.DeleteExpired(ctx, c.now().Add(-c.ttl))
}

func (c *Cache) fetch(ctx context.Context, key string) (string, bool) {
	if !c.enabled {
		return "", false
	}

	raw, ok, err := c.store.Fetch(ctx, key, c.now().Add(-c.ttl))
	if err != nil {
		c.log.Errorf("cache: failed to get %s: %v", key, err)
		return "", false
	}
	return raw, ok
}

// encode keeps plain strings readable in the store. Strings that would
// otherwise be mistaken for JSON on the way back are quoted.
func encode(value any) (string, error) {
	if s, ok := value.(string); ok && !json.Valid([]byte(s)) {
		return s, nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
