package ratelimit

import (
	"math"
	"net/http"
	"strings"
	"time"
)

// Route classes. Every route in a class draws from the same bucket per client.
const (
	ClassModel   = "model"  // match and score, which may call the language model
	ClassIngest  = "ingest" // analyze, which may download a posting
	ClassRead    = "read"
	ClassDefault = "default"
)

const (
	DefaultLimit  = 600
	DefaultWindow = time.Minute
)

// Policy is a token bucket: Limit tokens per Window, holding at most Burst
type Policy struct {
	Limit  int
	Window time.Duration
	Burst  int
}

func (p Policy) capacity() float64 {
	if p.Burst > 0 {
		return float64(p.Burst)
	}
	return float64(p.Limit)
}

func (p Policy) perSecond() float64 {
	return float64(p.Limit) / p.Window.Seconds()
}

// wait is how long the bucket needs to earn n tokens
func (p Policy) wait(n float64) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n / p.perSecond() * float64(time.Second))
}

// ModelPolicy budgets the model class. Without a model those routes are
// plain computation. With one, a client may start about one call per
// modelTimeout, and the burst always covers the costliest route.
func ModelPolicy(modelTimeout time.Duration) Policy {
	if modelTimeout <= 0 {
		return Policy{Limit: 60, Window: time.Minute, Burst: 10}
	}
	perMinute := int(math.Ceil(float64(time.Minute) / float64(modelTimeout)))
	perMinute = min(max(perMinute, maxCost), 60)
	return Policy{Limit: perMinute, Window: time.Minute, Burst: max(perMinute/2, maxCost)}
}

// Rule assigns a route to a class. A Path ending in "/" matches by prefix.
// An empty Class is never limited.
type Rule struct {
	Method string
	Path   string
	Class  string
	Cost   int
}

// maxCost is the highest Cost in Routes
const maxCost = 2

// Routes lists the API's routes. Evaluate and batch scoring run several
// match or score passes, so they cost more of the model budget.
func Routes() []Rule {
	return []Rule{
		{Method: http.MethodGet, Path: "/health"},
		{Method: http.MethodPost, Path: "/match", Class: ClassModel, Cost: 1},
		{Method: http.MethodPost, Path: "/score", Class: ClassModel, Cost: 1},
		{Method: http.MethodPost, Path: "/score/batch", Class: ClassModel, Cost: maxCost},
		{Method: http.MethodPost, Path: "/evaluate", Class: ClassModel, Cost: maxCost},
		{Method: http.MethodPost, Path: "/analyze", Class: ClassIngest, Cost: 1},
		{Method: http.MethodGet, Path: "/analyses/", Class: ClassRead, Cost: 1},
	}
}

// Match finds the rule for a request. Exact paths win over prefixes.
// Unknown routes fall into ClassDefault, so stray paths cannot mint buckets.
func Match(rules []Rule, method, path string) Rule {
	prefix := -1
	for i, r := range rules {
		if r.Method != method {
			continue
		}
		if r.Path == path {
			return r
		}
		if prefix < 0 && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			prefix = i
		}
	}
	if prefix >= 0 {
		return rules[prefix]
	}
	return Rule{Method: method, Path: path, Class: ClassDefault, Cost: 1}
}

// Settings are the knobs read from the application config
type Settings struct {
	Enabled   bool
	Limit     int           // default-class requests per Window
	Window    time.Duration // default-class window
	Whitelist string        // comma-separated client IPs never limited
	Blacklist string        // comma-separated client IPs always rejected
	// ModelTimeout is the language model deadline; zero when no model is configured
	ModelTimeout time.Duration
}

func (s Settings) policies() map[string]Policy {
	limit, window := s.Limit, s.Window
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return map[string]Policy{
		ClassModel:   ModelPolicy(s.ModelTimeout),
		ClassIngest:  {Limit: 60, Window: time.Minute, Burst: 10},
		ClassRead:    {Limit: 300, Window: time.Minute, Burst: 50},
		ClassDefault: {Limit: limit, Window: window},
	}
}

func parseSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			set[item] = true
		}
	}
	return set
}
