package schema_registry

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/singleflight"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
	"github.com/Aleph-Alpha/schemacache/v1/schemacache"
	"github.com/Aleph-Alpha/schemacache/v1/tracer"
)

// Client is the default implementation of Registry.
// It talks to the registry over HTTP and keeps what it learns in a
// schemacache.Cache.
type Client struct {
	url        string
	httpClient *retryablehttp.Client

	cache schemacache.Cache

	// group collapses concurrent fetches of the same missing key
	group singleflight.Group

	// Authentication
	username string
	password string

	logger   Logger
	observer observability.Observer
	tracer   *tracer.Tracer
}

// NewClient creates a client with its own schema cache built from cfg.Cache.
//
// Example:
//
//	client, err := schema_registry.NewClient(schema_registry.Config{
//	    URL:     "http://localhost:8081",
//	    Timeout: 5 * time.Second,
//	})
func NewClient(cfg Config) (*Client, error) {
	return NewClientWithCache(cfg, schemacache.NewSchemaCache(cfg.Cache))
}

// NewClientWithCache creates a client that reads and fills cache.
func NewClientWithCache(cfg Config, cache schemacache.Cache) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("schema registry URL is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("schema cache is required")
	}
	cfg = cfg.withDefaults()

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.Logger = nil
	// hand the last response back so registry errors can be decoded
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		url:        strings.TrimRight(cfg.URL, "/"),
		httpClient: rc,
		cache:      cache,
		username:   cfg.Username,
		password:   cfg.Password,
	}, nil
}

// WithLogger attaches a logger. Retry attempts of the HTTP transport are
// logged through it as well.
func (c *Client) WithLogger(logger Logger) *Client {
	c.logger = logger
	if logger != nil {
		c.httpClient.Logger = &leveledLogger{logger: logger}
	} else {
		c.httpClient.Logger = nil
	}
	return c
}

// WithObserver attaches an observer for registry round-trips.
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// WithTracer makes the client start a span for every registry round-trip.
func (c *Client) WithTracer(t *tracer.Tracer) *Client {
	c.tracer = t
	return c
}

// Cache returns the schema cache the client reads and fills.
func (c *Client) Cache() schemacache.Cache {
	return c.cache
}

// ClearCache forgets latest ids and compiled schemas. Subject version to id
// associations survive, so pinned versions resolve without a round-trip.
func (c *Client) ClearCache() {
	c.cache.Clear()
}
