package simon

import (
	"context"
	"fmt"
	"github.com/viant/afs"
	"github.com/viant/simon/auth"
	"github.com/viant/simon/auth/refresh"
	"github.com/viant/simon/auth/store"
	"github.com/viant/simon/auth/transport"
	"github.com/viant/simon/chat"
	"gopkg.in/yaml.v3"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// ClientOptions defines options for configuring a Simon client.
type ClientOptions struct {
	BaseURL        string        `yaml:"baseURL,omitempty" json:"baseURL,omitempty" short:"u" long:"url" env:"SIMON_URL" description:"api base url"`
	StoreURL       string        `yaml:"store,omitempty" json:"store,omitempty" short:"s" long:"store" env:"SIMON_STORE" description:"credential store: mem://, file path, redis://host/db or bolt://path"`
	CookieJar      string        `yaml:"cookieJar,omitempty" json:"cookieJar,omitempty" short:"j" long:"cookies" env:"SIMON_COOKIES" description:"file persisting the refresh cookie"`
	RefreshTimeout time.Duration `yaml:"refreshTimeout,omitempty" json:"refreshTimeout,omitempty" long:"refresh-timeout" description:"refresh exchange timeout"`
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty" json:"requestTimeout,omitempty" long:"request-timeout" description:"per attempt request timeout"`
	Endpoints      []string      `yaml:"endpoints,omitempty" json:"endpoints,omitempty" long:"endpoint" description:"authentication endpoint paths exempt from credential injection"`

	// Store, if set, takes precedence over StoreURL.
	Store store.Store `yaml:"-" json:"-"`
	// Jar, if set, takes precedence over CookieJar.
	Jar http.CookieJar `yaml:"-" json:"-"`
	// Transport is the underlying network transport (http.DefaultTransport when nil).
	Transport http.RoundTripper `yaml:"-" json:"-"`
	Logger    *slog.Logger      `yaml:"-" json:"-"`
}

// Init fills defaults.
func (c *ClientOptions) Init() {
	if c.BaseURL == "" {
		c.BaseURL = chat.DefaultBaseURL
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if c.RefreshTimeout <= 0 {
		c.RefreshTimeout = refresh.DefaultTimeout
	}
	if len(c.Endpoints) == 0 {
		c.Endpoints = auth.DefaultEndpoints
	}
	if c.Transport == nil {
		c.Transport = http.DefaultTransport
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadClientOptions reads YAML (or JSON) options from URL.
func LoadClientOptions(ctx context.Context, URL string) (*ClientOptions, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load client options %v: %w", URL, err)
	}
	ret := &ClientOptions{}
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode client options %v: %w", URL, err)
	}
	return ret, nil
}

// NewClient creates a Simon chat client with the credential store, cookie jar,
// refresh coordinator and authenticated transport configured via options.
func NewClient(ctx context.Context, options *ClientOptions) (*chat.Client, error) {
	if options == nil {
		options = &ClientOptions{}
	}
	options.Init()
	aStore, err := options.newStore(ctx)
	if err != nil {
		return nil, err
	}
	jar, err := options.newJar()
	if err != nil {
		return nil, err
	}
	refreshURL, err := auth.URL(options.BaseURL, auth.RefreshPath)
	if err != nil {
		return nil, err
	}
	logoutURL, err := auth.URL(options.BaseURL, auth.LogoutPath)
	if err != nil {
		return nil, err
	}
	base := transport.WrapWithCookieJar(options.Transport, jar)
	coordinator := refresh.New(refresh.NewHTTPExchanger(refreshURL, base), aStore,
		refresh.WithTimeout(options.RefreshTimeout),
		refresh.WithLogger(options.Logger))
	rt := transport.New(aStore, coordinator,
		transport.WithTransport(base),
		transport.WithEndpoints(options.Endpoints...),
		transport.WithLogoutURL(logoutURL),
		transport.WithTimeout(options.RequestTimeout),
		transport.WithLogger(options.Logger))
	return chat.New(rt,
		chat.WithBaseURL(options.BaseURL),
		chat.WithLogoutURL(logoutURL),
		chat.WithLogger(options.Logger)), nil
}

func (c *ClientOptions) newStore(ctx context.Context) (store.Store, error) {
	if c.Store != nil {
		return c.Store, nil
	}
	ret, err := store.New(ctx, c.StoreURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential store %v: %w", c.StoreURL, err)
	}
	return ret, nil
}

func (c *ClientOptions) newJar() (http.CookieJar, error) {
	if c.Jar != nil {
		return c.Jar, nil
	}
	if c.CookieJar != "" {
		ret, err := transport.NewFileJar(c.CookieJar)
		if err != nil {
			return nil, fmt.Errorf("failed to load cookie jar %v: %w", c.CookieJar, err)
		}
		return ret, nil
	}
	return cookiejar.New(nil)
}
