package cli

import (
	"context"
	"github.com/viant/simon"
	"github.com/viant/simon/chat"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultRequestTimeout = 60 * time.Second
	sessionDir            = ".simon"
)

// Options are the global flags and commands.
type Options struct {
	Config              string `short:"c" long:"config" env:"SIMON_CONFIG" description:"client options file (yaml or json)"`
	Verbose             bool   `short:"v" long:"verbose" description:"debug logging"`
	simon.ClientOptions `group:"client"`

	Login   LoginCommand   `command:"login" description:"log in and persist the session"`
	Me      MeCommand      `command:"me" description:"show the current user"`
	Ask     AskCommand     `command:"ask" description:"ask a question"`
	History HistoryCommand `command:"history" description:"show a thread history"`
	Threads ThreadsCommand `command:"threads" description:"list threads"`
	Logout  LogoutCommand  `command:"logout" description:"end the session"`

	out    io.Writer
	errOut io.Writer
}

// NewOptions creates options writing command output to out and logs to errOut.
func NewOptions(out, errOut io.Writer) *Options {
	ret := &Options{out: out, errOut: errOut}
	ret.Login.app = ret
	ret.Me.app = ret
	ret.Ask.app = ret
	ret.History.app = ret
	ret.Threads.app = ret
	ret.Logout.app = ret
	return ret
}

func (o *Options) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(o.errOut, &slog.HandlerOptions{Level: level}))
}

// clientOptions merges the config file with flags; flags win.
func (o *Options) clientOptions(ctx context.Context) (*simon.ClientOptions, error) {
	ret := &simon.ClientOptions{}
	if o.Config != "" {
		loaded, err := simon.LoadClientOptions(ctx, o.Config)
		if err != nil {
			return nil, err
		}
		ret = loaded
	}
	flagged := o.ClientOptions
	if flagged.BaseURL != "" {
		ret.BaseURL = flagged.BaseURL
	}
	if flagged.StoreURL != "" {
		ret.StoreURL = flagged.StoreURL
	}
	if flagged.CookieJar != "" {
		ret.CookieJar = flagged.CookieJar
	}
	if flagged.RefreshTimeout > 0 {
		ret.RefreshTimeout = flagged.RefreshTimeout
	}
	if flagged.RequestTimeout > 0 {
		ret.RequestTimeout = flagged.RequestTimeout
	}
	if len(flagged.Endpoints) > 0 {
		ret.Endpoints = flagged.Endpoints
	}
	if ret.RequestTimeout == 0 {
		ret.RequestTimeout = defaultRequestTimeout
	}
	if ret.StoreURL == "" || ret.CookieJar == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		if ret.StoreURL == "" {
			ret.StoreURL = filepath.Join(home, sessionDir, "token.json")
		}
		if ret.CookieJar == "" {
			ret.CookieJar = filepath.Join(home, sessionDir, "cookies.json")
		}
	}
	ret.Logger = o.logger()
	return ret, nil
}

func (o *Options) client(ctx context.Context) (*chat.Client, error) {
	options, err := o.clientOptions(ctx)
	if err != nil {
		return nil, err
	}
	return simon.NewClient(ctx, options)
}
