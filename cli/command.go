package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// LoginCommand logs in with email and password.
type LoginCommand struct {
	Email    string `short:"e" long:"email" env:"SIMON_EMAIL" description:"account email" required:"true"`
	Password string `short:"p" long:"password" env:"SIMON_PASSWORD" description:"account password" required:"true"`
	app      *Options
}

func (c *LoginCommand) Execute(args []string) error {
	ctx := context.Background()
	client, err := c.app.client(ctx)
	if err != nil {
		return err
	}
	if err = client.Login(ctx, c.Email, c.Password); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.app.out, "logged in as %v\n", c.Email)
	return err
}

// MeCommand prints the current user.
type MeCommand struct {
	app *Options
}

func (c *MeCommand) Execute(args []string) error {
	ctx := context.Background()
	client, err := c.app.client(ctx)
	if err != nil {
		return err
	}
	user, err := client.Me(ctx)
	if err != nil {
		return err
	}
	return c.app.printJSON(user)
}

// AskCommand sends a question; remaining arguments form the message.
type AskCommand struct {
	ThreadID string `short:"t" long:"thread" description:"thread id, a new thread is started when empty"`
	app      *Options
}

func (c *AskCommand) Execute(args []string) error {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return errors.New("message is required")
	}
	ctx := context.Background()
	client, err := c.app.client(ctx)
	if err != nil {
		return err
	}
	answer, err := client.Ask(ctx, c.ThreadID, message)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.app.out, "[%v] %v\n", answer.ThreadID, answer.Response)
	return err
}

// HistoryCommand prints a thread history.
type HistoryCommand struct {
	Args struct {
		ThreadID string `positional-arg-name:"thread" description:"thread id"`
	} `positional-args:"yes" required:"yes"`
	app *Options
}

func (c *HistoryCommand) Execute(args []string) error {
	ctx := context.Background()
	client, err := c.app.client(ctx)
	if err != nil {
		return err
	}
	history, err := client.History(ctx, c.Args.ThreadID)
	if err != nil {
		return err
	}
	for _, message := range history {
		if _, err = fmt.Fprintf(c.app.out, "%v: %v\n", message.Sender, message.Text); err != nil {
			return err
		}
	}
	return nil
}

// ThreadsCommand lists threads.
type ThreadsCommand struct {
	app *Options
}

func (c *ThreadsCommand) Execute(args []string) error {
	ctx := context.Background()
	client, err := c.app.client(ctx)
	if err != nil {
		return err
	}
	threads, err := client.Threads(ctx)
	if err != nil {
		return err
	}
	for _, thread := range threads {
		if _, err = fmt.Fprintf(c.app.out, "%v\t%v\n", thread.ID, thread.Title); err != nil {
			return err
		}
	}
	return nil
}

// LogoutCommand ends the session.
type LogoutCommand struct {
	app *Options
}

func (c *LogoutCommand) Execute(args []string) error {
	ctx := context.Background()
	client, err := c.app.client(ctx)
	if err != nil {
		return err
	}
	if err = client.Logout(ctx); err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.app.out, "logged out")
	return err
}

func (o *Options) printJSON(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(o.out, string(data))
	return err
}
