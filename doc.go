// Package simon wires the authenticated Simon chat client.
//
// NewClient builds the full stack from ClientOptions: a credential store, a
// cookie jar carrying the refresh cookie, a single-flight refresh coordinator
// and the dispatching transport with its replay policy. Options can be
// populated from CLI flags or a YAML/JSON file.
//
// Example:
//
//	cli, _ := simon.NewClient(ctx, &simon.ClientOptions{BaseURL: "http://localhost:8000/api/"})
//	_ = cli.Login(ctx, email, password)
//	answer, _ := cli.Ask(ctx, "", "hello")
package simon
