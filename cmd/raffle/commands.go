package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/raffle/internal/domain/model"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, e *env, args []string) (any, error)
}

var commands = []command{
	{"register", "register a participant (-email -name -phone)", runRegister},
	{"verify", "verify an email address (-token)", runVerify},
	{"set-password", "activate a verified account (-token -password [-confirm])", runSetPassword},
	{"login", "log in as administrator and store the access token (-email -password)", runLogin},
	{"logout", "forget the stored access token", runLogout},
	{"participants", "list participants (-search -verified -page)", runParticipants},
	{"stats", "show participation totals", runStats},
	{"draw", "draw a winner", runDraw},
	{"winners", "list drawn winners", runWinners},
	{"config", "print the effective configuration", runConfig},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: raffle <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-14s %s\n", c.name, c.summary)
	}
}

func newFlags(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// parse wraps flag errors so run maps them to the usage exit code.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

func missing(e *env, fs *flag.FlagSet, names ...string) error {
	fmt.Fprintf(e.stderr, "%s: missing required flag(s) %v\n", fs.Name(), names)
	fs.Usage()
	return errUsage
}

func runRegister(ctx context.Context, e *env, args []string) (any, error) {
	fs := newFlags(e, "register")
	var req model.RegistrationRequest
	fs.StringVar(&req.Email, "email", "", "participant email")
	fs.StringVar(&req.FullName, "name", "", "participant full name")
	fs.StringVar(&req.Phone, "phone", "", "participant phone")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if req.Email == "" || req.FullName == "" || req.Phone == "" {
		return nil, missing(e, fs, "email", "name", "phone")
	}
	return e.svc.RegisterParticipant(ctx, req)
}

func runVerify(ctx context.Context, e *env, args []string) (any, error) {
	fs := newFlags(e, "verify")
	token := fs.String("token", "", "verification token from the email")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *token == "" && fs.NArg() == 1 {
		*token = fs.Arg(0)
	}
	if *token == "" {
		return nil, missing(e, fs, "token")
	}
	return e.svc.VerifyEmail(ctx, *token)
}

func runSetPassword(ctx context.Context, e *env, args []string) (any, error) {
	fs := newFlags(e, "set-password")
	var req model.SetPasswordRequest
	fs.StringVar(&req.VerificationToken, "token", "", "verification token from the email")
	fs.StringVar(&req.Password, "password", "", "new password")
	fs.StringVar(&req.PasswordConfirm, "confirm", "", "password confirmation (defaults to -password)")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if req.VerificationToken == "" || req.Password == "" {
		return nil, missing(e, fs, "token", "password")
	}
	if req.PasswordConfirm == "" {
		req.PasswordConfirm = req.Password
	}
	return e.svc.SetPassword(ctx, req)
}

func runLogin(ctx context.Context, e *env, args []string) (any, error) {
	fs := newFlags(e, "login")
	email := fs.String("email", e.cfg.AdminEmail, "administrator email")
	password := fs.String("password", e.cfg.AdminPassword, "administrator password")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *email == "" || *password == "" {
		return nil, missing(e, fs, "email", "password")
	}

	resp, err := e.svc.LoginAdmin(ctx, *email, *password)
	if err != nil {
		return nil, err
	}
	if err := e.tokens.Set(ctx, e.cfg.TokenKey, resp.Tokens.Access); err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}
	return map[string]any{"message": resp.Message, "user": resp.User}, nil
}

func runLogout(ctx context.Context, e *env, args []string) (any, error) {
	if err := parse(newFlags(e, "logout"), args); err != nil {
		return nil, err
	}
	if err := e.tokens.Delete(ctx, e.cfg.TokenKey); err != nil {
		return nil, fmt.Errorf("delete access token: %w", err)
	}
	return map[string]string{"message": "logged out"}, nil
}

func runParticipants(ctx context.Context, e *env, args []string) (any, error) {
	fs := newFlags(e, "participants")
	var f model.ParticipantFilter
	fs.StringVar(&f.Search, "search", "", "match email, name or phone")
	verified := fs.String("verified", "", "true or false; empty lists everyone")
	fs.IntVar(&f.Page, "page", 0, "page number")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *verified != "" {
		v, err := strconv.ParseBool(*verified)
		if err != nil {
			fmt.Fprintf(e.stderr, "participants: -verified must be true or false, got %q\n", *verified)
			return nil, errUsage
		}
		f.IsVerified = &v
	}
	return e.svc.ListParticipants(ctx, f)
}

func runStats(ctx context.Context, e *env, args []string) (any, error) {
	if err := parse(newFlags(e, "stats"), args); err != nil {
		return nil, err
	}
	return e.svc.Stats(ctx)
}

func runDraw(ctx context.Context, e *env, args []string) (any, error) {
	if err := parse(newFlags(e, "draw"), args); err != nil {
		return nil, err
	}
	return e.svc.DrawWinner(ctx)
}

func runWinners(ctx context.Context, e *env, args []string) (any, error) {
	if err := parse(newFlags(e, "winners"), args); err != nil {
		return nil, err
	}
	return e.svc.ListWinners(ctx)
}

// runConfig prints the effective configuration with secrets masked.
func runConfig(_ context.Context, e *env, args []string) (any, error) {
	if err := parse(newFlags(e, "config"), args); err != nil {
		return nil, err
	}
	masked := *e.cfg
	if masked.AdminPassword != "" {
		masked.AdminPassword = "********"
	}
	return masked, nil
}
