// Command clubctl is a terminal client for the club board: sign in, edit
// your profile, browse members and use the recruiting board.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"clubboard/internal/client"
	"clubboard/internal/config"
	"clubboard/internal/observability"
	"clubboard/internal/view"
)

const usage = `usage: clubctl [-local] [-yes] <command> [args]

commands:
  signup -email E -password P   create an account
  login -email E -password P    sign in and keep the session
  logout                        end the session
  whoami                        show the current member
  profiles [-gen N] [-part P]   list visible member profiles
  profile show                  show your profile
  profile save [field flags]    edit and save your profile
  profile avatar FILE           upload an avatar and save it
  profile hide | restore        soft-delete or restore your profile
  profile delete                delete your profile permanently
  board list                    list board posts
  board post [post flags]       create a post
  board edit ID [post flags]    edit one of your posts
  board delete ID               delete one of your posts
  board like ID | unlike ID     like or unlike a post
  board comment ID TEXT         comment on a post
  watch [collection...]         print lists again whenever they change
`

type app struct {
	out      io.Writer
	in       *bufio.Reader
	assume   bool
	api      *client.Client
	state    view.LocalStore
	memberID string
	gate     *view.AuthGate
	profiles *view.ProfileStore
	board    *view.BoardStore
}

func main() {
	fs := flag.NewFlagSet("clubctl", flag.ExitOnError)
	local := fs.Bool("local", false, "use a device-generated member id instead of an account")
	yes := fs.Bool("yes", false, "answer yes to confirmations")
	verbose := fs.Bool("v", false, "log requests and failures")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	if *verbose {
		slog.SetDefault(observability.NewLogger(os.Stderr, "development").Logger)
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, *local, *yes)
	if err == nil {
		err = a.run(ctx, fs.Args())
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, view.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "中止しました")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context, local, assume bool) (*app, error) {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		return nil, err
	}
	statePath := cfg.StateFile
	if statePath == "" {
		if statePath, err = view.DefaultStatePath(); err != nil {
			return nil, err
		}
	}
	state := view.NewFileStore(statePath)

	opts := []client.Option{
		client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		client.WithTokenStore(state),
	}
	var localID string
	if local {
		if localID, err = view.BootstrapLocalIdentity(state); err != nil {
			return nil, err
		}
		opts = append(opts, client.WithLocalIdentity(localID))
	}
	api, err := client.New(cfg.ServerURL, opts...)
	if err != nil {
		return nil, err
	}

	a := &app{
		out:    os.Stdout,
		in:     bufio.NewReader(os.Stdin),
		assume: assume,
		api:    api,
		state:  state,
		gate:   view.NewAuthGate(api),
	}
	confirm := view.ConfirmFunc(a.confirm)
	a.profiles = view.NewProfileStore(api, api, confirm, slog.Default())
	a.board = view.NewBoardStore(api, confirm, slog.Default())

	if local {
		a.memberID = localID
	} else if ok, err := a.gate.Restore(ctx); err != nil {
		return nil, err
	} else if ok {
		a.memberID = a.gate.MemberID()
	}
	a.profiles.SetMemberID(a.memberID)
	a.board.SetMemberID(a.memberID)
	return a, nil
}

func (a *app) confirm(prompt string) bool {
	if a.assume {
		return true
	}
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)
	line, _ := a.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "signup":
		return a.signup(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami()
	case "profiles":
		return a.listProfiles(ctx, rest)
	case "profile":
		return a.profile(ctx, rest)
	case "board":
		return a.boardCmd(ctx, rest)
	case "watch":
		return a.watch(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}
