package view

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"clubboard/internal/models"
)

// AuthState is whether a member is signed in.
type AuthState int

const (
	LoggedOut AuthState = iota
	LoggedIn
)

func (s AuthState) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Messages shown by the auth gate.
const (
	MsgCredentialsRequired = "メールアドレスとパスワードを入力してください"
	MsgSignUpDone          = "登録しました。確認メールを確認してからログインしてください"
	MsgSignUpFailed        = "登録に失敗しました"
	MsgLoginFailed         = "ログインに失敗しました"
)

// AuthGate tracks the signed-in member for the authenticated revision.
type AuthGate struct {
	mu       sync.Mutex
	gw       AuthGateway
	state    AuthState
	email    string
	password string
	memberID string
	message  string
}

// NewAuthGate starts logged out.
func NewAuthGate(gw AuthGateway) *AuthGate {
	return &AuthGate{gw: gw}
}

// SetCredentials holds the email and password used by SignUp and Login.
func (g *AuthGate) SetCredentials(email, password string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.email = strings.TrimSpace(email)
	g.password = password
}

func (g *AuthGate) State() AuthState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// MemberID is empty while logged out.
func (g *AuthGate) MemberID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.memberID
}

func (g *AuthGate) Email() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.email
}

// Message is the last status line for the member.
func (g *AuthGate) Message() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.message
}

func (g *AuthGate) credentials() (string, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.email == "" || g.password == "" {
		g.message = MsgCredentialsRequired
		return "", "", models.NewValidationError(MsgCredentialsRequired)
	}
	return g.email, g.password, nil
}

// Restore adopts a session the collaborator already holds.
func (g *AuthGate) Restore(ctx context.Context) (bool, error) {
	sess, ok, err := g.gw.CurrentSession(ctx)
	if err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !ok || sess.MemberID == "" {
		g.state, g.memberID = LoggedOut, ""
		return false, nil
	}
	g.state, g.memberID = LoggedIn, sess.MemberID
	if sess.Email != "" {
		g.email = sess.Email
	}
	return true, nil
}

// SignUp registers the held credentials. The gate stays logged out; the
// member signs in once the account is confirmed.
func (g *AuthGate) SignUp(ctx context.Context) error {
	email, password, err := g.credentials()
	if err != nil {
		return err
	}
	err = g.gw.SignUp(ctx, email, password)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.message = MsgSignUpFailed
		return fmt.Errorf("%s: %w", MsgSignUpFailed, err)
	}
	g.message = MsgSignUpDone
	g.password = ""
	return nil
}

// Login moves to LoggedIn on success. On failure the state is unchanged.
func (g *AuthGate) Login(ctx context.Context) error {
	email, password, err := g.credentials()
	if err != nil {
		return err
	}
	sess, err := g.gw.SignIn(ctx, email, password)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.message = MsgLoginFailed
		return fmt.Errorf("%s: %w", MsgLoginFailed, err)
	}
	g.state = LoggedIn
	g.memberID = sess.MemberID
	g.password = ""
	g.message = ""
	return nil
}

// Logout ends the session and clears the identity even if the collaborator
// call fails.
func (g *AuthGate) Logout(ctx context.Context) error {
	err := g.gw.SignOut(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = LoggedOut
	g.memberID = ""
	g.email = ""
	g.password = ""
	g.message = ""
	return err
}
