package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/adilzhan/taskgate/internal/domain"
	"github.com/adilzhan/taskgate/internal/log"
	"github.com/adilzhan/taskgate/internal/oauth"
	"github.com/adilzhan/taskgate/internal/repo"
	"github.com/adilzhan/taskgate/internal/security"
)

// Auth is the authentication workflow: signup, signin, invite
// creation and the Google login path. Each method is a single
// request/response transaction; the only session state is the
// stateless access token.
type Auth struct {
	Store     *repo.Store
	JWTSecret string
}

func NewAuth(store *repo.Store, jwtSecret string) *Auth {
	return &Auth{Store: store, JWTSecret: jwtSecret}
}

// SignUp creates a local user. The pre-check keeps the common case
// friendly; the race where two signups pass it together is settled by
// the unique index, which comes back as ErrEmailInUse too.
func (a *Auth) SignUp(ctx context.Context, email, password, repeatPassword string) (*domain.User, error) {
	if password != repeatPassword {
		return nil, ErrPasswordMismatch
	}
	existing, err := a.Store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := a.Store.CreateLocalUser(ctx, email, hash)
	if errors.Is(err, repo.ErrEmailExists) {
		return nil, ErrEmailInUse
	}
	if err != nil {
		return nil, err
	}
	log.WithDD(ctx, log.L()).Info("user signed up", zap.String("email", u.Local.Email))
	return u, nil
}

// SignIn verifies credentials and issues an access token. bcrypt's
// comparison is constant-time.
func (a *Auth) SignIn(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := a.Store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil || u.Local == nil {
		return nil, "", ErrUserNotFound
	}
	if !security.CheckPassword(u.Local.PasswordHash, password) {
		return nil, "", ErrInvalidPassword
	}
	tok, err := security.MakeAccess(a.JWTSecret, u.ID.Hex(), u.Local.Email, security.AccessTTL)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

func (a *Auth) AddInvite(ctx context.Context, email string) (*domain.Invite, error) {
	existing, err := a.Store.FindInvite(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrInviteExists
	}
	inv, err := a.Store.CreateInvite(ctx, email)
	if errors.Is(err, repo.ErrInviteExists) {
		return nil, ErrInviteExists
	}
	return inv, err
}

// OAuthLogin resolves a verified Google identity to a user and issues
// an access token. First-time identities pass through the invite gate;
// the invite record is checked, not consumed.
func (a *Auth) OAuthLogin(ctx context.Context, gu *oauth.GoogleUser) (*domain.User, string, error) {
	u, err := a.Store.FindUserByGoogleID(ctx, gu.Sub)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		inv, err := a.Store.FindInvite(ctx, gu.Email)
		if err != nil {
			return nil, "", err
		}
		if inv == nil {
			return nil, "", ErrNotInvited
		}
		u, err = a.Store.CreateGoogleUser(ctx, gu.Sub, gu.Email, gu.Name)
		if err != nil {
			return nil, "", err
		}
		log.WithDD(ctx, log.L()).Info("google user registered", zap.String("email", gu.Email))
	}
	tok, err := security.MakeAccess(a.JWTSecret, u.ID.Hex(), u.Email(), security.AccessTTL)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}
