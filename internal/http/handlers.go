package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adilzhan/taskgate/internal/config"
	"github.com/adilzhan/taskgate/internal/oauth"
	"github.com/adilzhan/taskgate/internal/queue"
	"github.com/adilzhan/taskgate/internal/repo"
	"github.com/adilzhan/taskgate/internal/security"
	"github.com/adilzhan/taskgate/internal/service"
)

type Handler struct {
	Cfg    config.Config
	Store  *repo.Store
	Auth   *service.Auth
	Tasks  *service.Tasks
	Google *oauth.GoogleOAuth
	Redis  *repo.Redis
	Events queue.Publisher
}

func NewHandler(cfg config.Config, store *repo.Store, google *oauth.GoogleOAuth, rds *repo.Redis, pub queue.Publisher) *Handler {
	return &Handler{
		Cfg:    cfg,
		Store:  store,
		Auth:   service.NewAuth(store, cfg.JWTSecret),
		Tasks:  service.NewTasks(store),
		Google: google,
		Redis:  rds,
		Events: pub,
	}
}

type signUpReq struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	RepeatPassword string `json:"repeatPassword"`
}

// SignUp godoc
// @Summary Register a local user
// @Tags auth
// @Accept json
// @Produce json
// @Param accesstoken header string true "pre-shared access token"
// @Param payload body signUpReq true "signup"
// @Success 201 {object} ServiceResponse
// @Failure 400 {object} ServiceResponse
// @Failure 401 {object} ServiceResponse
// @Failure 409 {object} ServiceResponse
// @Router /api/auth/signup [post]
func (h *Handler) SignUp(c *gin.Context) {
	var in signUpReq
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input")
		return
	}
	email := strings.TrimSpace(in.Email)
	if !strings.Contains(email, "@") || len(in.Password) < 8 {
		fail(c, http.StatusBadRequest, "Invalid email or weak password")
		return
	}

	u, err := h.Auth.SignUp(c.Request.Context(), email, in.Password, in.RepeatPassword)
	switch err {
	case nil:
	case service.ErrPasswordMismatch:
		fail(c, http.StatusBadRequest, err.Error())
		return
	case service.ErrEmailInUse:
		fail(c, http.StatusConflict, err.Error())
		return
	default:
		failInternal(c, "signup", err)
		return
	}

	go h.Events.Publish(context.WithoutCancel(c.Request.Context()), queue.AuthExchange, queue.KeyUserRegistered,
		queue.UserRegistered{UserID: u.ID.Hex(), Email: u.Local.Email, Provider: "local"},
		c.GetString(requestIDKey))

	respond(c, http.StatusCreated, "User created", u)
}

type signInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signedIn struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

// SignIn godoc
// @Summary Sign in with email + password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body signInReq true "signin"
// @Success 200 {object} ServiceResponse
// @Failure 401 {object} ServiceResponse
// @Failure 404 {object} ServiceResponse
// @Failure 500 {object} ServiceResponse
// @Router /api/auth/signin [post]
func (h *Handler) SignIn(c *gin.Context) {
	var in signInReq
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input")
		return
	}

	u, tok, err := h.Auth.SignIn(c.Request.Context(), in.Email, in.Password)
	switch err {
	case nil:
	case service.ErrUserNotFound:
		fail(c, http.StatusNotFound, err.Error())
		return
	case service.ErrInvalidPassword:
		fail(c, http.StatusUnauthorized, err.Error())
		return
	default:
		failInternal(c, "signin", err)
		return
	}

	go h.Events.Publish(context.WithoutCancel(c.Request.Context()), queue.AuthExchange, queue.KeyUserLoggedIn,
		queue.UserLoggedIn{UserID: u.ID.Hex(), Email: u.Email()},
		c.GetString(requestIDKey))

	respond(c, http.StatusOK, "User signed in", signedIn{User: u, Token: tok})
}

// CheckSession godoc
// @Summary Confirm the caller's session is live
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ServiceResponse
// @Failure 401 {object} ServiceResponse
// @Router /api/auth/check-session [get]
func (h *Handler) CheckSession(c *gin.Context) {
	if _, ok := authedUser(c); !ok {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respond(c, http.StatusOK, "Session is active", nil)
}

// Logout godoc
// @Summary Clear the OAuth session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /api/auth/logout [get]
func (h *Handler) Logout(c *gin.Context) {
	// only the cookie session dies here; issued bearer tokens stay
	// valid until they expire
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	respond(c, http.StatusOK, "Logged out", nil)
}

type addInviteReq struct {
	Email string `json:"email"`
}

// AddInvite godoc
// @Summary Allow-list an email for Google signup
// @Tags auth
// @Accept json
// @Produce json
// @Param accesstoken header string true "pre-shared access token"
// @Param payload body addInviteReq true "invite"
// @Success 201 {object} ServiceResponse
// @Failure 409 {object} ServiceResponse
// @Failure 500 {object} ServiceResponse
// @Router /api/auth/add-invite [post]
func (h *Handler) AddInvite(c *gin.Context) {
	var in addInviteReq
	if err := c.ShouldBindJSON(&in); err != nil || !strings.Contains(in.Email, "@") {
		fail(c, http.StatusBadRequest, "Invalid input")
		return
	}

	inv, err := h.Auth.AddInvite(c.Request.Context(), in.Email)
	switch err {
	case nil:
	case service.ErrInviteExists:
		fail(c, http.StatusConflict, err.Error())
		return
	default:
		failInternal(c, "add-invite", err)
		return
	}

	go h.Events.Publish(context.WithoutCancel(c.Request.Context()), queue.AuthExchange, queue.KeyInviteCreated,
		queue.InviteCreated{InviteID: inv.ID.Hex(), Email: inv.Email},
		c.GetString(requestIDKey))

	respond(c, http.StatusCreated, "Invite created", inv.ID.Hex())
}

// LoginSuccess godoc
// @Summary Token for an OAuth-authenticated session
// @Tags auth
// @Produce json
// @Success 200 {object} ServiceResponse
// @Failure 401 {object} ServiceResponse
// @Router /api/auth/login/success [get]
func (h *Handler) LoginSuccess(c *gin.Context) {
	u, ok := authedUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	tok, err := security.MakeAccess(h.Cfg.JWTSecret, u.ID.Hex(), u.Email(), security.AccessTTL)
	if err != nil {
		failInternal(c, "login success", err)
		return
	}
	respond(c, http.StatusOK, "User signed in", signedIn{User: u, Token: tok})
}

func (h *Handler) LoginFailed(c *gin.Context) {
	c.Redirect(http.StatusFound, h.Cfg.FrontendURL+"/auth/failed")
}

// GoogleRedirect sends the browser to Google's consent screen with an
// HMAC-signed state.
func (h *Handler) GoogleRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, h.Google.AuthURL(h.Google.NewState()))
}

// GoogleCallback finishes the handshake: state check, code exchange,
// invite gate for first-time identities, then a session cookie and a
// redirect to the frontend. Every failure lands on the failed page.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if !h.Google.VerifyState(c.Query("state")) {
		c.Redirect(http.StatusFound, h.Cfg.FrontendURL+"/auth/failed")
		return
	}
	gu, err := h.Google.ExchangeAndVerify(c.Request.Context(), c.Query("code"), h.Google.ClientID())
	if err != nil {
		c.Redirect(http.StatusFound, h.Cfg.FrontendURL+"/auth/failed")
		return
	}

	u, tok, err := h.Auth.OAuthLogin(c.Request.Context(), gu)
	if err != nil {
		c.Redirect(http.StatusFound, h.Cfg.FrontendURL+"/auth/failed")
		return
	}

	go h.Events.Publish(context.WithoutCancel(c.Request.Context()), queue.AuthExchange, queue.KeyUserLoggedIn,
		queue.UserLoggedIn{UserID: u.ID.Hex(), Email: u.Email()},
		c.GetString(requestIDKey))

	c.SetCookie(sessionCookie, tok, int(security.AccessTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, h.Cfg.FrontendURL)
}

// Healthz godoc
// @Summary Liveness + Mongo reachability
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
