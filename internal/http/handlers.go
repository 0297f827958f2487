package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/account-service/internal/config"
	"github.com/tazhibayda/account-service/internal/domain"
	"github.com/tazhibayda/account-service/internal/log"
	"github.com/tazhibayda/account-service/internal/mail"
	"github.com/tazhibayda/account-service/internal/metrics"
	"github.com/tazhibayda/account-service/internal/queue"
	"github.com/tazhibayda/account-service/internal/repo"
	"github.com/tazhibayda/account-service/internal/security"
)

// UserStore is the persistence boundary. The mongo repo implements it; tests
// substitute an in-memory fake.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByEmailOrMobile(ctx context.Context, email, mobile string) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	RecordLogin(ctx context.Context, id primitive.ObjectID, refreshToken string, at time.Time) error
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error
	Ping(ctx context.Context) error
}

type Handler struct {
	Store      UserStore
	Mail       mail.Sender
	Events     queue.Publisher
	Cfg        config.Config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewHandler(store UserStore, sender mail.Sender, pub queue.Publisher, cfg config.Config) *Handler {
	return &Handler{
		Store:      store,
		Mail:       sender,
		Events:     pub,
		Cfg:        cfg,
		AccessTTL:  time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL: time.Duration(cfg.RefreshTTLDay) * 24 * time.Hour,
	}
}

const (
	msgFillFields  = "Please fill the required fields"
	msgInternal    = "Internal server error"
	msgBadLogin    = "Invalid email or password"
	msgUnverified  = "Please verify your email first"
	msgInvalidCode = "Invalid Code"
	msgEmailTaken  = "Email is already registered"
	msgMobileTaken = "Mobile number is already registered"
)

const (
	dbTimeout   = 5 * time.Second
	mailTimeout = 10 * time.Second
)

func dbCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), dbTimeout)
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Mobile   string `json:"mobile"`
}

type tokenData struct {
	User         any    `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Register godoc
// @Summary Register user
// @Tags user
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 201 {object} response
// @Failure 400 {object} response
// @Failure 500 {object} response
// @Router /api/user/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		respond(c, http.StatusBadRequest, msgFillFields, nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	mobile := strings.TrimSpace(in.Mobile)
	name := strings.TrimSpace(in.Name)
	if name == "" || email == "" || in.Password == "" || mobile == "" {
		respond(c, http.StatusBadRequest, msgFillFields, nil)
		return
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	// duplicate pre-check: respond and stop, никакой записи после конфликта
	existing, err := h.Store.FindUserByEmailOrMobile(ctx, email, mobile)
	if err != nil {
		h.fail(c, "register: duplicate check", err)
		return
	}
	if existing != nil {
		if existing.Email == email {
			respond(c, http.StatusBadRequest, msgEmailTaken, nil)
		} else {
			respond(c, http.StatusBadRequest, msgMobileTaken, nil)
		}
		return
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		h.fail(c, "register: hash", err)
		return
	}

	u := &domain.User{Name: name, Email: email, Mobile: mobile, PasswordHash: hash}
	if err := h.Store.CreateUser(ctx, u); err != nil {
		// unique indexes arbitrate the insert race; same outcome as the pre-check
		switch {
		case errors.Is(err, repo.ErrConflictEmail):
			respond(c, http.StatusBadRequest, msgEmailTaken, nil)
		case errors.Is(err, repo.ErrConflictMobile):
			respond(c, http.StatusBadRequest, msgMobileTaken, nil)
		default:
			h.fail(c, "register: insert", err)
		}
		return
	}

	if err := h.sendVerificationMail(c, u); err != nil {
		h.fail(c, "register: mail", err)
		return
	}

	access, refresh, err := h.issueTokens(u.ID.Hex())
	if err != nil {
		h.fail(c, "register: tokens", err)
		return
	}
	h.setTokenCookies(c, access, refresh)

	go h.Events.Publish(context.WithoutCancel(c.Request.Context()), queue.Exchange, "user.registered",
		queue.UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Name}, requestID(c))

	respond(c, http.StatusCreated, "User registered successfully", tokenData{
		User: u, AccessToken: access, RefreshToken: refresh,
	})
}

// The verification mail is the only way the user learns their code; a send
// failure (including timeout) is a dependency failure, not a silent skip.
func (h *Handler) sendVerificationMail(c *gin.Context, u *domain.User) error {
	verifyURL := strings.TrimRight(h.Cfg.ClientURL, "/") + "/verify-email?code=" + u.ID.Hex()
	subject, body, err := mail.VerificationEmail(u.Name, verifyURL)
	if err != nil {
		metrics.MailSendTotal.WithLabelValues("render_error").Inc()
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), mailTimeout)
	defer cancel()
	if err := h.Mail.Send(ctx, u.Email, subject, body); err != nil {
		metrics.MailSendTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.MailSendTotal.WithLabelValues("ok").Inc()
	return nil
}

func (h *Handler) issueTokens(uid string) (access, refresh string, err error) {
	access, err = security.MakeAccess(h.Cfg.AccessSecret, uid, h.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = security.MakeRefresh(h.Cfg.RefreshSecret, uid, h.RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

type verifyReq struct {
	Code string `json:"code"`
}

// VerifyEmail godoc
// @Summary Verify email
// @Tags user
// @Accept json
// @Produce json
// @Param payload body verifyReq true "verification code"
// @Success 200 {object} response
// @Failure 400 {object} response
// @Failure 500 {object} response
// @Router /api/user/verify-email [post]
func (h *Handler) VerifyEmail(c *gin.Context) {
	var in verifyReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Code == "" {
		respond(c, http.StatusBadRequest, msgFillFields, nil)
		return
	}
	id, err := primitive.ObjectIDFromHex(in.Code)
	if err != nil {
		respond(c, http.StatusBadRequest, msgInvalidCode, nil)
		return
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	// repeat submits of a valid code stay 200: the flag only ever goes false→true
	u, err := h.Store.MarkEmailVerified(ctx, id)
	if err != nil {
		h.fail(c, "verify: update", err)
		return
	}
	if u == nil {
		respond(c, http.StatusBadRequest, msgInvalidCode, nil)
		return
	}
	respond(c, http.StatusOK, "Email was verified successfully", nil)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Login
// @Tags user
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} response
// @Failure 400 {object} response
// @Failure 401 {object} response
// @Failure 403 {object} response
// @Router /api/user/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		respond(c, http.StatusBadRequest, msgFillFields, nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		respond(c, http.StatusBadRequest, msgFillFields, nil)
		return
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Store.FindUserByEmail(ctx, email)
	if err != nil {
		h.fail(c, "login: find", err)
		return
	}
	// missing user and wrong password are indistinguishable to the caller;
	// the password is checked before the verification flag
	if u == nil {
		respond(c, http.StatusUnauthorized, msgBadLogin, nil)
		return
	}
	match, err := security.CheckPasswordStrict(u.PasswordHash, in.Password)
	if err != nil {
		// stored digest is not valid bcrypt output
		h.fail(c, "login: digest", err)
		return
	}
	if !match {
		respond(c, http.StatusUnauthorized, msgBadLogin, nil)
		return
	}
	if !u.VerifyEmail {
		respond(c, http.StatusForbidden, msgUnverified, nil)
		return
	}

	access, refresh, err := h.issueTokens(u.ID.Hex())
	if err != nil {
		h.fail(c, "login: tokens", err)
		return
	}
	if err := h.Store.RecordLogin(ctx, u.ID, refresh, time.Now()); err != nil {
		h.fail(c, "login: record", err)
		return
	}
	h.setTokenCookies(c, access, refresh)

	go h.Events.Publish(context.WithoutCancel(c.Request.Context()), queue.Exchange, "user.loggedin",
		queue.UserLoggedIn{UserID: u.ID, Email: u.Email}, requestID(c))

	respond(c, http.StatusOK, "Login successful", tokenData{
		User: u.Public(), AccessToken: access, RefreshToken: refresh,
	})
}

// Logout godoc
// @Summary Logout
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response
// @Failure 401 {object} response
// @Router /api/user/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	au, ok := c.Get(authUserKey)
	if !ok {
		respond(c, http.StatusUnauthorized, "Unauthenticated", nil)
		return
	}
	user := au.(AuthUser)

	ctx, cancel := dbCtx(c)
	defer cancel()

	h.clearTokenCookies(c)
	// 200 regardless of whether a refresh token was stored
	if err := h.Store.ClearRefreshToken(ctx, user.ID); err != nil {
		h.fail(c, "logout: clear refresh", err)
		return
	}
	respond(c, http.StatusOK, "Logout successful", nil)
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail logs the cause and answers with the generic 500; driver errors and
// stack detail never reach the client.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	log.WithDD(c.Request.Context()).Error(op, zap.Error(err))
	respond(c, http.StatusInternalServerError, msgInternal, nil)
}
