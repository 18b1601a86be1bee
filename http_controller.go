package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// localsUserKey is where middleware parks the resolved account view.
const localsUserKey = "auth_user"

// Controller exposes the subsystem over HTTP. Handlers are stateless; all
// session state travels inside the signed cookie.
type Controller struct {
	Debug        bool
	Logger       Logger
	Cfg          Config
	Repo         RepositoryManager
	Auther       Authenticator
	Tracker      *NotificationTracker
	Profile      *UpdateProfileHandler
	ResetInit    *InitializePasswordResetHandler
	ResetFinal   *FinalizePasswordResetHandler
	Verification *EmailVerificationHandler
}

type ControllerOption func(*Controller) *Controller

func NewController(repo RepositoryManager, cfg Config, opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger:       defLogger{},
		Cfg:          cfg,
		Repo:         repo,
		Auther:       NewAuthenticator(repo, cfg),
		Tracker:      NewNotificationTracker(repo),
		Profile:      NewUpdateProfileHandler(repo),
		ResetInit:    NewInitializePasswordResetHandler(repo),
		ResetFinal:   NewFinalizePasswordResetHandler(repo, cfg),
		Verification: NewEmailVerificationHandler(repo),
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	return c
}

func WithLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithMailer(mailer Mailer) ControllerOption {
	return func(c *Controller) *Controller {
		c.ResetInit = c.ResetInit.WithMailer(mailer)
		c.Verification = c.Verification.WithMailer(mailer)
		c.Profile = c.Profile.WithVerificationHandler(c.Verification)
		return c
	}
}

// RegisterRoutes mounts every account endpoint on the given router.
func (a *Controller) RegisterRoutes(app fiber.Router) {
	account := app.Group("/account", a.CurrentUser)

	account.Post("/login", a.Login)
	account.Post("/logout", a.Logout)
	account.Get("/follows", a.RequireUser, a.GetFollows)
	account.Post("/update", a.RequireUser, a.UpdateProfile)
	account.Get("/notifications", a.RequireUser, a.ListNotifications)
	account.Get("/notifications/count", a.CountNotifications)
	account.Post("/notifications/mark_as_read", a.RequireUser, a.MarkNotificationAsRead)
	account.Post("/verify_email", a.VerifyEmail)
	account.Post("/change_password", a.RequireUser, a.ChangePassword)
	account.Post("/request_reset_password", a.RequestPasswordReset)
	account.Post("/change_password_after_reset", a.CompletePasswordReset)

	app.Get("/user", a.GetUser)
}

// CurrentUser resolves the session cookie to an account when one is
// present. Anonymous requests pass through untouched; a bad cookie is
// treated the same as no cookie.
func (a *Controller) CurrentUser(c *fiber.Ctx) error {
	token := c.Cookies(AuthCookie)
	if token == "" {
		return c.Next()
	}

	user, err := a.Auther.LocalUserFromToken(c.Context(), token)
	if err != nil {
		a.Logger.Debug("session cookie did not resolve", "error", err)
		return c.Next()
	}

	c.Locals(localsUserKey, user)
	return c.Next()
}

// RequireUser rejects requests that did not resolve to an account. The
// response is always the generic invalid-token error, whatever the cause.
func (a *Controller) RequireUser(c *fiber.Ctx) error {
	if RequestUser(c) == nil {
		return a.renderError(c, ErrInvalidToken)
	}
	return c.Next()
}

// RequestUser returns the account resolved for this request, nil when
// anonymous.
func RequestUser(c *fiber.Ctx) *LocalUserView {
	user, _ := c.Locals(localsUserKey).(*LocalUserView)
	return user
}

// LoginRequest payload
type LoginRequest struct {
	UsernameOrEmail string `form:"username_or_email" json:"username_or_email"`
	Password        string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UsernameOrEmail, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *Controller) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse login payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.renderValidation(c, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	user, token, err := a.Auther.Login(c.Context(), payload.UsernameOrEmail, payload.Password)
	if err != nil {
		return a.renderError(c, err)
	}

	c.Cookie(SessionCookie(token, a.Cfg))
	return c.JSON(user)
}

// Logout clears the session cookie. It always succeeds and repeating it
// changes nothing.
func (a *Controller) Logout(c *fiber.Ctx) error {
	c.Cookie(ClearSessionCookie(a.Cfg))
	return c.JSON(NewSuccessResponse())
}

func (a *Controller) GetUser(c *fiber.Ctx) error {
	name := c.Query("name")
	domain := c.Query("domain", a.Cfg.GetDomain())

	if name == "" {
		return a.renderError(c, goerrors.New("missing name parameter", goerrors.CategoryBadInput))
	}

	person, err := a.Repo.Users().GetPerson(c.Context(), name, domain)
	if err != nil {
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryNotFound, "user not found"))
	}

	return c.JSON(person)
}

func (a *Controller) GetFollows(c *fiber.Ctx) error {
	user := RequestUser(c)

	follows, err := a.Repo.Users().ListFollows(c.Context(), user.Person.ID)
	if err != nil {
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list follows"))
	}

	return c.JSON(follows)
}

func (a *Controller) UpdateProfile(c *fiber.Ctx) error {
	user := RequestUser(c)
	params := UpdateProfileParams{}

	if err := c.BodyParser(&params); err != nil {
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse profile payload"))
	}

	if err := a.Profile.Execute(c.Context(), user, params); err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(NewSuccessResponse())
}

func (a *Controller) ListNotifications(c *fiber.Ctx) error {
	records, err := a.Tracker.List(c.Context(), RequestUser(c))
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(records)
}

// CountNotifications serves anonymous callers too: no identity means zero,
// never an error.
func (a *Controller) CountNotifications(c *fiber.Ctx) error {
	count, err := a.Tracker.Count(c.Context(), RequestUser(c))
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(count)
}

// MarkAsReadRequest payload
type MarkAsReadRequest struct {
	ID uuid.UUID `form:"id" json:"id"`
}

func (a *Controller) MarkNotificationAsRead(c *fiber.Ctx) error {
	payload := new(MarkAsReadRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse payload"))
	}

	if err := a.Tracker.MarkAsRead(c.Context(), payload.ID, RequestUser(c)); err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(NewSuccessResponse())
}

// VerifyEmailRequest payload
type VerifyEmailRequest struct {
	Token string `form:"token" json:"token"`
}

// Validate will run validation rules
func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required, is.UUID),
	)
}

func (a *Controller) VerifyEmail(c *fiber.Ctx) error {
	payload := new(VerifyEmailRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.renderValidation(c, err)
	}

	err := a.Verification.Confirm(c.Context(), ConfirmEmailVerificationMessage{Token: payload.Token})
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(NewSuccessResponse())
}

// ChangePasswordRequest payload
type ChangePasswordRequest struct {
	OldPassword        string `form:"old_password" json:"old_password"`
	NewPassword        string `form:"new_password" json:"new_password"`
	ConfirmNewPassword string `form:"confirm_new_password" json:"confirm_new_password"`
}

// Validate will run validation rules
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
		validation.Field(&r.ConfirmNewPassword, validation.Required),
	)
}

func (a *Controller) ChangePassword(c *fiber.Ctx) error {
	payload := new(ChangePasswordRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.renderValidation(c, err)
	}

	user := RequestUser(c)
	err := a.Auther.ChangePassword(c.Context(), user, payload.OldPassword, payload.NewPassword, payload.ConfirmNewPassword)
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(NewSuccessResponse())
}

// PasswordResetRequestPayload holds values for password reset
type PasswordResetRequestPayload struct {
	Email string `form:"email" json:"email"`
}

// RequestPasswordReset answers identically whether or not the email matches
// an account; handler failures are logged, never surfaced.
func (a *Controller) RequestPasswordReset(c *fiber.Ctx) error {
	payload := new(PasswordResetRequestPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse payload"))
	}

	if err := a.ResetInit.Execute(c.Context(), InitializePasswordResetMessage{Email: payload.Email}); err != nil {
		a.Logger.Warn("password reset initialization error", "error", err)
	}

	return c.JSON(NewSuccessResponse())
}

// PasswordResetCompletePayload holds values for password reset completion
type PasswordResetCompletePayload struct {
	Token           string `form:"token" json:"token"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will run validation rules
func (r PasswordResetCompletePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.ConfirmPassword, validation.Required),
	)
}

func (a *Controller) CompletePasswordReset(c *fiber.Ctx) error {
	payload := new(PasswordResetCompletePayload)

	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.renderValidation(c, err)
	}

	err := a.ResetFinal.Execute(c.Context(), FinalizePasswordResetMessage{
		Token:           payload.Token,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
	})
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(NewSuccessResponse())
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// renderError maps the taxonomy onto status codes. ErrUnknownSubject never
// leaves the process as itself: a caller holding a token for a vanished
// account sees the same generic invalid-token error as anyone else.
func (a *Controller) renderError(c *fiber.Ctx, err error) error {
	if goerrors.Is(err, ErrUnknownSubject) {
		a.Logger.Warn("collapsing unknown subject to invalid token")
		err = ErrInvalidToken
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		rich = goerrors.Wrap(err, goerrors.CategoryInternal, "unexpected error")
	}

	status := statusForCategory(rich.Category)
	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("request failed", "error", err)
		// internal details stay in the log
		return c.Status(status).JSON(errorResponse{Error: "internal server error"})
	}

	return c.Status(status).JSON(errorResponse{
		Error: rich.Message,
		Code:  rich.TextCode,
	})
}

func (a *Controller) renderValidation(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
		Error: err.Error(),
		Code:  "VALIDATION",
	})
}

func statusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
