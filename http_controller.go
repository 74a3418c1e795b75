package auth

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// AccessTokenCookie is the session cookie name. The token is also echoed
// in the login response body for clients that prefer the bearer header.
const AccessTokenCookie = "accessToken"

type AuthControllerRoutes struct {
	Register           string
	Login              string
	Logout             string
	VerifyEmail        string
	ResendVerification string
	ForgotPassword     string
	ResetPassword      string
}

type AuthController struct {
	Debug    bool
	Logger   Logger
	Repo     RepositoryManager
	Notifier Notifier
	Config   Config
	Auther   Authenticator
	Routes   *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerNotifier(notifier Notifier) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if notifier != nil {
			c.Notifier = notifier
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(repo RepositoryManager, auther Authenticator, cfg Config, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:   defLogger{},
		Repo:     repo,
		Notifier: NoopNotifier{},
		Config:   cfg,
		Auther:   auther,
		Routes: &AuthControllerRoutes{
			Register:           "/register",
			Login:              "/login",
			Logout:             "/logout",
			VerifyEmail:        "/verify-email",
			ResendVerification: "/resend-verification",
			ForgotPassword:     "/forgot-password",
			ResetPassword:      "/reset-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func RegisterAuthRoutes(app fiber.Router, controller *AuthController) {
	app.Post(controller.Routes.Register, controller.Register)
	app.Post(controller.Routes.Login, controller.Login)
	app.Post(controller.Routes.Logout, controller.Logout)
	app.Get(controller.Routes.VerifyEmail, controller.VerifyEmail)
	app.Post(controller.Routes.ResendVerification, controller.ResendVerification)
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPassword)
	app.Post(controller.Routes.ResetPassword, controller.ResetPassword)
}

// RegistrationCreatePayload is the registration body.
type RegistrationCreatePayload struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
	Phone           string `form:"phone" json:"phone"`
	Country         string `form:"country" json:"country"`
	Desc            string `form:"desc" json:"desc"`
	Img             string `form:"img" json:"img"`
	IsSeller        bool   `form:"is_seller" json:"is_seller"`
	BusinessType    string `form:"business_type" json:"business_type"`
	RegistrationNum string `form:"registration_number" json:"registration_number"`
}

// Validate will validate the payload. Shape checks only, the domain and
// password policy run inside the command handler.
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 60)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 8)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
		validation.Field(&r.BusinessType, validation.In(
			"", BusinessIndividual, BusinessSoleProprieto, BusinessLLP, BusinessCompany,
		)),
	)
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	var res *RegisterAccountResponse

	req := RegisterAccountMessage{
		Username:     payload.Username,
		Email:        payload.Email,
		Password:     payload.Password,
		Phone:        payload.Phone,
		Country:      payload.Country,
		Desc:         payload.Desc,
		Img:          payload.Img,
		IsSeller:     payload.IsSeller,
		BusinessType: payload.BusinessType,
		RegNumber:    payload.RegistrationNum,
		OnResponse: func(resp *RegisterAccountResponse) {
			res = resp
		},
	}

	registerAccount := NewRegisterAccountHandler(a.Repo, a.Notifier, a.Config)
	if err := registerAccount.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("register account", "error", err)
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Account created. Check your email to verify your address.",
		"account": res.Account.PublicProfile(),
	})
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Username
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload.Username))
		fmt.Println("=========================")
	}

	result, err := a.Auther.Login(c.UserContext(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("login", "error", err)
		if goerrors.IsNotFound(err) {
			// an unknown username answers exactly like a wrong password
			// so the endpoint cannot be used to enumerate accounts
			return a.renderError(c, ErrWrongCredentials)
		}
		return a.renderError(c, err)
	}

	a.setSessionCookie(c, result.Token)

	return c.JSON(fiber.Map{
		"success": true,
		"token":   result.Token,
		"profile": result.Profile,
	})
}

func (a *AuthController) Logout(c *fiber.Ctx) error {
	a.clearSessionCookie(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out.",
	})
}

// VerifyEmail consumes the emailed link, token and email travel as query
// parameters.
func (a *AuthController) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	email := c.Query("email")

	if token == "" || email == "" {
		return a.renderError(c, ErrInvalidToken)
	}

	var res *VerifyEmailResponse

	req := VerifyEmailMessage{
		Email: email,
		Token: token,
		OnResponse: func(resp *VerifyEmailResponse) {
			res = resp
		},
	}

	verifyEmail := NewVerifyEmailHandler(a.Repo)
	if err := verifyEmail.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("verify email", "error", err)
		return a.renderError(c, err)
	}

	if err := a.Notifier.SendWelcome(c.UserContext(), res.Account.Email, res.Account.Username); err != nil {
		// welcome mail is a courtesy, verification already succeeded
		a.Logger.Warn("welcome email dispatch failed", "email", res.Account.Email, "error", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Email verified. You can now log in.",
	})
}

// EmailOnlyPayload is shared by resend-verification and forgot-password.
type EmailOnlyPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r EmailOnlyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ResendVerification(c *fiber.Ctx) error {
	payload := new(EmailOnlyPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	req := ResendVerificationMessage{Email: payload.Email}

	resend := NewResendVerificationHandler(a.Repo, a.Notifier, a.Config)
	if err := resend.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("resend verification", "error", err)
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Verification email sent.",
	})
}

func (a *AuthController) ForgotPassword(c *fiber.Ctx) error {
	payload := new(EmailOnlyPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	req := InitializePasswordResetMessage{Email: payload.Email}

	initPwdReset := NewInitializePasswordResetHandler(a.Repo, a.Notifier, a.Config)
	if err := initPwdReset.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("forgot password", "error", err)
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "If that email is registered, a reset link is on its way.",
	})
}

// PasswordResetVerifyPayload holds values for password reset
type PasswordResetVerifyPayload struct {
	Email           string `form:"email" json:"email"`
	Token           string `form:"token" json:"token"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r PasswordResetVerifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 8)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) ResetPassword(c *fiber.Ctx) error {
	payload := new(PasswordResetVerifyPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	req := FinalizePasswordResetMessage{
		Email:    payload.Email,
		Token:    payload.Token,
		Password: payload.Password,
	}

	finalizePwdReset := NewFinalizePasswordResetHandler(a.Repo)
	if err := finalizePwdReset.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("reset password", "error", err)
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password updated. You can now log in.",
	})
}

func (a *AuthController) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(a.Config.GetTokenExpiration()) * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (a *AuthController) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (a *AuthController) renderError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = statusFromCategory(richErr.Category)
	}

	body := fiber.Map{
		"success": false,
		"error":   richErr.Message,
	}

	if richErr.TextCode != "" {
		body["code"] = richErr.TextCode
	}

	if retry, ok := richErr.Metadata["retry_after_seconds"]; ok {
		body["retry_after_seconds"] = retry
	}

	return c.Status(status).JSON(body)
}

func statusFromCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field -> message map for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}

	if errs, ok := err.(validation.Errors); ok {
		for field, ferr := range errs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	if err != nil {
		out["error"] = err.Error()
	}

	return out
}
