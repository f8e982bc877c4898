// Package auth registers users, confirms their email and signs them in and
// out. Every call here is anonymous; the token returned by SignIn is kept in
// the session for the protected services.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/cache"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/client"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/inflight"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/logging"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/session"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/validation"
)

// Backend paths.
const (
	PathSignUp       = "/users/signup"
	PathConfirmEmail = "/users/confirmEmail"
	PathSignIn       = "/users/signin"
)

// SignupForm is the registration form. Field names are the backend's.
type SignupForm struct {
	Name            string `json:"name" validate:"min=3" msg:"Name must be at least 3 characters"`
	Email           string `json:"email" validate:"required,email" msg:"Invalid email address"`
	Password        string `json:"pass" validate:"min=8" msg:"Password must be at least 8 characters"`
	ConfirmPassword string `json:"cpass" validate:"eqfield=Password" msg:"Passwords do not match"`
	Phone           string `json:"phone" validate:"egphone" msg:"Invalid phone number"`
	DOB             string `json:"DOB" validate:"required" msg:"Date of birth is required"`
	Gender          string `json:"gender" validate:"oneof=male female" msg:"Gender is required"`
	Address         string `json:"address" validate:"min=5" msg:"Address must be at least 5 characters"`
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email" msg:"Invalid email address"`
	Password string `json:"pass" validate:"min=8" msg:"Password must be at least 8 characters"`
}

// Doer is the slice of *client.Client the service needs.
type Doer interface {
	Do(ctx context.Context, r client.Request) (*client.Response, error)
}

// Service performs authentication flows.
type Service struct {
	client  Doer
	session *session.Session
	loader  *cache.Loader
	guard   *inflight.Guard
	logger  zerolog.Logger
}

// New creates an auth service.
func New(c Doer, sess *session.Session, loader *cache.Loader, guard *inflight.Guard, logger zerolog.Logger) *Service {
	return &Service{
		client:  c,
		session: sess,
		loader:  loader,
		guard:   guard,
		logger:  logger.With().Str("component", logging.ComponentAuth).Logger(),
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// SignUp validates form and registers the user. It returns the backend's
// confirmation message; an OTP is then mailed to form.Email.
func (s *Service) SignUp(ctx context.Context, form SignupForm) (string, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	if err := validation.Struct(form); err != nil {
		return "", err
	}

	var out messageResponse
	err := s.guard.Run(inflight.Op("signup", form.Email), func() error {
		return s.post(ctx, PathSignUp, form, &out)
	})
	if err != nil {
		return "", fmt.Errorf("sign up: %w", err)
	}

	s.logger.Info().Str("email", form.Email).Msg("Account registered")
	return out.Message, nil
}

// ConfirmEmail submits the OTP mailed after sign-up.
func (s *Service) ConfirmEmail(ctx context.Context, email, otp string) error {
	email = strings.TrimSpace(email)
	otp = strings.TrimSpace(otp)
	switch {
	case email == "":
		return validation.New("email", "Invalid email address")
	case otp == "":
		return validation.New("otp", "OTP is required")
	}

	body := map[string]string{"email": email, "otp": otp}
	if err := s.post(ctx, PathConfirmEmail, body, nil); err != nil {
		return fmt.Errorf("confirm email: %w", err)
	}
	s.logger.Info().Str("email", email).Msg("Email confirmed")
	return nil
}

// SignIn validates form, exchanges it for a token and stores the token in
// the session.
func (s *Service) SignIn(ctx context.Context, form LoginForm) error {
	form.Email = strings.TrimSpace(form.Email)
	if err := validation.Struct(form); err != nil {
		return err
	}

	var out struct {
		Token string `json:"token"`
	}
	err := s.guard.Run(inflight.Op("signin", form.Email), func() error {
		return s.post(ctx, PathSignIn, form, &out)
	})
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	if out.Token == "" {
		return fmt.Errorf("sign in: response carries no token")
	}

	if err := s.session.Set(out.Token); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	// Another user's cart and orders must not be served from the cache.
	s.dropUserData(ctx)

	s.logger.Info().Str("email", form.Email).Msg("Signed in")
	return nil
}

// LogOut forgets the token and the user's cached cart and orders.
func (s *Service) LogOut(ctx context.Context) error {
	if err := s.session.Clear(); err != nil {
		return fmt.Errorf("log out: %w", err)
	}
	s.dropUserData(ctx)
	s.logger.Info().Msg("Signed out")
	return nil
}

func (s *Service) dropUserData(ctx context.Context) {
	if err := s.loader.Invalidate(context.WithoutCancel(ctx), cache.PartitionCart, cache.PartitionOrders); err != nil {
		s.logger.Warn().Err(err).Msg("User cache invalidation failed")
	}
}

func (s *Service) post(ctx context.Context, path string, body, out any) error {
	return client.SendJSON(ctx, s.client, client.Request{
		Method:    http.MethodPost,
		Path:      path,
		Body:      body,
		Anonymous: true,
	}, out)
}
