package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/auth"
)

func newSignupCmd(getApp func() *app, out *printer) *cobra.Command {
	var form auth.SignupForm

	cmd := &cobra.Command{
		Use:     "signup",
		Short:   "Create an account",
		GroupID: "account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if form.Password == "" {
				pass, err := readPassword(cmd, "Password: ")
				if err != nil {
					return err
				}
				confirm, err := readPassword(cmd, "Confirm password: ")
				if err != nil {
					return err
				}
				form.Password, form.ConfirmPassword = pass, confirm
			} else if form.ConfirmPassword == "" {
				form.ConfirmPassword = form.Password
			}

			msg, err := getApp().auth.SignUp(cmd.Context(), form)
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Account created"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			fmt.Fprintf(cmd.OutOrStdout(), "Confirm with: neostore confirm-email --email %s --otp <code>\n", form.Email)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&form.Name, "name", "", "full name")
	fl.StringVar(&form.Email, "email", "", "email address")
	fl.StringVar(&form.Password, "password", "", "password (prompted when omitted)")
	fl.StringVar(&form.ConfirmPassword, "confirm-password", "", "password confirmation")
	fl.StringVar(&form.Phone, "phone", "", "mobile number (01XXXXXXXXX)")
	fl.StringVar(&form.DOB, "dob", "", "date of birth (YYYY-MM-DD)")
	fl.StringVar(&form.Gender, "gender", "", "male or female")
	fl.StringVar(&form.Address, "address", "", "address")
	return cmd
}

func newConfirmEmailCmd(getApp func() *app, out *printer) *cobra.Command {
	var email, otp string

	cmd := &cobra.Command{
		Use:     "confirm-email",
		Short:   "Confirm an account with the emailed OTP",
		GroupID: "account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := getApp().auth.ConfirmEmail(cmd.Context(), email, otp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Email confirmed successfully!")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time code")
	return cmd
}

func newSigninCmd(getApp func() *app, out *printer) *cobra.Command {
	var form auth.LoginForm

	cmd := &cobra.Command{
		Use:     "signin",
		Short:   "Sign in and remember the session",
		GroupID: "account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if form.Password == "" {
				pass, err := readPassword(cmd, "Password: ")
				if err != nil {
					return err
				}
				form.Password = pass
			}
			if err := getApp().auth.SignIn(cmd.Context(), form); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed in")
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(getApp func() *app, out *printer) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Forget the session",
		GroupID: "account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := getApp().auth.LogOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

type whoami struct {
	SignedIn  bool       `json:"signedIn"`
	Subject   string     `json:"subject,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired,omitempty"`
}

func newWhoamiCmd(getApp func() *app, out *printer) *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Show the signed-in account",
		GroupID: "account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			w := cmd.OutOrStdout()

			info := whoami{SignedIn: a.session.SignedIn()}
			if info.SignedIn {
				claims, err := a.session.Claims()
				if err != nil {
					return err
				}
				info.Subject, info.Email, info.Role = claims.Subject, claims.Email, claims.Role
				if !claims.ExpiresAt.IsZero() {
					info.ExpiresAt = &claims.ExpiresAt
					info.Expired = claims.Expired(time.Now())
				}
			}

			if out.JSON() {
				return out.printJSON(w, info)
			}
			if !info.SignedIn {
				fmt.Fprintln(w, "Not signed in")
				return nil
			}
			fmt.Fprintf(w, "Email:   %s\n", info.Email)
			fmt.Fprintf(w, "Subject: %s\n", info.Subject)
			if info.Role != "" {
				fmt.Fprintf(w, "Role:    %s\n", info.Role)
			}
			if info.ExpiresAt != nil {
				state := "valid"
				if info.Expired {
					state = "expired"
				}
				fmt.Fprintf(w, "Expires: %s (%s)\n", info.ExpiresAt.Format(time.RFC3339), state)
			}
			return nil
		},
	}
}

// readPassword prompts without echo on a terminal and reads a line from
// stdin otherwise.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	// Read byte by byte so a second prompt still finds its line.
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				break
			}
			sb.WriteByte(buf[0])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
	}
	return strings.TrimRight(sb.String(), "\r"), nil
}
