package cli

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stargraph/pkg/integrations/github"
	"github.com/matzehuels/stargraph/pkg/session"
)

// githubCommand creates the github command with subcommands.
func (c *CLI) githubCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "github",
		Short: "Manage GitHub credentials",
		Long: `Authenticate with GitHub so stargraph can query the GraphQL API.

The GraphQL API does not accept anonymous requests. Set GITHUB_TOKEN, put a
token in the [github] section of the config file, or log in with the device
flow. The device-flow session is stored in ~/.config/stargraph/sessions/`,
	}

	cmd.AddCommand(c.githubLoginCommand())
	cmd.AddCommand(c.githubLogoutCommand())
	cmd.AddCommand(c.githubWhoamiCommand())

	return cmd
}

// githubLoginCommand creates the login subcommand.
func (c *CLI) githubLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with GitHub using device flow",
		Long: `Start the GitHub device authorization flow.

You'll be given a code to enter at https://github.com/login/device.
Once authorized, your session will be saved locally for future commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if existing, _ := loadGitHubSession(ctx); existing != nil {
				printInfo("Already logged in as @%s", existing.User.Login)
				printDetail("Run 'stargraph github logout' first to re-authenticate")
				return nil
			}

			_, err := c.runGitHubLogin(ctx)
			return err
		},
	}
}

// githubLogoutCommand creates the logout subcommand.
func (c *CLI) githubLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored GitHub credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deleteGitHubSession(cmd.Context()); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

// githubWhoamiCommand creates the whoami subcommand.
func (c *CLI) githubWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account stargraph authenticates as",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token := c.token(ctx)
			if token == "" {
				return fmt.Errorf("not logged in (set GITHUB_TOKEN or run 'stargraph github login')")
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Verifying token...")
			spinner.Start()

			client := c.newGitHubClientWithToken(token)
			user, err := client.Viewer(ctx)
			if err != nil {
				spinner.StopWithError("Token invalid")
				return fmt.Errorf("verify token: %w", err)
			}
			spinner.Stop()

			printSuccess("GitHub Account")
			printKeyValue("Username", "@"+user.Login)
			if user.Name != "" {
				printKeyValue("Name", user.Name)
			}
			if sess, _ := loadGitHubSession(ctx); sess != nil && sess.AccessToken == token {
				printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
				printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))
			} else {
				printKeyValue("Source", "token from config or environment")
			}

			return nil
		},
	}
}

// token returns the configured token, falling back to the stored session.
func (c *CLI) token(ctx context.Context) string {
	if c.Config.GitHub.Token != "" {
		return c.Config.GitHub.Token
	}
	sess, err := loadGitHubSession(ctx)
	if err != nil {
		c.Logger.Debug("no stored GitHub session", "err", err)
		return ""
	}
	return sess.AccessToken
}

// newGitHubClientWithToken builds an uncached client for one-off calls.
func (c *CLI) newGitHubClientWithToken(token string) *github.Client {
	var opts []github.Option
	if c.Config.GitHub.BaseURL != "" {
		opts = append(opts, github.WithBaseURL(c.Config.GitHub.BaseURL))
	}
	return github.NewClient(token, nil, 0, opts...)
}

// =============================================================================
// Session Management
// =============================================================================

// loadGitHubSession loads the GitHub session from disk.
func loadGitHubSession(ctx context.Context) (*session.Session, error) {
	store, err := session.NewCLIStore("")
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sess, err := store.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("not logged in (run 'stargraph github login' first)")
	}

	return sess, nil
}

func saveGitHubSession(ctx context.Context, token *github.OAuthToken, user *github.Viewer) (*session.Session, error) {
	store, err := session.NewCLIStore("")
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sess := session.New(token.AccessToken, user, session.DefaultTTL)
	if err := store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return sess, nil
}

func deleteGitHubSession(ctx context.Context) error {
	store, err := session.NewCLIStore("")
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	return store.DeleteSession(ctx)
}

// =============================================================================
// Device Flow Login
// =============================================================================

func (c *CLI) runGitHubLogin(ctx context.Context) (*session.Session, error) {
	oauthClient := github.NewOAuthClient(github.OAuthConfig{ClientID: c.Config.GitHub.ClientID})

	loginCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	deviceResp, err := oauthClient.RequestDeviceCode(loginCtx)
	if err != nil {
		return nil, fmt.Errorf("request device code: %w", err)
	}

	printNewline()
	fmt.Println(StyleTitle.Render("GitHub Device Authorization"))
	printNewline()
	printKeyValue("Code", StyleNumber.Render(deviceResp.UserCode))
	printKeyValue("URL", StyleLink.Render(deviceResp.VerificationURI))
	printNewline()

	if err := openBrowser(deviceResp.VerificationURI); err != nil {
		printDetail("Copy the URL above and paste it in your browser")
	} else {
		printDetail("Opening browser...")
	}
	printInline("Waiting for authorization...")

	token, err := oauthClient.PollForToken(loginCtx, deviceResp.DeviceCode, deviceResp.Interval)
	if err != nil {
		fmt.Println()
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	user, err := c.newGitHubClientWithToken(token.AccessToken).Viewer(loginCtx)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	sess, err := saveGitHubSession(ctx, token, user)
	if err != nil {
		return nil, err
	}

	fmt.Println()
	printSuccess("Logged in as @%s", user.Login)

	return sess, nil
}

func openBrowser(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
