package command

// root.go defines the recipectl root command and the state every
// subcommand shares: the API URL and the session keyring entry.

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/recipe-share/internal/client"
	"github.com/sakif/recipe-share/internal/session"
)

const defaultAPIURL = "http://localhost:8080"

var errNotSignedIn = errors.New("not signed in; run `recipectl login` first")

// app carries the global flags into the subcommands.
type app struct {
	apiURL     string
	sessionKey string
	store      *session.Store
}

// NewRootCmd builds a fresh command tree. Tests build one per run so flag
// values never leak between them.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "recipectl",
		Short: "recipectl - browse and save recipes from the terminal",
		Long: `recipectl talks to a recipe-share server. Use it to:
- Search published recipes by name, category, cuisine, difficulty, time and ingredients
- Show a recipe with its ingredients and steps
- Look up ingredient names
- Save recipes to your favorites

Use "recipectl <command> --help" to see the flags of each command.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.store = session.NewStore(a.sessionKey)
		},
	}

	apiDefault := defaultAPIURL
	if env := os.Getenv("RECIPESHARE_API"); env != "" {
		apiDefault = env
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api", apiDefault, "API server URL (env RECIPESHARE_API)")
	root.PersistentFlags().StringVar(&a.sessionKey, "session-key", session.DefaultKey, "keyring entry holding the session; use one per account")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.searchCmd(),
		a.showCmd(),
		a.suggestCmd(),
		a.favoriteCmd(),
	)
	return root
}

// Execute runs the CLI. Called once by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// currentSession returns the saved session, or nil when signed out.
func (a *app) currentSession() (*session.Session, error) {
	sess, err := a.store.Load()
	if errors.Is(err, session.ErrNoSession) {
		return nil, nil
	}
	return sess, err
}

func (a *app) requireSession() (*session.Session, error) {
	sess, err := a.currentSession()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errNotSignedIn
	}
	return sess, nil
}

// client talks to the server the session was created against unless --api
// was given explicitly, and signs requests when sess is non-nil.
func (a *app) client(cmd *cobra.Command, sess *session.Session) *client.Client {
	base := a.apiURL
	if sess != nil && sess.Server != "" && !cmd.Flags().Changed("api") {
		base = sess.Server
	}
	if sess == nil {
		return client.New(base)
	}
	return client.New(base, client.WithToken(sess.Token))
}

// signedOutIfRejected drops a session the server no longer accepts.
func (a *app) signedOutIfRejected(err error) error {
	if client.IsUnauthorized(err) {
		if clearErr := a.store.Clear(); clearErr != nil {
			return clearErr
		}
		return fmt.Errorf("session expired; run `recipectl login` again")
	}
	return err
}
