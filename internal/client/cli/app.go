package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/client/config"
	"github.com/dmitrijs2005/docvault/internal/client/documents"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/client/secretstore"
	"github.com/dmitrijs2005/docvault/internal/client/session"
	"github.com/dmitrijs2005/docvault/internal/filex"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// sessionService is the part of *session.Session the CLI uses.
type sessionService interface {
	Hydrate(ctx context.Context) error
	Authenticated() bool
	Login(ctx context.Context, email, password string) (models.TokenPair, error)
	Register(ctx context.Context, email, password, displayName string) (models.TokenPair, error)
	LoginWithGoogle(ctx context.Context, idToken string) (models.TokenPair, error)
	Logout(ctx context.Context) error
}

// documentService is the part of *documents.Client the CLI uses.
type documentService interface {
	Create(ctx context.Context, in models.CreateDocumentRequest) (models.Document, error)
	Get(ctx context.Context, id string) (models.Document, error)
	Search(ctx context.Context, q models.SearchQuery) ([]models.Document, error)
	Versions(ctx context.Context, id string) ([]models.DocumentVersion, error)
	UploadFile(ctx context.Context, id string, f documents.File) (models.UploadedFile, error)
	ExpiringSoon(ctx context.Context) ([]models.ExpiringSoon, error)
}

type App struct {
	config   *config.Config
	session  sessionService
	docs     documentService
	stateFn  func() string
	metrics  prometheus.Gatherer
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	closeFn  func() error
	userName string
}

// NewApp opens the secret store and wires the session and documents client.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, c.LogLevel)

	if filex.IsFilePath(c.SecretsDSN) {
		if _, err := filex.EnsureParentDir(c.SecretsDSN); err != nil {
			return nil, err
		}
	}

	db, err := secretstore.OpenSQLite(ctx, c.SecretsDSN)
	if err != nil {
		return nil, err
	}

	var store secretstore.Store = db
	if c.SecretsPassphrase != "" {
		sealed, err := secretstore.NewSealedStore(ctx, db, []byte(c.SecretsPassphrase))
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("unlock secrets: %w", err)
		}
		store = sealed
	}

	reg := prometheus.NewRegistry()
	metrics, err := session.NewMetrics(reg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	auth := client.NewAuthClient(c.ServerURL, &http.Client{Timeout: c.RequestTimeout}, logger)
	s := session.New(auth, store, session.WithLogger(logger), session.WithMetrics(metrics))
	docs := documents.New(c.ServerURL, &http.Client{Transport: s.Transport(), Timeout: c.RequestTimeout})

	return &App{
		config:  c,
		session: s,
		docs:    docs,
		stateFn: func() string { return s.Coordinator().State().String() },
		metrics: reg,
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closeFn: db.Close,
	}, nil
}

// Run restores the stored session and runs the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.closeFn != nil {
			if err := a.closeFn(); err != nil {
				a.logger.Error(ctx, "close secret store", "error", err)
			}
		}
	}()

	printlnFn("Welcome to docvault CLI (type 'help' for commands)")
	if err := a.session.Hydrate(ctx); err != nil {
		printlnFn("Could not restore the previous session:", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session.Authenticated()
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return ""
	}
	s := "logged in"
	if a.userName != "" {
		s = a.userName
	}
	return "(" + s + ")"
}

func (a *App) output() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

// Status prints the authentication state and the session counters.
func (a *App) Status(ctx context.Context) error {
	w := a.output()

	if a.isLoggedIn() {
		fmt.Fprintln(w, "Authenticated")
	} else {
		fmt.Fprintln(w, "Not logged in")
	}
	if a.config != nil {
		fmt.Fprintln(w, "Server:", a.config.ServerURL)
	}
	if a.stateFn != nil {
		fmt.Fprintln(w, "Renewal:", a.stateFn())
	}

	if a.metrics == nil {
		return nil
	}
	families, err := a.metrics.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
		}
	}
	return nil
}
