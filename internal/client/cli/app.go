package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/askgita/askgita/internal/client/api"
	"github.com/askgita/askgita/internal/client/auth"
	"github.com/askgita/askgita/internal/client/config"
	"github.com/askgita/askgita/internal/client/controller"
	"github.com/askgita/askgita/internal/client/history"
	"github.com/askgita/askgita/internal/client/quota"
	"github.com/askgita/askgita/internal/client/session"
	"github.com/askgita/askgita/internal/client/store"
	"github.com/askgita/askgita/internal/client/voice"
	"github.com/askgita/askgita/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the client components together and owns the interactive loop.
type App struct {
	config *config.Config
	ctrl   *controller.Controller
	gate   *auth.Gate
	hist   *history.Service
	voice  *voice.Coordinator
	api    api.Client
	kv     *store.SQLiteStore
	log    logging.Logger
	reader *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewDefault()

	kv, err := store.Open(ctx, c.CacheDSN)
	if err != nil {
		log.Error(ctx, "error initializing local cache", "err", err)
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.ServerURL)

	sess := session.New(kv)
	q := quota.New(kv)
	gate := auth.NewGate(apiClient, kv, sess, q, log)
	apiClient.SetCredentialFunc(gate.Credentials)

	hist := history.NewService(apiClient, gate, log)

	// No platform speech engine ships with the terminal client; the
	// coordinator degrades every voice operation to a no-op.
	vc := voice.NewCoordinator(nil, kv, log)

	ctrl := controller.New(gate, sess, q, hist, vc, apiClient, log)
	ctrl.SetLanguage(c.Language)

	return &App{
		config: c,
		ctrl:   ctrl,
		gate:   gate,
		hist:   hist,
		voice:  vc,
		api:    apiClient,
		kv:     kv,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()
	defer a.kv.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.gate.Authenticated()
}
