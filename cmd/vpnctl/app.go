package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	clog "github.com/charmbracelet/log"

	"vpn-client/pkg/api"
	"vpn-client/pkg/attest"
	"vpn-client/pkg/config"
	"vpn-client/pkg/diagnostics"
	"vpn-client/pkg/events"
	"vpn-client/pkg/logbuf"
	"vpn-client/pkg/probe"
	"vpn-client/pkg/session"
	"vpn-client/pkg/speedtest"
	"vpn-client/pkg/store"
	"vpn-client/pkg/subscription"
)

// app is the composition root shared by all commands.
type app struct {
	cfg     config.Config
	buf     *logbuf.Buffer
	client  *api.Client
	session *session.Session
	store   store.Store
	events  *events.Client
	subs    *subscription.Notifier
	diag    *diagnostics.Notifier
	speed   *speedtest.Service
	prober  *probe.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	opts := []logbuf.Option{logbuf.WithCapacity(cfg.LogCapacity)}
	if verboseFlag {
		sink := clog.NewWithOptions(os.Stderr, clog.Options{
			ReportTimestamp: true,
			Level:           clog.DebugLevel,
		})
		opts = append(opts, logbuf.WithSink(sink))
	}
	buf := logbuf.New(opts...)

	var tokenStore session.Store
	if ks, err := session.OpenKeyring(cfg.DataDir); err == nil {
		tokenStore = ks
	} else {
		buf.Warning("keyring unavailable, falling back to encrypted file store", map[string]any{"error": err.Error()})
		tokenStore = session.NewFileStore(cfg.DataDir)
	}
	sess := session.New(tokenStore)

	var st store.Store
	if db, err := store.NewSQLiteStore(filepath.Join(cfg.DataDir, "client.db")); err == nil {
		st = db
	} else {
		buf.Warning("local database unavailable, history will not persist", map[string]any{"error": err.Error()})
		st = store.NewMemoryStore()
	}

	httpClient, err := api.BuildHTTPClient("", cfg.RequestTimeout, false)
	if err != nil {
		st.Close()
		return nil, err
	}
	client := api.NewClient(cfg.APIBaseURL, buf,
		api.WithTokenSource(sess),
		api.WithPlanCache(st),
		api.WithHTTPClient(httpClient),
	)

	ev := events.NewClient(cfg.WSURL, sess, buf)
	subs := subscription.NewNotifier(client, buf,
		subscription.WithAttestor(attest.NewClient(cfg.APIBaseURL)),
	)
	subs.BindEvents(ev)

	speed := speedtest.NewService(
		cfg.SpeedTest.DownloadURL,
		cfg.SpeedTest.UploadURL,
		cfg.SpeedTest.PingHost,
		cfg.SpeedTest.PingSamples,
		st, buf,
	)
	prober := probe.NewService(cfg.APIBaseURL, apiHost(cfg.APIBaseURL), cfg.WGInterface, cfg.SpeedTest.PingHost)
	diag := diagnostics.NewNotifier(speed, prober, buf)

	return &app{
		cfg:     cfg,
		buf:     buf,
		client:  client,
		session: sess,
		store:   st,
		events:  ev,
		subs:    subs,
		diag:    diag,
		speed:   speed,
		prober:  prober,
	}, nil
}

func (a *app) close() {
	a.events.Close()
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "closing local store: %v\n", err)
	}
}

func apiHost(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "example.com"
	}
	return u.Hostname()
}
