package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"newfriends/dblayer"
	"newfriends/healthz"
	"newfriends/poller"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/sendgrid/sendgrid-go"
)

var (
	debugListen       = flag.String("debug-listen", "127.0.0.1:8001", "Server address:port for debug endpoint.")
	recheckPeriod     = flag.Duration("recheck-period", 1*time.Hour, "Time between scans")
	dataProject       = flag.String("data-project", "", "GCP project that contains the application state.")
	sendgridKeySecret = flag.String("sendgrid-key-secret", "", "GCP Secret Manager secret name that contains the Sendgrid API key")
	notifyEmails      = flag.String("notify-emails", "", "Comma-separated addresses that receive the follow-up digest")
	windowMonths      = flag.Int("window-months", 3, "Registration window, in whole months, for follow-up digests")
)

func main() {
	flag.Parse()

	slog.Info("Starting up")
	slog.Info(
		"Flags",
		slog.String("debug-listen", *debugListen),
		slog.Duration("recheck-period", *recheckPeriod),
		slog.String("data-project", *dataProject),
		slog.String("sendgrid-key-secret", *sendgridKeySecret),
		slog.String("notify-emails", *notifyEmails),
		slog.Int("window-months", *windowMonths),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := do(ctx); err != nil {
		slog.ErrorContext(ctx, "Error", slog.Any("err", err))
		os.Exit(255)
	}
}

func do(ctx context.Context) error {
	sg, err := newSendgridClient(ctx)
	if err != nil {
		return fmt.Errorf("while creating Sendgrid client: %w", err)
	}

	fstore, err := firestore.NewClient(ctx, *dataProject)
	if err != nil {
		return fmt.Errorf("while creating FireStore client: %w", err)
	}

	debugServeMux := http.NewServeMux()
	debugServeMux.Handle("/healthz", healthz.New())
	debugServeMux.Handle("/readyz", healthz.New())
	debugServeMux.HandleFunc("/debug/pprof/", pprof.Index)
	debugServeMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugServeMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugServeMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugServeMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	debugServer := &http.Server{
		Addr:    *debugListen,
		Handler: debugServeMux,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	db := dblayer.New(fstore, nil, dblayer.NoopBlobDeleter{}, "")

	p := poller.New(db, sg, *recheckPeriod, *windowMonths, strings.Split(*notifyEmails, ","))

	go func() {
		if err := debugServer.ListenAndServe(); err != nil {
			slog.ErrorContext(ctx, "Debug server died", slog.Any("err", err))
			os.Exit(255)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "Poller stopped", slog.Any("err", err))
		}
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	<-signalCh

	return nil
}

func newSendgridClient(ctx context.Context) (*sendgrid.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	secretClient, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("while creating Secret Manager client: %w", err)
	}
	defer secretClient.Close()

	resp, err := secretClient.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", *dataProject, *sendgridKeySecret),
	})
	if err != nil {
		return nil, fmt.Errorf("while pulling secret: %w", err)
	}

	return sendgrid.NewSendClient(string(resp.GetPayload().GetData())), nil
}
