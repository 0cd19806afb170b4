package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newfriends/dblayer"
	"newfriends/healthz"
	"newfriends/httpmetrics"
	"newfriends/photocache"
	"newfriends/roster"
	"newfriends/webui"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"contrib.go.opencensus.io/exporter/stackdriver"
	"github.com/dgraph-io/badger"
	"github.com/golang/glog"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

var (
	debugListen   = flag.String("debug-listen", "127.0.0.1:8001", "Server address:port for debug endpoint.")
	uiListen      = flag.String("ui-listen", "127.0.0.1:8000", "Server address:port for ui endpoint.")
	dataProject   = flag.String("data-project", "", "GCP project that contains the application state.")
	photoBucket   = flag.String("photo-bucket", "", "GCS bucket that holds member photos.")
	cacheDir      = flag.String("cache-dir", "/var/lib/newfriends/cache", "Directory for the photo URL cache snapshot.")
	account       = flag.String("account", "", "Shared staff account used for sign-in.")
	webAPIKey     = flag.String("web-api-key", "", "Identity Toolkit API key for password verification.")
	enableMetrics = flag.Bool("enable-metrics", false, "")
)

func main() {
	flag.Parse()

	glog.Infof("flags:")
	glog.Infof("debug-listen: %v", *debugListen)
	glog.Infof("ui-listen: %v", *uiListen)
	glog.Infof("data-project: %v", *dataProject)
	glog.Infof("photo-bucket: %v", *photoBucket)
	glog.Infof("cache-dir: %v", *cacheDir)
	glog.Infof("account: %v", *account)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := do(ctx); err != nil {
		glog.Exitf("Error: %v", err)
	}
}

func do(ctx context.Context) error {
	fstore, err := firestore.NewClient(ctx, *dataProject)
	if err != nil {
		return fmt.Errorf("while creating FireStore client: %w", err)
	}

	gcs, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("while creating GCS client: %w", err)
	}

	authService, err := identitytoolkit.NewService(ctx, option.WithAPIKey(*webAPIKey))
	if err != nil {
		return fmt.Errorf("while creating Identity Toolkit client: %w", err)
	}

	kv, err := badger.Open(badger.DefaultOptions(*cacheDir))
	if err != nil {
		return fmt.Errorf("while opening cache snapshot store: %w", err)
	}
	defer kv.Close()

	blobs := photocache.NewGCSBlobStore(gcs, *photoBucket)

	photos := photocache.New(blobs, photocache.NewBadgerSnapshotStore(kv))
	if err := photos.Load(ctx); err != nil {
		// Losing the cache only costs extra URL round trips.
		glog.Errorf("Error while loading photo URL cache snapshot: %v", err)
	}

	db := dblayer.New(fstore, authService, blobs, *account)
	controller := roster.NewController(db, photos)

	if *enableMetrics {
		exporter, err := stackdriver.NewExporter(stackdriver.Options{
			MetricPrefix:      "newfriends",
			ReportingInterval: 60 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("while initializing metrics: %w", err)
		}
		exporter.StartMetricsExporter()
		defer exporter.Flush()
		defer exporter.StopMetricsExporter()
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

	ui := webui.New(db, controller, photos)
	uiServeMux := http.NewServeMux()
	ui.Register(uiServeMux)

	metrics := httpmetrics.New(uiServeMux)
	metrics.RegisterMetrics()

	uiServer := &http.Server{
		Addr:    *uiListen,
		Handler: metrics,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := debugServer.ListenAndServe(); err != nil {
			glog.Fatalf("Debug server died: %v", err)
		}
	}()

	go func() {
		if err := uiServer.ListenAndServe(); err != nil {
			glog.Fatalf("UI server died: %v", err)
		}
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	<-signalCh

	glog.Flush()

	return nil
}
