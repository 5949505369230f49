/*
Purpose:
- dem chunk service

Description:
- Bakes planetary-scale DEM mosaics into quantized half-precision elevation chunks
  and serves elevation queries (point, profile, GPX) from a baked chunk set.

Releases:
- v1.0.0 - 2026-08-23: initial release

Remarks:
- Usage 'bake' mode : dem-chunk-service bake
- Usage 'serve' mode : dem-chunk-service serve
- Elevation values are stored as half-precision fractions of the dataset's
  maximum elevation; expect a relative quantization error of about 1/2048.

Links:
- https://pkg.go.dev/github.com/airbusgeo/godal
- https://pkg.go.dev/github.com/fxamacker/cbor/v2
- https://pkg.go.dev/github.com/maypok86/otter/v2
- https://pkg.go.dev/github.com/tkrajina/gpxgo/gpx
- https://pkg.go.dev/github.com/x448/float16
- https://pkg.go.dev/gopkg.in/yaml.v3
- https://pkg.go.dev/gopkg.in/natefinch/lumberjack.v2
*/

// main package
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"
)

// general program info
var (
	progName    = strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(filepath.Base(os.Args[0])))
	progVersion = "v1.0.0"
	progDate    = "2026-08-23"
	progPurpose = "dem chunk service"
	progInfo    = "Bakes DEM mosaics into quantized elevation chunks and serves elevation queries from them."
)

// ServeConfig defines the 'serve' mode configuration.
type ServeConfig struct {
	Dataset        string `yaml:"Dataset"`        // registry name of the served dataset
	ChunkDirectory string `yaml:"ChunkDirectory"` // directory with baked chunk files
	ChunkCacheSize int    `yaml:"ChunkCacheSize"` // number of chunks kept in memory
}

// ProgConfig defines program configuration
type ProgConfig struct {
	ListenAddress       string         `yaml:"ListenAddress"`
	ServerCertificate   string         `yaml:"ServerCertificate"`
	ServerKey           string         `yaml:"ServerKey"`
	ShutdownGracePeriod int            `yaml:"ShutdownGracePeriod"`
	LogDirectory        string         `yaml:"LogDirectory"`
	LogLevel            string         `yaml:"LogLevel"`
	Datasets            []DatasetEntry `yaml:"Datasets"`
	Bake                BakeConfig     `yaml:"Bake"`
	Serve               ServeConfig    `yaml:"Serve"`
}

// progConfig represents program configuration
var progConfig ProgConfig

// store represents the chunk store of the served dataset ('serve' mode only)
var store *chunkStore

// statistics
var (
	PointRequests            uint64
	ElevationProfileRequests uint64
	GPXRequests              uint64
	GPXPoints                uint64
	DEMPoints                uint64
	DatasetsRequests         uint64
)

/*
main starts this program.
*/
func main() {
	// verify run mode
	if len(os.Args) != 2 || (os.Args[1] != "bake" && os.Args[1] != "serve") {
		fmt.Fprintf(os.Stderr, "usage: %s {bake|serve}\n", progName)
		os.Exit(1)
	}
	runMode := os.Args[1]

	// load program configuration
	progConfigFile := progName + ".yaml"
	source, err := os.ReadFile(progConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration file not found, file = [%s]\n", progConfigFile)
		fmt.Fprintf(os.Stderr, "error [%v] at os.ReadFile()\n", err)
		os.Exit(1)
	}
	err = yaml.Unmarshal(source, &progConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration file invalid, file = [%s]\n", progConfigFile)
		fmt.Fprintf(os.Stderr, "error [%v] at yaml.Unmarshal()\n", err)
		os.Exit(1)
	}

	// logging: replacer for logging objects
	replacer := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == slog.SourceKey {
			source := a.Value.Any().(*slog.Source)   // get source object
			source.File = filepath.Base(source.File) // basepath only
		}
		if a.Key == slog.TimeKey {
			return slog.String("time", a.Value.Time().Format(time.RFC3339Nano)) // local time -> RFC3339Nano
		}
		return a
	}

	// logging: log file output and rotate (with lumberjack package)
	logrotateStartYearDay := time.Now().UTC().YearDay()
	logfile := filepath.Join(progConfig.LogDirectory, progName+".log")
	lumberjackLogger := &lumberjack.Logger{
		Filename: logfile,
		MaxSize:  128,  // megabytes
		MaxAge:   28,   // days
		Compress: true, // gzip rotated log
	}

	// log level
	logLevel := new(slog.LevelVar)
	logLevel.Set(parseLogLevel(progConfig.LogLevel))

	// define logger
	logger := slog.New(slog.NewJSONHandler(lumberjackLogger, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: true, ReplaceAttr: replacer}).WithAttrs([]slog.Attr{slog.String("prog", progName)}))
	slog.SetDefault(logger)

	// log program start
	slog.Info(progPurpose+" started", "name", progName, "version", progVersion, "date", progDate,
		"info", progInfo, "mode", runMode, "command line", os.Args)
	jsonData, _ := json.MarshalIndent(progConfig, "", "  ") // encode to JSON for readability
	slog.Info("content of configuration file", "configuration file", progConfigFile, "content", string(jsonData))

	// build global dataset registry
	err = buildRegistry(progConfig.Datasets)
	if err != nil {
		slog.Error("error building dataset registry", "error", err)
		os.Exit(1)
	}

	// save global dataset registry
	err = saveRegistry()
	if err != nil {
		slog.Error("error saving dataset registry", "error", err)
		os.Exit(1)
	}

	// 'bake' mode: run the ingestion pipeline and exit
	if runMode == "bake" {
		err = runBake()
		if err != nil {
			slog.Error("error baking chunks", "error", err)
			os.Exit(1)
		}
		slog.Info("bake gracefully finished")
		return
	}

	// 'serve' mode: build the chunk store for the served dataset
	entry, err := getDatasetEntry(progConfig.Serve.Dataset)
	if err != nil {
		slog.Error("error resolving served dataset", "error", err, "dataset", progConfig.Serve.Dataset)
		os.Exit(1)
	}
	store, err = newChunkStore(entry, progConfig.Serve.ChunkDirectory, progConfig.Serve.ChunkCacheSize)
	if err != nil {
		slog.Error("error building chunk store", "error", err)
		os.Exit(1)
	}

	// define routes
	http.HandleFunc("POST /v1/point", pointRequest)
	http.HandleFunc("OPTIONS /v1/point", corsOptionsHandler)

	http.HandleFunc("POST /v1/elevationprofile", elevationprofileRequest)
	http.HandleFunc("OPTIONS /v1/elevationprofile", corsOptionsHandler)

	http.HandleFunc("POST /v1/gpx", gpxRequest)
	http.HandleFunc("OPTIONS /v1/gpx", corsOptionsHandler)

	http.HandleFunc("GET /v1/datasets", datasetsRequest)
	http.HandleFunc("OPTIONS /v1/datasets", corsOptionsHandler)

	// handle unsupported routes or methods
	http.HandleFunc("/", unsupportedRequest)

	// define service
	DemChunkService := &http.Server{
		Addr:              progConfig.ListenAddress,
		Handler:           nil,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       120 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	// get hostname
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	// create service
	go func() {
		slog.Info("dem chunk service listening for requests", "ListenAddress", progConfig.ListenAddress,
			"hostname", hostname, "dataset", entry.Name)
		var err error
		if progConfig.ServerCertificate != "" && progConfig.ServerKey != "" {
			err = DemChunkService.ListenAndServeTLS(progConfig.ServerCertificate, progConfig.ServerKey)
		} else {
			err = DemChunkService.ListenAndServe()
		}
		if err != nil {
			if err != http.ErrServerClosed {
				slog.Error("error at DemChunkService.ListenAndServe()", "error", err)
				os.Exit(1)
			}
		}
	}()

	// start rotate trigger (checks, if log rotate is required)
	rotateTrigger := time.Tick(time.Second * 60)

	// start shutdown trigger and subscribe to shutdown signals
	shutdownTrigger := make(chan os.Signal, 1)
	signal.Notify(shutdownTrigger, syscall.SIGINT)  // kill -SIGINT pid -> interrupt
	signal.Notify(shutdownTrigger, syscall.SIGTERM) // kill -SIGTERM pid -> terminated

ForeverLoop:
	for {
		// wait for log rotate or shutdown trigger
		select {
		case <-rotateTrigger:
			logrotateCurrentYearDay := time.Now().UTC().YearDay()
			if logrotateCurrentYearDay != logrotateStartYearDay {
				slog.Info("new day detected, log rotate triggered")
				err := lumberjackLogger.Rotate()
				if err != nil {
					slog.Error("error at lumberjackLogger.Rotate()", "error", err)
				}
				logrotateStartYearDay = logrotateCurrentYearDay
				logStatistics()
			}
		case sig := <-shutdownTrigger:
			// initiate shutdown
			slog.Info("signal received, shutting down dem chunk service", "signal", sig)
			break ForeverLoop
		}
	}

	// shutdown grace period (wait max n seconds before halting)
	gracePeriod := time.Duration(progConfig.ShutdownGracePeriod) * time.Second

	// shutdown service
	ctx, cancel := context.WithTimeout(context.Background(), gracePeriod)
	defer cancel()
	err = DemChunkService.Shutdown(ctx)
	if err != nil {
		slog.Error("fatal error at DemChunkService.Shutdown()", "error", err)
	}

	// log program end
	logStatistics()
	slog.Info("service gracefully shut down")
}

/*
logStatistics logs statistics.
*/
func logStatistics() {
	// read statistics
	currentPointRequests := atomic.LoadUint64(&PointRequests)
	currentElevationProfileRequests := atomic.LoadUint64(&ElevationProfileRequests)
	currentGPXRequests := atomic.LoadUint64(&GPXRequests)
	currentGPXPoints := atomic.LoadUint64(&GPXPoints)
	currentDEMPoints := atomic.LoadUint64(&DEMPoints)
	currentDatasetsRequests := atomic.LoadUint64(&DatasetsRequests)

	// reset statistics
	atomic.StoreUint64(&PointRequests, 0)
	atomic.StoreUint64(&ElevationProfileRequests, 0)
	atomic.StoreUint64(&GPXRequests, 0)
	atomic.StoreUint64(&GPXPoints, 0)
	atomic.StoreUint64(&DEMPoints, 0)
	atomic.StoreUint64(&DatasetsRequests, 0)

	// log statistics
	slog.Info("load statistics",
		"PointRequests", currentPointRequests,
		"ElevationProfileRequests", currentElevationProfileRequests,
		"GPXRequests", currentGPXRequests,
		"GPXPoints", currentGPXPoints,
		"DEMPoints", currentDEMPoints,
		"DatasetsRequests", currentDatasetsRequests,
	)
}

/*
parseLogLevel parses log level setting from configuration.
*/
func parseLogLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
