package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/handiism/xenocanto-downloader/internal/cache"
	"github.com/handiism/xenocanto-downloader/internal/config"
	"github.com/handiism/xenocanto-downloader/internal/download"
	"github.com/handiism/xenocanto-downloader/internal/http"
	"github.com/handiism/xenocanto-downloader/internal/model"
	"github.com/handiism/xenocanto-downloader/internal/query"
	"github.com/handiism/xenocanto-downloader/internal/xenocanto"
)

func main() {
	// Command line flags
	var (
		queryFlag    = flag.String("query", "", "Search query, e.g. 'gen:Troglodytes cnt:spain q:>C'")
		idsFlag      = flag.String("ids", "", "Catalogue numbers to fetch (comma-separated, XC prefix optional)")
		rangeFlag    = flag.String("range", "", "Catalogue number range to fetch, e.g. 100-200")
		sampleFlag   = flag.Int("sample", 0, "Fetch N recordings sampled at random from the catalogue")
		limitFlag    = flag.Int("limit", 0, "Stop after this many search results (0 = no limit)")
		rangedFlag   = flag.Bool("ranged", false, "Resolve -ids with page-sized range queries instead of one request per number")
		keyFlag      = flag.String("key", "", "API key (overrides config)")
		outputFlag   = flag.String("output", "", "Output directory (overrides config)")
		configFlag   = flag.String("config", "", "Path to config file")
		groupFlag    = flag.String("group", "", "Directory layout: flat, species or recordist (overrides config)")
		namingFlag   = flag.String("naming", "", "File naming: catalogue or original (overrides config)")
		playlistFlag = flag.Bool("playlist", false, "Create playlist file")
		sonogramFlag = flag.Bool("sonograms", false, "Save sonogram images next to the audio")
		noCacheFlag  = flag.Bool("no-cache", false, "Skip the response cache")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag   = flag.Bool("dry-run", false, "List matching recordings without downloading")
	)

	flag.Parse()

	// CLI mode - require a query source
	queryArg := *queryFlag
	if queryArg == "" && flag.NArg() > 0 {
		queryArg = strings.Join(flag.Args(), " ")
	}
	if queryArg == "" && *idsFlag == "" && *rangeFlag == "" && *sampleFlag == 0 {
		fmt.Println("xeno-canto Downloader - Download wildlife recordings from xeno-canto.org")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  xc-dl -query <QUERY> [options]")
		fmt.Println("  xc-dl <QUERY> [options]")
		fmt.Println("  xc-dl -ids XC694038,694039 [options]")
		fmt.Println("  xc-dl -range 694000-694100 [options]")
		fmt.Println("  xc-dl -sample 10 [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: xc-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	settings, err := config.Load(configPath(*configFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	if *keyFlag != "" {
		settings.APIKey = *keyFlag
	}
	if settings.APIKey == "" {
		settings.APIKey = os.Getenv("XENO_CANTO_KEY")
	}
	if *outputFlag != "" {
		settings.DownloadsPath = *outputFlag
	}
	if *groupFlag != "" {
		settings.Grouping = *groupFlag
	}
	if *namingFlag != "" {
		settings.Naming = *namingFlag
	}
	if *playlistFlag {
		settings.CreatePlaylist = true
	}
	if *sonogramFlag {
		settings.SaveSonograms = true
	}
	if *noCacheFlag {
		settings.CacheEnabled = false
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	fmt.Println("🐦 xeno-canto Downloader")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	httpClient := newHTTPClient(settings)
	client, err := newAPIClient(settings, httpClient)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	recordings, err := fetchRecordings(ctx, client, queryArg, *idsFlag, *rangeFlag, *sampleFlag, *limitFlag, *rangedFlag)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nCancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(recordings) == 0 {
		fmt.Println("No recordings matched.")
		return
	}

	fmt.Printf("Found %d recording(s)\n", len(recordings))

	if *dryRunFlag {
		fmt.Println("\n[Dry run - not downloading]")
		for _, rec := range recordings {
			fmt.Printf("  %s  %s (%s)\n", rec.CatalogueNumber(), rec.Title(), rec.Recordist)
		}
		return
	}

	// Create manager with progress callback
	opts := downloadOptions(settings)
	manager := download.NewManager(opts, httpClient, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "❌ "
		case download.LevelWarning:
			prefix = "⚠️  "
		case download.LevelSuccess:
			prefix = "✅ "
		case download.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	})
	manager.Add(recordings...)

	// Start downloads
	fmt.Println("\n📥 Starting downloads...")
	fmt.Println()

	if err := manager.StartDownloads(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nDownload cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during download: %v\n", err)
		os.Exit(1)
	}

	received, total, filesReceived, filesTotal := manager.GetProgress()
	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✨ Complete! Downloaded %d/%d files (%.2f MB)\n", filesReceived, filesTotal, float64(received)/1024/1024)
	if total > 0 && received < total {
		fmt.Printf("   (%.2f MB expected)\n", float64(total)/1024/1024)
	}
}

func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return config.DefaultPath()
}

func newHTTPClient(settings *config.Settings) *http.Client {
	opts := []http.Option{
		http.WithRateLimit(settings.RequestsPerSecond, settings.RequestBurst),
	}
	if settings.CacheEnabled && os.MkdirAll(settings.CacheDir, 0755) == nil {
		dbPath := filepath.Join(settings.CacheDir, "responses.db")
		maxAge := time.Duration(settings.CacheMaxAgeHours) * time.Hour
		if store, err := cache.Open(dbPath, maxAge); err == nil {
			opts = append(opts, http.WithCache(store))
		}
	}
	return http.NewClient(opts...)
}

func newAPIClient(settings *config.Settings, httpClient *http.Client) (*xenocanto.Client, error) {
	return xenocanto.NewClient(settings.APIKey,
		xenocanto.WithTransport(httpClient),
		xenocanto.WithPageSize(settings.PageSize),
		xenocanto.WithWorkers(settings.MaxWorkers),
		xenocanto.WithWarningHandler(func(msg string) {
			fmt.Println("⚠️  " + msg)
		}))
}

// fetchRecordings runs whichever fetch mode the flags selected.
func fetchRecordings(ctx context.Context, client *xenocanto.Client, queryArg, idsArg, rangeArg string, sampleN, limit int, ranged bool) ([]*model.Recording, error) {
	switch {
	case queryArg != "":
		q, err := query.Parse(queryArg)
		if err != nil {
			return nil, err
		}
		fmt.Printf("🔍 Searching: %s\n", queryArg)
		return client.SearchAll(ctx, q, limit)

	case idsArg != "":
		raw := strings.FieldsFunc(idsArg, func(r rune) bool {
			return r == ',' || r == ' '
		})
		strategy := xenocanto.StrategyScatter
		if ranged {
			strategy = xenocanto.StrategyRange
		}
		fmt.Printf("🔍 Resolving %d catalogue number(s)\n", len(raw))
		res, err := client.ResolveIDs(ctx, raw, strategy)
		if err != nil {
			return nil, err
		}
		return res.Records, nil

	case rangeArg != "":
		from, to, err := parseRange(rangeArg)
		if err != nil {
			return nil, err
		}
		fmt.Printf("🔍 Fetching XC%d through XC%d\n", from, to)
		res, err := client.ResolveRange(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return res.Records, nil

	default:
		fmt.Printf("🎲 Sampling %d recording(s)\n", sampleN)
		return client.Sample(ctx, sampleN)
	}
}

func parseRange(arg string) (int64, int64, error) {
	first, second, ok := strings.Cut(arg, "-")
	if !ok {
		return 0, 0, fmt.Errorf("range must look like 100-200, got %q", arg)
	}
	from, err := model.ParseRecordingID(first)
	if err != nil {
		return 0, 0, err
	}
	to, err := model.ParseRecordingID(second)
	if err != nil {
		return 0, 0, err
	}
	if from > to {
		from, to = to, from
	}
	return from, to, nil
}

func downloadOptions(settings *config.Settings) download.Options {
	opts := download.DefaultOptions(settings.DownloadsPath)
	opts.Grouping = settings.GroupingMode()
	opts.Naming = settings.NamingMode()
	opts.MaxConcurrent = settings.MaxConcurrentDownloads
	opts.MaxRetries = settings.DownloadMaxRetries
	opts.RetryCooldown = settings.DownloadRetryCooldown
	opts.RetryExponent = settings.DownloadRetryExponent
	opts.ModifyTags = settings.ModifyTags
	opts.SaveSonograms = settings.SaveSonograms
	opts.SonogramResize = settings.SonogramResize
	opts.SonogramMaxSize = settings.SonogramMaxSize
	opts.ConvertSonogramToJPG = settings.ConvertSonogramToJPG
	opts.CreatePlaylist = settings.CreatePlaylist
	opts.PlaylistFormat = settings.PlaylistFormatMode()
	opts.M3UExtended = settings.M3UExtended
	return opts
}
