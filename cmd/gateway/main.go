package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/shri-birje/Phishguard/pkg/cache"
	"github.com/shri-birje/Phishguard/pkg/config"
	"github.com/shri-birje/Phishguard/pkg/ml"
	"github.com/shri-birje/Phishguard/pkg/notify"
	"github.com/shri-birje/Phishguard/pkg/storage"
	"github.com/shri-birje/Phishguard/pkg/telemetry"
	"github.com/shri-birje/Phishguard/pkg/trust"
)

const Version = "0.1.0"

// Guard holds the scoring components.
// Everything past the engine and trusted set is optional and gracefully
// degrades when unavailable.
type Guard struct {
	engine    *ml.Engine
	trusted   *trust.Set
	blocklist *trust.Blocklist
	store     *storage.Store        // optional: requires Postgres DSN
	cache     *cache.VerdictCache   // optional: requires Redis
	notifier  *notify.Notifier      // optional: requires webhook URL
	counters  telemetry.Counters
	config    *config.Config

	// syncAlerts delivers alerts on the calling goroutine. Set for the CLI,
	// where the process exits right after the verdict and an async delivery
	// would be killed mid-flight.
	syncAlerts bool
}

// CheckRequest is the body of POST /api/check.
type CheckRequest struct {
	URL           string  `json:"url"`
	BehaviorScore float64 `json:"behavior_score"`
}

// BlocklistRequest is the body of POST /api/blocklist.
type BlocklistRequest struct {
	URL string `json:"url"`
}

func NewGuard(cfg *config.Config) *Guard {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	cfg.MustValidate()

	trusted, err := trust.LoadSet(cfg.TrustedDomainsPath)
	if err != nil {
		log.Fatalf("[FATAL] load trusted domains: %v", err)
	}
	log.Printf("✓ trusted domains loaded (%d entries from %s)", trusted.Len(), cfg.TrustedDomainsPath)

	blocklist, err := trust.LoadBlocklist(cfg.BlocklistPath)
	if err != nil {
		log.Fatalf("[FATAL] load blocklist: %v", err)
	}
	log.Printf("✓ blocklist loaded (%d entries from %s)", blocklist.Len(), cfg.BlocklistPath)

	g := &Guard{
		trusted:   trusted,
		blocklist: blocklist,
		notifier:  notify.NewNotifier(cfg.AlertWebhookURL),
		config:    cfg,
	}

	opts := []ml.EngineOption{
		ml.WithWeights(ml.Weights{ML: cfg.MLWeight, Homoglyph: cfg.HomoglyphWeight}),
	}

	// Tabular ONNX classifier - optional
	if cfg.ModelPath != "" {
		clf, err := ml.NewONNXClassifier(ml.ONNXConfig{
			ModelPath:       cfg.ModelPath,
			MetaPath:        cfg.ModelMetaPath,
			OnnxLibraryPath: cfg.OnnxLibraryPath,
		})
		if err != nil {
			log.Printf("○ tabular classifier disabled (%v)", err)
		} else if adapter, err := ml.NewAdapter(clf); err != nil {
			log.Printf("○ tabular classifier disabled (%v)", err)
			_ = clf.Close()
		} else {
			opts = append(opts, ml.WithAdapter(adapter))
			log.Printf("✓ tabular classifier enabled (model: %s)", cfg.ModelPath)
		}
	} else {
		log.Println("○ tabular classifier disabled (no model path)")
	}

	// Transformer URL classifier - optional fallback
	if cfg.URLModelPath != "" {
		urlClf := ml.NewURLTextClassifierWithFallback(ml.URLModelConfig{
			ModelPath:       cfg.URLModelPath,
			OnnxLibraryPath: cfg.OnnxLibraryPath,
		})
		if urlClf.IsReady() {
			opts = append(opts, ml.WithURLClassifier(urlClf))
		}
	} else {
		log.Println("○ transformer URL classifier disabled (no model path)")
	}

	// Lookalike campaign index - optional
	if cfg.KnownPhishPath != "" {
		idx, err := ml.NewLookalikeIndex()
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err = idx.LoadCorpus(ctx, cfg.KnownPhishPath)
			cancel()
		}
		if err != nil {
			log.Printf("○ lookalike index disabled (%v)", err)
		} else {
			opts = append(opts, ml.WithLookalikeIndex(idx))
			log.Printf("✓ lookalike index enabled (corpus: %s)", cfg.KnownPhishPath)
		}
	} else {
		log.Println("○ lookalike index disabled (no corpus path)")
	}

	g.engine = ml.NewEngine(opts...)

	// Verdict history - optional
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := storage.Open(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Printf("○ verdict history disabled (%v)", err)
		} else {
			g.store = store
			log.Println("✓ verdict history enabled (postgres)")
		}
	} else {
		log.Println("○ verdict history disabled (no database url)")
	}

	// Verdict cache - optional
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		vc, err := cache.New(ctx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		cancel()
		if err != nil {
			log.Printf("○ verdict cache disabled (%v)", err)
		} else {
			g.cache = vc
			log.Printf("✓ verdict cache enabled (redis %s, ttl %s)", cfg.RedisAddr, cfg.CacheTTL)
		}
	} else {
		log.Println("○ verdict cache disabled (no redis address)")
	}

	if g.notifier.Enabled() {
		log.Printf("✓ alert webhook enabled (%s)", cfg.AlertWebhookURL)
	} else {
		log.Println("○ alert webhook disabled (no url)")
	}

	return g
}

// Check runs the full verdict pipeline for one URL: blocklist
// short-circuit, cache, scoring, persistence, alerting.
func (g *Guard) Check(ctx context.Context, url string, behaviorScore float64) *ml.Assessment {
	if g.blocklist != nil && g.blocklist.Contains(url) {
		verdict := ml.BlockedAssessment(url, behaviorScore)
		g.counters.RecordVerdict(verdict)
		g.persistAndAlert(ctx, verdict)
		return verdict
	}

	if cached := g.cache.Get(ctx, url, behaviorScore); cached != nil {
		g.counters.RecordCacheHit()
		return cached
	}

	verdict := g.engine.Evaluate(ctx, url, behaviorScore, g.trusted)
	g.counters.RecordVerdict(verdict)

	if err := g.cache.Put(ctx, verdict); err != nil {
		log.Printf("[WARN] verdict cache write: %v", err)
	}
	g.persistAndAlert(ctx, verdict)
	return verdict
}

// persistAndAlert writes history and raises alerts for Medium/High
// verdicts. Both paths are non-fatal.
func (g *Guard) persistAndAlert(ctx context.Context, verdict *ml.Assessment) {
	if g.store != nil {
		if _, err := g.store.SaveVerdict(ctx, verdict); err != nil {
			log.Printf("[WARN] persist verdict: %v", err)
		}
	}

	if verdict.RiskLevel == ml.RiskLow {
		return
	}

	if g.store != nil {
		if _, err := g.store.SaveAlert(ctx, verdict); err != nil {
			log.Printf("[WARN] persist alert: %v", err)
		}
	}

	alert := notify.AlertFor(verdict)
	if g.syncAlerts {
		if err := g.notifier.NotifySync(ctx, alert); err != nil {
			log.Printf("[WARN] alert webhook delivery failed: %v", err)
		}
		return
	}
	g.notifier.Notify(alert)
}

// Block adds a host to the blocklist and invalidates its cached verdict.
func (g *Guard) Block(ctx context.Context, url string) (bool, error) {
	added, err := g.blocklist.Add(url)
	if err != nil {
		return false, err
	}
	if err := g.cache.Invalidate(ctx, url); err != nil {
		log.Printf("[WARN] cache invalidate after block: %v", err)
	}
	return added, nil
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		addr := ""
		if len(os.Args) > 2 {
			addr = ":" + os.Args[2]
		}
		runHTTPServer(addr)
	case "check":
		if len(os.Args) < 3 {
			fmt.Println("Usage: phishguard check <url> [behavior_score]")
			os.Exit(1)
		}
		behavior := 0.0
		if len(os.Args) > 3 {
			if _, err := fmt.Sscanf(os.Args[3], "%f", &behavior); err != nil {
				fmt.Printf("invalid behavior score %q\n", os.Args[3])
				os.Exit(1)
			}
		}
		runCLICheck(os.Args[2], behavior)
	case "models":
		listModels()
	case "version":
		fmt.Printf("Phishguard v%s\n", Version)
		fmt.Println("URL Risk Scoring Gateway")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Phishguard v%s - URL Risk Scoring Gateway\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  phishguard serve [port]              Start HTTP server (default: 8080)")
	fmt.Println("  phishguard check <url> [behavior]    Score a single URL and print JSON")
	fmt.Println("  phishguard models                    Show configured model artifacts")
	fmt.Println("  phishguard version                   Show version")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  phishguard serve 8080")
	fmt.Println("  phishguard check http://paypa1.com/login 30")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  PHISHGUARD_TRUSTED_DOMAINS  Trusted domains file (default: trusted_domains.txt)")
	fmt.Println("  PHISHGUARD_BLOCKLIST        Blocklist file (default: blocklist.txt)")
	fmt.Println("  PHISHGUARD_MODEL_PATH       Tabular ONNX model artifact")
	fmt.Println("  PHISHGUARD_URL_MODEL_PATH   Transformer URL model directory")
	fmt.Println("  PHISHGUARD_KNOWN_PHISH      Confirmed-campaign corpus for lookalike matching")
	fmt.Println("  PHISHGUARD_DATABASE_URL     Postgres DSN for verdict history")
	fmt.Println("  PHISHGUARD_REDIS_ADDR       Redis address for the verdict cache")
	fmt.Println("  PHISHGUARD_ALERT_WEBHOOK    Webhook URL for Medium/High alerts")
	fmt.Println("  PHISHGUARD_CONFIG           Optional YAML config overlay")
}

// ============================================================================
// HTTP Server Mode
// ============================================================================

func runHTTPServer(addr string) {
	cfg := config.NewDefaultConfig()
	if addr == "" {
		addr = cfg.ListenAddr
	}
	guard := NewGuard(cfg)

	app := fiber.New(fiber.Config{
		AppName: "Phishguard",
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": Version})
	})

	app.Get("/api/stats", func(c fiber.Ctx) error {
		return c.JSON(guard.counters.Snapshot())
	})

	app.Post("/api/check", func(c fiber.Ctx) error {
		var req CheckRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.URL == "" {
			return c.Status(400).JSON(fiber.Map{"error": "url field is required"})
		}
		if req.BehaviorScore < 0 || req.BehaviorScore > 100 {
			return c.Status(400).JSON(fiber.Map{"error": "behavior_score must be in [0,100]"})
		}
		return c.JSON(guard.Check(c.Context(), req.URL, req.BehaviorScore))
	})

	app.Post("/api/blocklist", func(c fiber.Ctx) error {
		var req BlocklistRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.URL == "" {
			return c.Status(400).JSON(fiber.Map{"error": "url field is required"})
		}
		added, err := guard.Block(c.Context(), req.URL)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"added": added, "entries": guard.blocklist.Len()})
	})

	app.Get("/api/alerts", func(c fiber.Ctx) error {
		if guard.store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "verdict history is not configured"})
		}
		limit := fiber.Query(c, "limit", 50)
		alerts, err := guard.store.RecentAlerts(c.Context(), limit)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"alerts": alerts, "count": len(alerts)})
	})

	log.Printf("[STARTUP] Phishguard v%s listening on %s", Version, addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("[FATAL] server error: %v", err)
	}
}

// ============================================================================
// CLI Mode
// ============================================================================

func listModels() {
	cfg := config.NewDefaultConfig()

	report := func(name, path string) {
		if path == "" {
			fmt.Printf("○ %-28s not configured\n", name)
			return
		}
		if _, err := os.Stat(path); err != nil {
			fmt.Printf("○ %-28s %s (missing)\n", name, path)
			return
		}
		fmt.Printf("✓ %-28s %s\n", name, path)
	}

	fmt.Printf("Phishguard v%s model artifacts:\n\n", Version)
	report("tabular classifier", cfg.ModelPath)
	report("transformer URL classifier", cfg.URLModelPath)
	report("lookalike corpus", cfg.KnownPhishPath)
	report("onnxruntime library", cfg.OnnxLibraryPath)
}

func runCLICheck(url string, behaviorScore float64) {
	guard := NewGuard(config.NewDefaultConfig())
	guard.syncAlerts = true

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	verdict := guard.Check(ctx, url, behaviorScore)

	out, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		log.Fatalf("[FATAL] encode verdict: %v", err)
	}
	fmt.Println(string(out))

	if verdict.Action == ml.ActionBlock {
		os.Exit(2)
	}
}
