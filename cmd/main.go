package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/monishmahesha2006/resume-relevance-system/internal/logger"
	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
	cfgPkg "github.com/monishmahesha2006/resume-relevance-system/pkg/config"
	"github.com/monishmahesha2006/resume-relevance-system/pkg/ingest"
	"github.com/monishmahesha2006/resume-relevance-system/pkg/llm"
	"github.com/monishmahesha2006/resume-relevance-system/pkg/match"
	"github.com/monishmahesha2006/resume-relevance-system/pkg/store"
	"github.com/monishmahesha2006/resume-relevance-system/server"
)

type Flags struct {
	ConfigPath string
	Serve      bool
	ResumeID   string
	JDID       string
	All        bool
	Force      bool
	Enhance    bool
	IngestURL  string
	IngestID   string
	Top        int
	Verdict    string
	Similar    string
}

func main() {
	flags := parseFlags()

	cfg, err := cfgPkg.LoadConfig(flags.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, "config error:", e.Error())
		}
		os.Exit(1)
	}

	zlog, err := logger.New(cfg.Logging.JSON, cfg.Logging.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	if err := run(flags, cfg, zlog); err != nil {
		zlog.Fatal("run failed", zap.Error(err))
	}
}

func parseFlags() Flags {
	var flags Flags

	flag.StringVar(&flags.ConfigPath, "config", "", "Path to config file")
	flag.BoolVar(&flags.Serve, "serve", false, "Start the HTTP API server")
	flag.StringVar(&flags.ResumeID, "resume", "", "Resume ID to match")
	flag.StringVar(&flags.JDID, "jd", "", "Job description ID to match")
	flag.BoolVar(&flags.All, "all", false, "Match all stored resumes against all stored job descriptions")
	flag.BoolVar(&flags.Force, "force", false, "Rematch pairs even when their inputs are unchanged")
	flag.BoolVar(&flags.Enhance, "enhance", false, "Polish feedback with the configured LLM")
	flag.StringVar(&flags.IngestURL, "ingest-url", "", "Fetch a job posting from a URL and store it")
	flag.StringVar(&flags.IngestID, "ingest-id", "", "ID to store the ingested posting under")
	flag.IntVar(&flags.Top, "top", 0, "Print the top N stored results")
	flag.StringVar(&flags.Verdict, "by-verdict", "", "Print stored results with the given verdict")
	flag.StringVar(&flags.Similar, "similar", "", "Find resumes similar to the given resume ID")
	flag.Parse()

	return flags
}

func run(flags Flags, cfg *cfgPkg.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:   cfg.LLM.EmbedModel,
		BaseURL: cfg.LLM.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	db, err := store.NewWithConfig(ctx, store.StoreConfig{
		ConnString: cfg.Database.URL,
		VectorDim:  cfg.Database.VectorDim,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize store: %v", err)
	}
	defer db.Close()

	engine, err := match.NewEngine(match.ParamsFromConfig(cfg.Matching), embedder, match.WithLogger(zlog))
	if err != nil {
		return err
	}

	switch {
	case flags.Serve:
		srv := server.New(server.Config{
			Addr:          cfg.Server.Addr,
			Workers:       cfg.Batch.Workers,
			SkipUnchanged: cfg.Batch.RematchPolicy == "skip-unchanged",
		}, engine, db, db, zlog)
		return srv.ListenAndServe()

	case flags.IngestURL != "":
		return runIngest(ctx, flags, cfg, db, embedder)

	case flags.All:
		return runBatch(ctx, flags, cfg, engine, db, zlog)

	case flags.ResumeID != "" && flags.JDID != "":
		return runSingle(ctx, flags, cfg, engine, db)

	case flags.Top > 0:
		return printTopResults(ctx, db, flags.Top)

	case flags.Verdict != "":
		return printResultsByVerdict(ctx, db, models.Verdict(flags.Verdict))

	case flags.Similar != "":
		return printSimilarResumes(ctx, db, embedder, flags.Similar)

	default:
		flag.Usage()
		return fmt.Errorf("nothing to do: pass -serve, -all, -resume/-jd, -ingest-url, -top, -by-verdict or -similar")
	}
}

func runIngest(ctx context.Context, flags Flags, cfg *cfgPkg.Config, db *store.Store, embedder *llm.Embedder) error {
	if flags.IngestID == "" {
		return fmt.Errorf("-ingest-id is required with -ingest-url")
	}

	fetcher := ingest.NewWithConfig(ingest.FetcherConfig{
		RateLimit: cfg.Ingest.RateLimit,
	})

	posting, err := fetcher.FetchPosting(ctx, flags.IngestURL)
	if err != nil {
		return fmt.Errorf("failed to fetch posting: %v", err)
	}

	doc := &models.ProcessedDocument{
		ID: flags.IngestID,
		Sections: map[string]string{
			"description": posting.Text,
		},
	}

	embedding, err := embedder.Embed(ctx, doc.FullText())
	if err != nil {
		return fmt.Errorf("failed to embed posting: %v", err)
	}

	if err := db.SaveJobDescription(ctx, doc, embedding); err != nil {
		return err
	}

	fmt.Printf("Stored job description %q (%s, %d chars)\n", flags.IngestID, posting.Title, len(posting.Text))
	return nil
}
