package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/fetch"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/logger"
	"github.com/jonathan/interview-coach/internal/rendering"
	"github.com/jonathan/interview-coach/internal/report"
	"github.com/jonathan/interview-coach/internal/server/ratelimit"
	"github.com/jonathan/interview-coach/internal/throttle"
	"github.com/jonathan/interview-coach/internal/tools"
)

// app holds the long-lived components every subcommand shares.
type app struct {
	cfg          *config.Config
	logger       *zap.Logger
	store        db.SessionStore
	client       llm.Client
	tools        *tools.Client
	orchestrator *interview.Orchestrator
	synthesizer  *report.Synthesizer
	renderer     *rendering.Renderer
}

// newApp connects the store, model client and optional conversion tool server
// and assembles the interview components on top of them.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger.OrNop(log)}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.store, err = db.Open(ctx, storeOptions(cfg.Store))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	llmCfg := llmConfig(cfg.LLM)
	a.client, err = llm.NewClient(ctx, llmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", llmCfg.Provider, err)
	}
	clientLog := logger.WithProvider(a.logger, string(llmCfg.Provider), llmCfg.GetModel(llm.TierStandard))

	normalizerOpts := []ingestion.Option{
		ingestion.WithBrowserFallback(cfg.Fetch.UseBrowser),
		ingestion.WithLogger(a.logger),
	}
	orchestratorOpts := []interview.Option{
		interview.WithMaxToolRounds(cfg.LLM.MaxToolRounds),
		interview.WithLogger(clientLog),
	}

	a.tools, err = connectConverter(ctx, cfg.Converter, a.logger)
	if err != nil {
		return nil, err
	}
	if a.tools != nil {
		normalizerOpts = append(normalizerOpts, ingestion.WithConverter(a.tools))
		orchestratorOpts = append(orchestratorOpts, interview.WithTools(a.tools.AgentTools()))
	}

	fetcher := fetch.New(fetchOptions(cfg.Fetch), a.logger)
	normalizer := ingestion.NewNormalizer(fetcher, normalizerOpts...)
	orchestratorOpts = append(orchestratorOpts, interview.WithNormalizer(normalizer))

	gate := throttle.NewGate(cfg.Throttle.MinInterval, throttle.WithLogger(a.logger))
	a.orchestrator, err = interview.New(a.client, gate, a.store, orchestratorOpts...)
	if err != nil {
		return nil, err
	}

	a.synthesizer, err = report.NewSynthesizer(a.client, report.WithLogger(clientLog))
	if err != nil {
		return nil, err
	}

	a.renderer = newRenderer(cfg.PDF)
	return a, nil
}

// connectConverter dials the conversion tool server. Without one, documents
// are decoded as raw text, which rejects binary formats such as PDF.
func connectConverter(ctx context.Context, c config.ConverterConfig, log *zap.Logger) (*tools.Client, error) {
	toolCfg := toolServerConfig(c)
	if !toolCfg.Enabled() {
		log.Warn("no document converter configured; PDF and other binary documents cannot be ingested",
			zap.String("hint", "set converter.endpoint or converter.command"))
		return nil, nil
	}
	client, err := tools.Connect(ctx, toolCfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to conversion tool server: %w", err)
	}
	return client, nil
}

// Close releases every component that was opened.
func (a *app) Close() error {
	var errs []error
	if a.tools != nil {
		errs = append(errs, a.tools.Close())
	}
	if a.client != nil {
		errs = append(errs, a.client.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

func llmConfig(c config.LLMConfig) *llm.Config {
	selected := c.Selected()
	out := llm.DefaultConfigFor(c.Backend())
	out.APIKey = selected.APIKey
	out.BaseURL = selected.BaseURL
	if selected.Model != "" {
		out = out.WithModel(llm.TierStandard, selected.Model)
	}
	if selected.ReportModel != "" {
		out = out.WithModel(llm.TierAdvanced, selected.ReportModel)
	}
	if c.MaxToolRounds > 0 {
		out.MaxToolRounds = c.MaxToolRounds
	}
	return out
}

func storeOptions(c config.StoreConfig) db.Options {
	return db.Options{Driver: c.Driver, DatabaseURL: c.DatabaseURL, SQLitePath: c.SQLitePath}
}

func fetchOptions(c config.FetchConfig) *fetch.Options {
	opts := fetch.DefaultOptions()
	if c.Timeout > 0 {
		opts.Timeout = c.Timeout
	}
	if c.UserAgent != "" {
		opts.UserAgent = c.UserAgent
	}
	opts.MaxRedirects = c.MaxRedirects
	return opts
}

func toolServerConfig(c config.ConverterConfig) tools.ServerConfig {
	return tools.ServerConfig{
		Endpoint:    c.Endpoint,
		Command:     c.Command,
		Args:        c.Args,
		ConvertTool: c.ToolName,
	}
}

func rateLimitConfig(c config.RateLimitConfig) *ratelimit.Config {
	return ratelimit.NewConfig(c.Enabled, c.DefaultLimit, c.DefaultWindow, c.Whitelist, c.Blacklist)
}

func newRenderer(c config.PDFConfig) *rendering.Renderer {
	if c.FontPath == "" {
		return rendering.NewRenderer()
	}
	return rendering.NewRenderer(rendering.WithUTF8Font(c.FontPath))
}
