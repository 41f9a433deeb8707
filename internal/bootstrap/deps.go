package bootstrap

import (
	"context"
	"time"

	"triage_server/adapter/out/mongodb"
	"triage_server/adapter/out/provider/gmail"
	"triage_server/config"
	"triage_server/core/agent/llm"
	"triage_server/core/port/out"
	"triage_server/core/service/digest"
	"triage_server/core/service/triage"
	"triage_server/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies holds every wired adapter and service. DigestService is nil
// when no Gmail session could be established.
type Dependencies struct {
	DB            *mongo.Database
	EmailRepo     *mongodb.EmailAdapter
	GmailProvider *gmail.Provider
	Summarizer    *llm.Summarizer
	TriageService *triage.Service
	DigestService *digest.Service
}

// NewDependencies wires the adapters and services. When requireMail is set,
// a failed Gmail authentication is fatal; otherwise the provider-backed
// operations (reconcile, digest) are simply unavailable.
func NewDependencies(ctx context.Context, cfg *config.Config, requireMail bool) (*Dependencies, func(), error) {
	var cleanups []func()

	db, err := mongodb.NewClient(cfg.MongoDBURL, cfg.MongoDBName)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Client().Disconnect(disconnectCtx); err != nil {
			logger.WithError(err).Warn("MongoDB disconnect failed")
		}
	})

	emailRepo := mongodb.NewEmailAdapter(db)
	if err := emailRepo.EnsureIndexes(ctx); err != nil {
		logger.WithError(err).Warn("Failed to ensure email indexes")
	}

	llmClient := llm.NewClient(llm.ClientConfig{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
	})
	summarizer := llm.NewSummarizer(llmClient, llm.SummarizerConfig{
		Timeout:          cfg.LLMTimeout,
		SummaryMaxTokens: cfg.LLMSummaryMaxTokens,
		ActionMaxTokens:  cfg.LLMActionMaxTokens,
	})

	var mailProvider out.MailProvider
	gmailProvider, err := gmail.NewProvider(ctx, gmail.Config{
		CredentialsFile: cfg.GoogleCredentialsFile,
		TokenFile:       cfg.GoogleTokenFile,
	})
	if err != nil {
		if requireMail {
			runCleanups(cleanups)
			return nil, nil, err
		}
		logger.WithError(err).Warn("Gmail unavailable, provider-backed operations disabled")
	} else {
		mailProvider = gmailProvider
		logger.Info("Gmail session established for %s", gmailProvider.Email())
	}

	triageService := triage.NewService(emailRepo, mailProvider)

	var digestService *digest.Service
	if mailProvider != nil {
		digestService = digest.NewService(mailProvider, summarizer, emailRepo, triageService)
	}

	deps := &Dependencies{
		DB:            db,
		EmailRepo:     emailRepo,
		GmailProvider: gmailProvider,
		Summarizer:    summarizer,
		TriageService: triageService,
		DigestService: digestService,
	}

	cleanup := func() { runCleanups(cleanups) }
	return deps, cleanup, nil
}

func runCleanups(cleanups []func()) {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
