package main

import (
	"context"
	"flag"
	"time"

	"coc_roster_eval/internal/app"
	"coc_roster_eval/internal/coc"
	"coc_roster_eval/internal/deployment"
	"coc_roster_eval/internal/export"
	"coc_roster_eval/internal/history"
	"coc_roster_eval/internal/policy"
	"coc_roster_eval/internal/processing"
	"coc_roster_eval/internal/sheets"
	"coc_roster_eval/internal/storage"

	"github.com/rs/zerolog/log"
)

func main() {
	app.SetupEnvironment()

	// Parse command line flags
	interval := flag.Duration("interval", time.Hour, "Interval between evaluation cycles (e.g., 30m, 1h)")
	runOnce := flag.Bool("once", false, "Run once and exit (don't start scheduler)")
	flag.Parse()

	log.Info().
		Dur("interval", *interval).
		Bool("run_once", *runOnce).
		Msg("Starting clan roster evaluation application")

	// Load configuration
	config, err := app.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set the update interval from command line flag
	config.UpdateInterval = *interval

	ctx := context.Background()

	// Initialize clients and stores
	cocClient := coc.NewClient(config.CoCAPIToken)

	store, err := storage.NewStore(config.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open data directory")
	}

	historyProvider := history.NewProvider(store)
	policyStore := policy.NewStore(store)
	participation := processing.NewParticipationService(cocClient, store, config.CWLAttacksPerRound)
	evaluator := processing.NewEvaluator(cocClient, historyProvider, policyStore, participation, config)

	// Optional publishers, enabled by configuration
	var sheetsManager *sheets.EvaluationSheetsManager
	if config.SpreadsheetID != "" {
		sheetsClient, err := sheets.NewClient(ctx, config.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create sheets client")
		}
		sheetsManager = sheets.NewEvaluationSheetsManager(sheetsClient)
	}

	var publisher *deployment.EvaluationPublisher
	if config.DeployURL != "" {
		deployer := deployment.NewSSHDeployer(config.DeployURL)
		defer deployer.Disconnect()
		publisher = deployment.NewEvaluationPublisher(deployer, config.DataDir)
	}

	var exporter *export.Exporter
	if config.BQProject != "" && config.BQDataset != "" {
		exporter, err = export.NewExporter(ctx, config.BQProject, config.BQDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery exporter")
		}
		defer exporter.Close()
	}

	// Define the main evaluation function
	runCycle := func() {
		log.Debug().Msg("Starting evaluation cycle")

		// Reset API call counter at the start of each cycle
		cocClient.ResetAPICallCount()

		result, err := evaluator.EvaluateClan(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to evaluate clan")
			return
		}

		// Pick up any war snapshots persisted during this cycle
		historyProvider.Reload()

		if sheetsManager != nil {
			sheetConfig, err := sheetsManager.EnsureEvaluationSheets(ctx, config.SpreadsheetID, result.ClanTag)
			if err != nil {
				log.Error().Err(err).Msg("Failed to ensure evaluation sheets")
			} else {
				if err := sheetsManager.UpdateEvaluationTable(ctx, sheetConfig, result); err != nil {
					log.Error().Err(err).Msg("Failed to update evaluation table")
				}
				if err := sheetsManager.UpdateParticipationTable(ctx, sheetConfig, result); err != nil {
					log.Error().Err(err).Msg("Failed to update participation table")
				}
			}
		}

		if publisher != nil {
			if err := publisher.PublishEvaluation(result); err != nil {
				log.Error().Err(err).Msg("Failed to publish evaluation file")
			}
		}

		if exporter != nil {
			if err := exporter.ExportEvaluation(ctx, result); err != nil {
				log.Error().Err(err).Msg("Failed to export evaluation to BigQuery")
			}
		}

		apiCalls := cocClient.GetAPICallCount()
		log.Info().
			Int64("api_calls", apiCalls).
			Int("members_evaluated", len(result.Members)).
			Msg("Completed evaluation cycle")
	}

	// Run initial evaluation
	log.Info().Msg("Running initial evaluation")
	runCycle()

	// Exit if run-once flag is set
	if *runOnce {
		log.Info().Msg("Run-once mode: exiting after initial evaluation")
		return
	}

	// Start scheduled evaluation
	log.Info().
		Dur("interval", *interval).
		Msg("Starting scheduled evaluation")

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for range ticker.C {
		runCycle()
	}
}
