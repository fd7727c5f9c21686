package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/chanreadmin/billingbackend/internal/conf"
	"github.com/chanreadmin/billingbackend/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "recon",
	Short: "Billing ledger reconciliation engine",
	Long:  `Detects and repairs drift between the bill ledger and the receipt ledger.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*conf.AppConfig, error) {
	confFile, _ := cmd.Flags().GetString("config")
	appConfig, err := conf.NewConfig(confFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return appConfig, nil
}

// printResponse renders the operation envelope as JSON on stdout and exits
// nonzero on failure so shell pipelines can branch on the outcome.
func printResponse(resp *service.Response) {
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		log.Fatalf("failed to render response: %v", err)
	}
	fmt.Println(string(out))
	if !resp.Success {
		os.Exit(1)
	}
}

// runRecon initializes the service and hands it to fn.
func runRecon(cmd *cobra.Command, fn func(ctx context.Context, svc *service.ReconService) *service.Response) {
	appConfig, err := loadConfig(cmd)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	svc, cleanup, err := InitializeReconService(appConfig)
	if err != nil {
		log.Fatalf("failed to init reconciliation service: %v", err)
	}
	defer cleanup()

	printResponse(fn(cmd.Context(), svc))
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Generates a read-only drift report",
	Long:  `Classifies missing receipts, zero amounts, duplicates and orphans without writing anything.`,
	Run: func(cmd *cobra.Command, args []string) {
		runRecon(cmd, func(ctx context.Context, svc *service.ReconService) *service.Response {
			return svc.AuditReport(ctx)
		})
	},
}

var repairMissingCmd = &cobra.Command{
	Use:   "repair:missing-receipts",
	Short: "Creates a creation receipt for every paid bill without one",
	Run: func(cmd *cobra.Command, args []string) {
		actor, _ := cmd.Flags().GetString("actor")
		runRecon(cmd, func(ctx context.Context, svc *service.ReconService) *service.Response {
			return svc.CreateMissingReceipts(ctx, actor)
		})
	},
}

var repairZeroCmd = &cobra.Command{
	Use:   "repair:zero-amounts",
	Short: "Corrects every receipt with a zero or negative amount",
	Run: func(cmd *cobra.Command, args []string) {
		actor, _ := cmd.Flags().GetString("actor")
		runRecon(cmd, func(ctx context.Context, svc *service.ReconService) *service.Response {
			return svc.FixZeroAmountReceipts(ctx, actor)
		})
	},
}

var repairBillCmd = &cobra.Command{
	Use:   "repair:bill <bill-number>",
	Short: "Re-derives and corrects the receipt amounts of one bill",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		actor, _ := cmd.Flags().GetString("actor")
		runRecon(cmd, func(ctx context.Context, svc *service.ReconService) *service.Response {
			return svc.FixBillReceipts(ctx, args[0], actor)
		})
	},
}

var setupIndexesCmd = &cobra.Command{
	Use:   "setup:indexes",
	Short: "Creates the receipt collection indexes",
	Long:  `Creates the unique receipt number index and the bill number lookup index. Run once per environment.`,
	Run: func(cmd *cobra.Command, args []string) {
		appConfig, err := loadConfig(cmd)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		dao, cleanup, err := InitializeReceiptDAO(appConfig)
		if err != nil {
			log.Fatalf("failed to init receipt DAO: %v", err)
		}
		defer cleanup()

		if err := dao.EnsureIndexes(cmd.Context()); err != nil {
			log.Fatalf("failed to create indexes: %v", err)
		}
		fmt.Println("indexes created")
	},
}

var workerCmd = &cobra.Command{
	Use:   "serve:worker",
	Short: "Starts the background workers",
	Long:  `Runs the outbox processor and the drift auditor until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		appConfig, err := loadConfig(cmd)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		app, cleanup, err := InitializeWorkerApp(appConfig)
		if err != nil {
			log.Fatalf("failed to init worker app: %v", err)
		}
		defer cleanup()

		if err := app.Run(); err != nil {
			log.Fatalf("failed to run worker app: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(repairMissingCmd)
	rootCmd.AddCommand(repairZeroCmd)
	rootCmd.AddCommand(repairBillCmd)
	rootCmd.AddCommand(setupIndexesCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.PersistentFlags().StringP("config", "c", "internal/conf/config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringP("actor", "a", "recon-engine", "actor recorded in audit entries for repair passes")
}
