package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"morak/internal/config"
	"morak/internal/database"
	"morak/internal/logging"
	"morak/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")
	importYes := importCmd.Bool("yes", false, "Skip the confirmation prompt for -clear")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	logger, err := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(ctx, database.MigrationSource(cfg.MigrationsPath), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	backupService := service.NewBackupService(db, logger)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(ctx, logger, backupService, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(ctx, logger, backupService, *importInput, *importClear, *importYes)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, logger *zap.Logger, backupService *service.BackupService, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("failed to create output directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	logger.Info("exporting database", zap.String("output", outputPath))
	if err := backupService.ExportToFile(ctx, outputPath); err != nil {
		logger.Fatal("export failed", zap.Error(err))
	}

	fields := []zap.Field{zap.String("output", outputPath)}
	if info, err := os.Stat(outputPath); err == nil {
		fields = append(fields, zap.Int64("bytes", info.Size()))
	}
	logger.Info("export complete", fields...)
}

func handleImport(ctx context.Context, logger *zap.Logger, backupService *service.BackupService, inputPath string, clearData, skipConfirm bool) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		logger.Fatal("input file does not exist", zap.String("input", inputPath))
	}

	if clearData && !skipConfirm {
		fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			logger.Info("import cancelled")
			return
		}
	}

	logger.Info("importing database", zap.String("input", inputPath), zap.Bool("clear", clearData))
	if err := backupService.ImportFromFile(ctx, inputPath, clearData); err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
	logger.Info("import complete")
}

func printUsage() {
	fmt.Println("Morak Database Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export database to JSON file")
	fmt.Println("  backup import [options]    Import database from JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -clear            Clear existing data before import (WARNING: destructive)")
	fmt.Println("  -yes              Do not ask for confirmation when -clear is set")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE          Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./morak.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
}
