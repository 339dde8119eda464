package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/streamkit/deploy-lambda-kinesis/internal/lambdastack"
)

// Output formats for the plan command.
const (
	outputText = "text"
	outputJSON = "json"
)

// newLogger returns the process logger. Diagnostics and progress go to
// stderr so stdout stays clean for the plan JSON.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

// newApp builds the CLI.
func newApp() *cli.App {
	return &cli.App{
		Name:    "deploy-lambda-kinesis",
		Usage:   "Plan the AWS resources for a Kinesis-triggered Lambda stack",
		Version: lambdastack.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file to load before reading the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "AWS shared-config profile for commands that call AWS",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "plan",
				Usage: "Resolve config files and print the ordered resource intents",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output",
						Usage: "output format: text or json",
						Value: outputJSON,
					},
				},
				Action: runPlan,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration and config files without planning",
				Action: runValidate,
			},
			{
				Name:   "diagnose",
				Usage:  "Validate, plan, and run advisory existence checks against AWS",
				Action: runDiagnose,
			},
		},
	}
}

// loadEnvFile loads the dotenv file if it exists. A missing default file
// is fine; a missing explicitly-passed file is an error.
func loadEnvFile(c *cli.Context) error {
	path := c.String("env-file")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !c.IsSet("env-file") {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// resolveAndPlan runs the shared load → resolve → plan pipeline.
func resolveAndPlan(c *cli.Context) (*lambdastack.Config, *lambdastack.PlanResult, error) {
	if err := loadEnvFile(c); err != nil {
		return nil, nil, err
	}
	cfg, err := lambdastack.Load()
	if err != nil {
		return nil, nil, err
	}
	planner := lambdastack.NewPlanner()
	files, err := lambdastack.ResolveFiles(cfg, lambdastack.FSLoader)
	if err != nil {
		return nil, nil, err
	}
	result, err := planner.Plan(cfg, files)
	if err != nil {
		return nil, nil, err
	}
	return cfg, result, nil
}

// runPlan prints the intent sequence to stdout.
func runPlan(c *cli.Context) error {
	_, result, err := resolveAndPlan(c)
	if err != nil {
		return err
	}

	switch c.String("output") {
	case outputJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case outputText:
		for _, intent := range result.Intents {
			fmt.Printf("  + %-22s %s\n", intent.Type, intent.Name)
		}
		fmt.Println(result.Summary)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", c.String("output"))
	}
}

// runValidate reports every configuration problem and all non-fatal
// warnings, and exits non-zero if any hard error was found.
func runValidate(c *cli.Context) error {
	log := newLogger()
	if err := loadEnvFile(c); err != nil {
		return err
	}
	cfg, err := lambdastack.Parse()
	if err != nil {
		return err
	}

	errs := cfg.Validate()
	for _, e := range errs {
		log.Error("validation failed", "error", e.Error())
	}

	for _, w := range lambdastack.DiagnoseConfig(cfg) {
		log.Warn("diagnostic", "warning", w.String())
	}

	if len(errs) == 0 {
		if files, err := lambdastack.ResolveFiles(cfg, lambdastack.FSLoader); err != nil {
			errs = append(errs, err)
			log.Error("validation failed", "error", err.Error())
		} else {
			for _, w := range lambdastack.DiagnoseFiles(cfg, files) {
				log.Warn("diagnostic", "warning", w.String())
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d validation error(s)", len(errs))
	}
	log.Info("configuration is valid")
	return nil
}

// runDiagnose plans and then checks referenced AWS resources. ACCOUNT_ID
// may be omitted; it is resolved from the caller identity.
func runDiagnose(c *cli.Context) error {
	log := newLogger()
	if err := loadEnvFile(c); err != nil {
		return err
	}
	cfg, err := lambdastack.Parse()
	if err != nil {
		return err
	}

	if cfg.AccountID == "" {
		account, err := lambdastack.ResolveAccountID(c.Context, cfg.Region, c.String("profile"))
		if err != nil {
			return err
		}
		cfg.AccountID = account
		log.Info("resolved account id from caller identity", "account", account)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return errs[0]
	}
	planner := lambdastack.NewPlanner()
	files, err := lambdastack.ResolveFiles(cfg, lambdastack.FSLoader)
	if err != nil {
		return err
	}
	result, err := planner.Plan(cfg, files)
	if err != nil {
		return err
	}

	checker, err := lambdastack.NewChecker(c.Context, cfg.Region, c.String("profile"))
	if err != nil {
		return err
	}

	warnings := lambdastack.DiagnoseConfig(cfg)
	warnings = append(warnings, lambdastack.DiagnoseFiles(cfg, files)...)
	resourceWarnings, err := lambdastack.CheckResources(c.Context, checker, cfg, result)
	if err != nil {
		return err
	}
	warnings = append(warnings, resourceWarnings...)

	for _, w := range warnings {
		log.Warn("diagnostic", "warning", w.String())
	}
	if len(warnings) == 0 {
		log.Info("no issues found", "summary", result.Summary)
	}
	return nil
}
