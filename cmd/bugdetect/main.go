package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ogulcanaydogan/ai-bug-detector/internal/analyzer"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/config"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/dataset"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/evaluate"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/gate"
	gaterego "github.com/ogulcanaydogan/ai-bug-detector/internal/gate/rego"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/hash"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/logging"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/metrics"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/report"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/server"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/store"
	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	exitGateFail   = 13
	exitSchemaFail = 14
)

type cliError struct {
	code int
	err  error
}

func (e cliError) Error() string { return e.err.Error() }

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		var ce cliError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.err)
			os.Exit(ce.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var ociPullFunc = store.PullOCI
var ociPublishFunc = store.PublishOCI

var newGenerator = func(ctx context.Context, cfg config.Config) (analyzer.Generator, error) {
	if err := cfg.Validate(true); err != nil {
		return nil, err
	}
	return analyzer.NewGeminiGenerator(ctx, cfg.Model.APIKey, cfg.Model.Name, cfg.Model.Temperature)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "bugdetect",
		Short:         "AI-assisted bug detection and evaluation CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newInitCommand())
	root.AddCommand(newServeCommand())
	root.AddCommand(newAnalyzeCommand())
	root.AddCommand(newBatchCommand())
	root.AddCommand(newFixCommand())
	root.AddCommand(newEvaluateCommand())
	root.AddCommand(newGateCommand())
	root.AddCommand(newReportCommand())
	root.AddCommand(newDatasetCommand())
	return root
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize bugdetect configuration, gates, and an example evaluation suite",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := store.EnsureDefaultDir(); err != nil {
				return err
			}
			files := []struct {
				path    string
				content string
			}{
				{config.DefaultPath, config.DefaultYAML},
				{"policy/examples/quality-gates.yaml", gate.DefaultPolicyYAML},
				{"evals/smoke/eval.yaml", evaluate.ExampleConfigYAML},
				{"evals/smoke/predictions.json", evaluate.ExamplePredictionsJSON},
				{"evals/smoke/actual.json", evaluate.ExampleActualJSON},
			}
			for _, f := range files {
				if hash.FileExists(f.path) {
					continue
				}
				if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "initialized bugdetect config, quality gates, and example evaluation suite")
			return nil
		},
	}
}

// loadRuntime reads the config and builds the analyzer. Offline mode needs
// no API key and returns a nil generator.
func loadRuntime(ctx context.Context, cfgPath string, offline bool) (config.Config, analyzer.Analyzer, analyzer.Generator, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	if err := cfg.Validate(false); err != nil {
		return config.Config{}, nil, nil, err
	}
	if offline {
		return cfg, analyzer.StaticAnalyzer{}, nil, nil
	}
	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, analyzer.NewModelAnalyzer(gen), gen, nil
}

func newServeCommand() *cobra.Command {
	var cfgPath string
	var port int
	var offline bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web front-end",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, a, gen, err := loadRuntime(ctx, cfgPath, offline)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			srv := server.New(server.Config{
				Port:            cfg.Server.Port,
				CacheTTLSeconds: cfg.Server.CacheTTLSeconds,
				RateLimit:       cfg.Server.RateLimit,
				Burst:           cfg.Server.Burst,
			}, a, gen, logger)
			httpSrv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- httpSrv.ListenAndServe() }()
			fmt.Fprintf(os.Stderr, "bugdetect listening on %s (model %s, offline=%t)\n", httpSrv.Addr, cfg.Model.Name, offline)
			logger.Info("server started", zap.String("addr", httpSrv.Addr), zap.Bool("offline", offline))

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				logger.Info("shutting down")
				return httpSrv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", config.DefaultPath, "bugdetect config file")
	cmd.Flags().IntVar(&port, "port", 5000, "listen port (overrides config)")
	cmd.Flags().BoolVar(&offline, "offline", false, "serve the static analyzer instead of calling the model")
	return cmd
}

func newAnalyzeCommand() *cobra.Command {
	var cfgPath, filePath, code, language, format string
	var offline bool
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one code snippet for bugs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := readCode(filePath, code)
			if err != nil {
				return err
			}
			if format != "json" && format != "text" {
				return fmt.Errorf("unsupported format %s", format)
			}
			_, a, _, err := loadRuntime(cmd.Context(), cfgPath, offline)
			if err != nil {
				return err
			}
			res, err := analyzer.AnalyzeOrDegrade(cmd.Context(), a, src, language)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == "text" {
				writeResultText(out, res)
				return nil
			}
			return writeIndentedJSON(out, res)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", config.DefaultPath, "bugdetect config file")
	cmd.Flags().StringVar(&filePath, "file", "", "source file to analyze")
	cmd.Flags().StringVar(&code, "code", "", "inline code to analyze")
	cmd.Flags().StringVar(&language, "language", analyzer.DefaultLanguage, "source language")
	cmd.Flags().StringVar(&format, "format", "json", "output format (json|text)")
	cmd.Flags().BoolVar(&offline, "offline", false, "use the static analyzer instead of calling the model")
	return cmd
}

func newBatchCommand() *cobra.Command {
	var cfgPath, language string
	var offline bool
	cmd := &cobra.Command{
		Use:   "batch <file>...",
		Short: "Analyze several files and print results as a JSON array",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := make([]string, 0, len(args))
			for _, p := range args {
				raw, err := os.ReadFile(p)
				if err != nil {
					return err
				}
				codes = append(codes, string(raw))
			}
			cfg, a, _, err := loadRuntime(cmd.Context(), cfgPath, offline)
			if err != nil {
				return err
			}
			results, err := analyzer.BatchAnalyze(cmd.Context(), a, codes, language, cfg.Server.BatchWorkers)
			if err != nil {
				return err
			}
			return writeIndentedJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", config.DefaultPath, "bugdetect config file")
	cmd.Flags().StringVar(&language, "language", analyzer.DefaultLanguage, "source language")
	cmd.Flags().BoolVar(&offline, "offline", false, "use the static analyzer instead of calling the model")
	return cmd
}

func newFixCommand() *cobra.Command {
	fixCmd := &cobra.Command{Use: "fix", Short: "Ask the model about fixes"}

	var cfgPath, filePath, code, issue string
	suggestCmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest a fix for a described issue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if issue == "" {
				return fmt.Errorf("--issue is required")
			}
			src, err := readCode(filePath, code)
			if err != nil {
				return err
			}
			_, _, gen, err := loadRuntime(cmd.Context(), cfgPath, false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), analyzer.SuggestFix(cmd.Context(), gen, src, issue))
			return nil
		},
	}
	suggestCmd.Flags().StringVar(&cfgPath, "config", config.DefaultPath, "bugdetect config file")
	suggestCmd.Flags().StringVar(&filePath, "file", "", "source file with the issue")
	suggestCmd.Flags().StringVar(&code, "code", "", "inline code with the issue")
	suggestCmd.Flags().StringVar(&issue, "issue", "", "issue description")

	var explainCfgPath, buggyPath, fixedPath string
	explainCmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain how a fixed version addresses the buggy one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if buggyPath == "" || fixedPath == "" {
				return fmt.Errorf("--buggy and --fixed are required")
			}
			buggy, err := os.ReadFile(buggyPath)
			if err != nil {
				return err
			}
			fixed, err := os.ReadFile(fixedPath)
			if err != nil {
				return err
			}
			_, _, gen, err := loadRuntime(cmd.Context(), explainCfgPath, false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), analyzer.ExplainFix(cmd.Context(), gen, string(buggy), string(fixed)))
			return nil
		},
	}
	explainCmd.Flags().StringVar(&explainCfgPath, "config", config.DefaultPath, "bugdetect config file")
	explainCmd.Flags().StringVar(&buggyPath, "buggy", "", "buggy source file")
	explainCmd.Flags().StringVar(&fixedPath, "fixed", "", "fixed source file")

	fixCmd.AddCommand(suggestCmd, explainCmd)
	return fixCmd
}

func newEvaluateCommand() *cobra.Command {
	var cfgPath, outDir, format, publishRef string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score predictions against ground truth and write a summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfgPath == "" {
				return fmt.Errorf("--config is required")
			}
			summary, err := evaluate.Run(cfgPath)
			if err != nil {
				if errors.Is(err, evaluate.ErrSchema) {
					return cliError{code: exitSchemaFail, err: err}
				}
				return err
			}
			summaryPath, err := evaluate.WriteSummary(outDir, summary)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, summaryPath)

			base := strings.TrimSuffix(summaryPath, ".json")
			switch format {
			case "json":
			case "md":
				if err := report.WriteMarkdown(base+".md", summary); err != nil {
					return err
				}
				fmt.Fprintln(out, base+".md")
			case "text":
				fmt.Fprint(out, metrics.Report(summary.Metrics))
			default:
				return fmt.Errorf("unsupported format %s", format)
			}

			if publishRef != "" {
				pinned, err := ociPublishFunc(summaryPath, publishRef)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, pinned)
			}
			if summary.RegressionDetected {
				for _, v := range summary.Violations {
					fmt.Fprintln(out, v)
				}
				return cliError{code: exitGateFail, err: fmt.Errorf("evaluation thresholds not met")}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "evaluation suite config")
	cmd.Flags().StringVar(&outDir, "out", store.DefaultDir, "summary output directory")
	cmd.Flags().StringVar(&format, "format", "json", "extra report format (json|md|text)")
	cmd.Flags().StringVar(&publishRef, "publish", "", "OCI reference to publish the summary to")
	return cmd
}

func newGateCommand() *cobra.Command {
	var policyPath, summaryPath, ociRefs, engine, regoPolicyPath, archiveDir string
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Run quality gates and return non-zero on violations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if policyPath == "" {
				return fmt.Errorf("--policy is required")
			}
			source := summaryPath
			if ociRefs != "" {
				tmpDir, err := os.MkdirTemp("", "bugdetect-oci-gate-")
				if err != nil {
					return err
				}
				defer os.RemoveAll(tmpDir)
				refs := splitCSV(ociRefs)
				for i, ref := range refs {
					out := filepath.Join(tmpDir, fmt.Sprintf("summary_oci_%d.json", i+1))
					if err := ociPullFunc(ref, out); err != nil {
						return err
					}
					if archiveDir != "" {
						if _, err := store.ArchiveSummary(out, archiveDir); err != nil {
							return err
						}
					}
				}
				source = tmpDir
			}
			policy, err := gate.LoadPolicy(policyPath)
			if err != nil {
				return err
			}
			summaries, err := gate.LoadSummaries(source)
			if err != nil {
				return err
			}

			var violations []string
			switch engine {
			case "yaml":
				violations = gate.Evaluate(policy, summaries)
			case "rego":
				result, err := gaterego.Evaluate(cmd.Context(), regoPolicyPath, gaterego.BuildInput(policy, summaries))
				if err != nil {
					return err
				}
				if !result.Allow {
					violations = append(violations, result.Violations...)
					if len(violations) == 0 {
						violations = append(violations, "rego policy denied request")
					}
				}
			default:
				return fmt.Errorf("unsupported policy engine %s", engine)
			}
			out := cmd.OutOrStdout()
			if len(violations) > 0 {
				for _, v := range violations {
					fmt.Fprintln(out, v)
				}
				return cliError{code: exitGateFail, err: fmt.Errorf("quality gate failed")}
			}
			fmt.Fprintln(out, "quality gate passed")
			return nil
		},
	}
	cmd.Flags().StringVar(&policyPath, "policy", "policy/examples/quality-gates.yaml", "gate policy YAML path")
	cmd.Flags().StringVar(&summaryPath, "summary", store.DefaultDir, "summary file or directory")
	cmd.Flags().StringVar(&ociRefs, "oci", "", "comma-separated OCI refs to pull summaries from")
	cmd.Flags().StringVar(&engine, "engine", "yaml", "policy engine (yaml|rego)")
	cmd.Flags().StringVar(&regoPolicyPath, "rego-policy", "policy/examples/quality-gates.rego", "rego policy path (used with --engine rego)")
	cmd.Flags().StringVar(&archiveDir, "archive", "", "keep a copy of OCI-pulled summaries in this directory")
	return cmd
}

func newReportCommand() *cobra.Command {
	var inPath, outPath, format string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a report from an evaluation summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inPath == "" || outPath == "" {
				return fmt.Errorf("--in and --out are required")
			}
			summary, err := evaluate.ReadSummary(inPath)
			if err != nil {
				return err
			}
			switch format {
			case "md":
				err = report.WriteMarkdown(outPath, summary)
			case "text":
				err = report.WriteText(outPath, summary)
			case "json":
				err = report.WriteJSON(outPath, summary)
			default:
				return fmt.Errorf("unsupported format %s", format)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "summary JSON input")
	cmd.Flags().StringVar(&outPath, "out", "", "report output path")
	cmd.Flags().StringVar(&format, "format", "md", "report format (md|text|json)")
	return cmd
}

func newDatasetCommand() *cobra.Command {
	datasetCmd := &cobra.Command{Use: "dataset", Short: "Collect and prepare buggy/fixed code samples"}

	var repoURL, language, outPath, recipient string
	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect samples for a GitHub repository",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if repoURL == "" {
				return fmt.Errorf("--repo is required")
			}
			if recipient != "" && outPath == "" {
				return fmt.Errorf("--out is required with --age-recipient")
			}
			c := dataset.NewCollector(stderrLogger())
			samples, err := c.CollectFromGitHub(repoURL, language)
			if err != nil {
				return err
			}
			if outPath == "" {
				return writeIndentedJSON(cmd.OutOrStdout(), samples)
			}
			if err := dataset.Export(outPath, samples, recipient); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	collectCmd.Flags().StringVar(&repoURL, "repo", "", "GitHub repository URL")
	collectCmd.Flags().StringVar(&language, "language", analyzer.DefaultLanguage, "sample language")
	collectCmd.Flags().StringVar(&outPath, "out", "", "write samples to this file instead of stdout")
	collectCmd.Flags().StringVar(&recipient, "age-recipient", "", "age X25519 recipient to encrypt the export to")

	var inPath string
	preprocessCmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Print normalized training pairs from a local dataset file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inPath == "" {
				return fmt.Errorf("--in is required")
			}
			c := dataset.NewCollector(stderrLogger())
			c.LoadLocal(inPath)
			buggy, fixed := c.TrainingData()
			return writeIndentedJSON(cmd.OutOrStdout(), map[string][]string{
				"buggy_code": buggy,
				"fixed_code": fixed,
			})
		},
	}
	preprocessCmd.Flags().StringVar(&inPath, "in", "", "dataset JSON file")

	datasetCmd.AddCommand(collectCmd, preprocessCmd)
	return datasetCmd
}

func stderrLogger() *zap.Logger {
	return logging.NewWriter(os.Stderr, zap.WarnLevel)
}

func readCode(filePath, code string) (string, error) {
	switch {
	case filePath != "" && code != "":
		return "", fmt.Errorf("use only one of --file and --code")
	case filePath != "":
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case code != "":
		return code, nil
	default:
		return "", fmt.Errorf("--file or --code is required")
	}
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeResultText(w io.Writer, res types.AnalysisResult) {
	if res.Degraded() {
		fmt.Fprintf(w, "Error: %s\n", res.Error)
	}
	fmt.Fprintf(w, "Has issues: %t\n", res.HasIssues)
	fmt.Fprintf(w, "Scores: quality %d, security %d, performance %d\n",
		res.CodeQualityScore, res.SecurityScore, res.PerformanceScore)
	for _, is := range res.Issues {
		fmt.Fprintf(w, "- [%s] %s (line %d, confidence %d%%): %s\n",
			is.Severity, is.Type, is.LineNumber, is.Confidence, is.Description)
		if is.Suggestion != "" {
			fmt.Fprintf(w, "  Suggestion: %s\n", is.Suggestion)
		}
	}
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
