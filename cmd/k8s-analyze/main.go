package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/advisor"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/analyzer"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/config"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/datasource"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/kube"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/promql"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/reporter"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/storage"
)

var version = "0.1.0"

var (
	// Analyze flags
	prometheusURL string
	namespace     string
	outputFile    string
	outputFormat  string
	lookback      string
	fromCluster   bool
	kubeconfig    string
	saveResults   bool
	verbose       bool

	// Global config
	cfg   *config.Config
	store storage.Store

	// History command vars
	historyLimit int
)

func logInfo(format string, args ...interface{}) {
	if reporter.ReportFormat(outputFormat) == reporter.FormatText {
		fmt.Printf("[INFO] "+format+"\n", args...)
	}
}

func logVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

func main() {
	cfg = config.NewConfig()

	var rootCmd = &cobra.Command{
		Use:   "k8s-analyze",
		Short: "Kubernetes resource usage analyzer",
		Long: `Analyze Kubernetes pod CPU and memory usage from Prometheus
and print static threshold-based optimization suggestions.`,
		Run: runAnalyze,
	}

	rootCmd.Flags().StringVar(&prometheusURL, "prometheus-url", cfg.PrometheusURL, "URL of the Prometheus API (required unless PROMETHEUS_URL is set)")
	rootCmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Limit the analysis to one namespace")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Export suggestions to a JSON file")
	rootCmd.Flags().StringVar(&outputFormat, "format", "text", "Output format: text, json, csv")
	rootCmd.Flags().StringVar(&lookback, "lookback", "", "Use P95 over this window instead of instant values (e.g. 24h, 7d as 168h)")
	rootCmd.Flags().BoolVar(&fromCluster, "from-cluster", false, "Read resource requests from the cluster API instead of kube-state-metrics")
	rootCmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to kubeconfig (default: ~/.kube/config)")
	rootCmd.Flags().BoolVar(&saveResults, "save", false, "Save suggestions to database")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	historyCmd := &cobra.Command{
		Use:   "history <namespace>",
		Short: "View past suggestions",
		Args:  cobra.ExactArgs(1),
		Run:   runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of suggestions to show")

	auditCmd := &cobra.Command{
		Use:   "audit <suggestion-id>",
		Short: "Show a saved suggestion and its audit trail",
		Args:  cobra.ExactArgs(1),
		Run:   runAudit,
	}

	dismissCmd := &cobra.Command{
		Use:   "dismiss <suggestion-id>",
		Short: "Mark a saved suggestion as reviewed and dismissed",
		Args:  cobra.ExactArgs(1),
		Run:   runDismiss,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initStorage() error {
	var err error
	store, err = storage.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) {
	cfg.PrometheusURL = prometheusURL
	if cfg.PrometheusURL == "" {
		fmt.Fprintln(os.Stderr, "Error: --prometheus-url is required (or set PROMETHEUS_URL)")
		os.Exit(1)
	}

	format := reporter.ReportFormat(outputFormat)
	if !validFormat(format) {
		fmt.Fprintln(os.Stderr, "Error: format must be text, json, or csv")
		os.Exit(1)
	}

	if lookback != "" {
		d, err := parseLookback(lookback)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid lookback %q: %v\n", lookback, err)
			os.Exit(1)
		}
		cfg.Lookback = d
	}

	if saveResults {
		cfg.StorageEnabled = true
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.StorageEnabled {
		if err := initStorage(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	ctx := context.Background()

	source, err := datasource.NewPrometheusSource(datasource.Config{
		PrometheusURL: cfg.PrometheusURL,
		Timeout:       cfg.QueryTimeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logInfo("Checking Prometheus availability at %s", cfg.PrometheusURL)
	if !source.IsAvailable(ctx) {
		fmt.Fprintf(os.Stderr, "Error: Prometheus is not reachable at %s\n", cfg.PrometheusURL)
		os.Exit(1)
	}

	queries := promql.NewBuilder(namespace, cfg.RateWindow)
	an := analyzer.New(source, queries, namespace, verbose)

	logInfo("Fetching data from Prometheus")
	usages, err := an.Collect(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if fromCluster {
		logInfo("Reading resource requests from the cluster API")
		client, err := kube.New(kubeconfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		requests, err := client.ResourceRequests(ctx, namespace)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		kube.ApplyRequests(usages, requests)
	}

	if cfg.Lookback > 0 {
		logInfo("Refining usage with P95 over %s", cfg.Lookback)
		if err := an.RefineWithLookback(ctx, usages, cfg.Lookback); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	logInfo("Analyzing resource usage for %d workload(s)", len(usages))
	suggestions := advisor.NewFromConfig(cfg).EvaluateAll(usages)
	report := reporter.Build(suggestions, namespace)

	if cfg.StorageEnabled {
		saveSuggestions(ctx, report)
	}

	switch format {
	case reporter.FormatJSON:
		err = reporter.WriteJSON(report, os.Stdout)
	case reporter.FormatCSV:
		err = reporter.WriteCSV(report, os.Stdout)
	default:
		err = reporter.WriteText(report, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if outputFile != "" {
		if err := reporter.ExportJSON(report, outputFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logInfo("Suggestions exported to %s", outputFile)
	}
}

func saveSuggestions(ctx context.Context, report *reporter.Report) {
	for _, s := range report.Actionable() {
		if err := store.SaveSuggestion(ctx, s); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to save suggestion for %s: %v\n", s.Workload, err)
			continue
		}
		logVerbose("Saved suggestion for %s (ID: %s)", s.Workload, s.ID)
	}
}

func runHistory(cmd *cobra.Command, args []string) {
	ns := args[0]

	if err := initStorage(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	suggestions, err := store.ListSuggestions(ctx, ns, historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(suggestions) == 0 {
		fmt.Printf("No suggestions found for namespace: %s\n", ns)
		return
	}

	fmt.Printf("Recent suggestions for namespace '%s':\n\n", ns)
	for i, s := range suggestions {
		fmt.Printf("%d. %s (ID: %s)\n", i+1, s.Workload.Pod, s.ID)
		fmt.Printf("   Suggested: %s\n", reporter.JoinActions(s.Actions))
		fmt.Printf("   CPU: %.2f cores (%.1f%%), Memory: %.2f MiB (%.1f%%)\n",
			s.CPUUsageCores, s.CPUUtilization,
			s.MemoryUsageBytes/(1024*1024), s.MemoryUtilization)
		fmt.Printf("   Created: %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

func runAudit(cmd *cobra.Command, args []string) {
	if err := initStorage(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := printAudit(context.Background(), store, args[0], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printAudit renders a saved suggestion and its audit trail, newest first.
func printAudit(ctx context.Context, st storage.Store, id string, w io.Writer) error {
	sg, err := st.GetSuggestion(ctx, id)
	if err != nil {
		return err
	}
	entries, err := st.GetAuditLog(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Suggestion %s (%s)\n", sg.ID, sg.Workload)
	fmt.Fprintf(w, "Suggested: %s\n", reporter.JoinActions(sg.Actions))
	fmt.Fprintf(w, "Created: %s\n\n", sg.CreatedAt.Format("2006-01-02 15:04:05"))

	if len(entries) == 0 {
		fmt.Fprintln(w, "No actions recorded.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s  %s", e.ExecutedAt.Format("2006-01-02 15:04:05"), e.Action, e.Status)
		if e.ExecutedBy != "" {
			fmt.Fprintf(w, "  by %s", e.ExecutedBy)
		}
		if e.ErrorMessage != "" {
			fmt.Fprintf(w, "  (%s)", e.ErrorMessage)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func runDismiss(cmd *cobra.Command, args []string) {
	if err := initStorage(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := dismissSuggestion(context.Background(), store, args[0], os.Getenv("USER")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Suggestion %s dismissed\n", args[0])
}

// dismissSuggestion records a DISMISSED audit entry for an existing
// suggestion. An unknown ID is an error, not a silent no-op.
func dismissSuggestion(ctx context.Context, st storage.Store, id, executedBy string) error {
	if _, err := st.GetSuggestion(ctx, id); err != nil {
		return err
	}
	return st.LogAction(ctx, &models.AuditEntry{
		SuggestionID: id,
		Action:       "DISMISSED",
		Status:       "SUCCESS",
		ExecutedBy:   executedBy,
	})
}

func validFormat(f reporter.ReportFormat) bool {
	switch f {
	case reporter.FormatText, reporter.FormatJSON, reporter.FormatCSV:
		return true
	}
	return false
}

func parseLookback(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}
