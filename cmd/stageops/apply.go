package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/onurmatik/StageOps/internal/core/manifest"
	"github.com/onurmatik/StageOps/internal/core/plan"
	"github.com/onurmatik/StageOps/internal/shell/executor"
	"github.com/onurmatik/StageOps/internal/shell/history"
	"github.com/onurmatik/StageOps/internal/shell/remote"
	"github.com/onurmatik/StageOps/internal/shell/templates"
)

var applyDryRun bool

var applyCmd = &cobra.Command{
	Use:   "apply [projects...]",
	Short: "Reconcile the server against the manifest",
	Long: `Apply computes the deployment plan for the selected projects (all
projects when none are named) and executes it over SSH. The exit code is
zero only when every selected project deployed successfully.`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "print the plan without connecting")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, projects, err := loadManifest(cfg.Manifest)
	if err != nil {
		return err
	}

	p, err := plan.Build(projects, templates.Default(), args)
	if err != nil {
		return err
	}

	if applyDryRun {
		printPlan(p)
		return nil
	}

	if p.Empty() {
		fmt.Println("Nothing to do.")
		return nil
	}

	host, err := dialHost(m.Server)
	if err != nil {
		return err
	}
	defer host.Close()

	startedAt := time.Now().UTC()
	report := executor.New(host, logger).Execute(ctx, p)
	finishedAt := time.Now().UTC()

	recordRun(ctx, report, startedAt, finishedAt)
	printReport(report)

	if !report.Success {
		return fmt.Errorf("run failed")
	}
	return nil
}

// loadManifest reads, parses and resolves the manifest file.
func loadManifest(path string) (*manifest.Manifest, []manifest.ResolvedProject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read manifest: %w", err)
	}

	m, err := manifest.Parse(data)
	if err != nil {
		return nil, nil, err
	}

	projects, err := manifest.Resolve(m)
	if err != nil {
		return nil, nil, err
	}

	return m, projects, nil
}

// dialHost creates the SSH client from the manifest's server block. The
// connection itself is established lazily on the first step.
func dialHost(server manifest.Server) (*remote.SSHHost, error) {
	keyPath := server.SSHKey
	if strings.HasPrefix(keyPath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		keyPath = filepath.Join(home, keyPath[2:])
	}

	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read SSH key: %w", err)
	}

	return remote.NewSSHHost(remote.SSHConfig{
		Host:           server.Host,
		Port:           server.Port,
		User:           server.User,
		PrivateKey:     key,
		ConnectTimeout: cfg.SSH.ConnectTimeout,
		CommandTimeout: cfg.SSH.CommandTimeout,
	})
}

// recordRun persists the run outcome when history is configured. A store
// failure is logged, never fatal: the deployment already happened.
func recordRun(ctx context.Context, report executor.Report, startedAt, finishedAt time.Time) {
	if cfg.History.DSN == "" {
		return
	}

	store, err := history.NewSQLiteStore(cfg.History.DSN)
	if err != nil {
		logger.Error("failed to open history store", "error", err)
		return
	}
	defer store.Close()

	run := history.Run{
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Success:    report.Success,
	}
	for _, res := range report.Results {
		run.Projects = append(run.Projects, history.ProjectOutcome{
			Project: res.Project,
			Status:  string(res.Status),
			Reason:  res.Reason,
		})
	}

	id, err := store.RecordRun(ctx, run)
	if err != nil {
		logger.Error("failed to record run", "error", err)
		return
	}
	logger.Info("run recorded", "run_id", id)
}
