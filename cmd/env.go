package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/config"
	"github.com/abhisek/examcoach/internal/logger"
	"github.com/abhisek/examcoach/internal/practice"
	"github.com/abhisek/examcoach/internal/store"
	"github.com/abhisek/examcoach/internal/ui/report"
)

// env is everything a command needs, opened from flags and configuration.
type env struct {
	cfg     config.Config
	log     *logger.Logger
	store   *store.Store
	svc     *practice.Service
	out     *report.Printer
	json    bool
	issues  []catalog.Issue
	closers []func()
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// loadConfig merges the env file, EXAMCOACH_* variables and flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, err
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.CatalogDir = v
	}
	if v, _ := cmd.Flags().GetString("log"); v != "" {
		cfg.LogMode = v
	}
	return cfg, nil
}

// resolveDBPath returns the database path from configuration, falling back
// to the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// parseNow parses --now. Empty means the wall clock.
func parseNow(s string) (func() time.Time, error) {
	if s == "" {
		return time.Now, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return func() time.Time { return t }, nil
		}
	}
	return nil, fmt.Errorf("invalid --now %q: use RFC3339 or YYYY-MM-DD", s)
}

// openCatalog loads and validates the catalog directory.
func openCatalog(cfg config.Config, log *logger.Logger) (*catalog.Catalog, []catalog.Issue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	dir, err := cfg.AbsCatalogDir()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve catalog dir: %w", err)
	}
	cat, issues, err := catalog.LoadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	for _, is := range issues {
		log.Warn("catalog issue", "kind", is.Kind, "ref", is.Ref, "message", is.Message)
	}
	return cat, issues, nil
}

// openEnv builds the practice service for cmd.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode, cfg.LogHashSalt)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	e := &env{cfg: cfg, log: log}
	e.closers = append(e.closers, log.Sync)

	nowFlag, _ := cmd.Flags().GetString("now")
	now, err := parseNow(nowFlag)
	if err != nil {
		e.Close()
		return nil, err
	}

	cat, issues, err := openCatalog(cfg, log)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.issues = issues

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, func() { _ = st.Close() })
	log.Debug("store opened", "path", dbPath)

	e.svc = practice.New(cat, st.HistoryRepo(), st.PlanRepo(),
		practice.WithClock(now),
		practice.WithLogger(log),
	)
	e.json, _ = cmd.Flags().GetBool("json")
	plain, _ := cmd.Flags().GetBool("plain")
	e.out = report.New(cmd.OutOrStdout(), !plain && isTerminal(cmd.OutOrStdout()))
	return e, nil
}

// emit writes v as indented JSON when --json is set and reports whether it did.
func (e *env) emit(w io.Writer, v any) (bool, error) {
	if !e.json {
		return false, nil
	}
	return true, writeJSON(w, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
