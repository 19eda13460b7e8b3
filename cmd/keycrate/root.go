package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keycrate/keycrate/internal/audit"
	"github.com/keycrate/keycrate/internal/config"
	"github.com/keycrate/keycrate/internal/crate"
	"github.com/keycrate/keycrate/internal/keychain"
	"github.com/keycrate/keycrate/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "keycrate",
	Short: "Typed key-value records in the macOS Keychain",
	Long: "keycrate stores a container of typed values (bool, int32, int64, " +
		"float32, float64, bytes) as a single encrypted Keychain record " +
		"addressed by account and service.",
}

var (
	flagConfig      string
	flagAccount     string
	flagService     string
	flagLabel       string
	flagDescription string
	flagSync        bool
	flagProtected   bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default ~/.keycrate/config.yaml)")
	pf.StringVar(&flagAccount, "account", "", "record account (part of the address)")
	pf.StringVar(&flagService, "service", "", "record service (part of the address)")
	pf.StringVar(&flagLabel, "label", "", "record label (metadata)")
	pf.StringVar(&flagDescription, "description", "", "record description (metadata)")
	pf.BoolVar(&flagSync, "sync", false, "mark the record synchronizable across devices")
	pf.BoolVar(&flagProtected, "protected", false, "use the data-protection keychain when available")
}

// newCrate assembles the gateway stack from config and flags. Flags override
// config values when set on the command line.
func newCrate(cmd *cobra.Command) (*crate.Crate, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	id := keychain.Identity{
		Account:        cfg.Account,
		Service:        cfg.Service,
		Label:          flagLabel,
		Description:    flagDescription,
		Synchronizable: cfg.Synchronizable,
		ProtectedVault: cfg.ProtectedVault,
	}
	if cmd.Flags().Changed("account") || cfg.Account == "" {
		id.Account = flagAccount
	}
	if cmd.Flags().Changed("service") || cfg.Service == "" {
		id.Service = flagService
	}
	if cmd.Flags().Changed("sync") {
		id.Synchronizable = flagSync
	}
	if cmd.Flags().Changed("protected") {
		id.ProtectedVault = flagProtected
	}
	if id.Account == "" || id.Service == "" {
		return nil, fmt.Errorf("an account and a service are required (flags or config)")
	}

	log := logger.NewStderr(cfg.LogLevel)
	gw := keychain.NewGateway(keychain.NewSystemBackend(), log)

	var vault crate.Vault = gw
	if cfg.AuditLog != "" {
		auditLog, err := audit.NewLogger(cfg.AuditLog)
		if err != nil {
			return nil, err
		}
		vault = keychain.NewAuditedGateway(gw, auditLog, "cli")
	}

	return crate.New(vault, id), nil
}
