// Srxwired - SRX configuration API daemon
//
// Serves the staged configuration engine over a JSON HTTP API:
//
//	POST /api/configure  - run the full apply sequence
//	POST /api/validate   - dry run (commit check, nothing committed)
//	GET  /api/status     - connectivity test and device facts
//	POST /api/backup     - capture a configuration snapshot
//	GET  /api/history    - configuration attempts this process recorded
//	GET  /health         - liveness probe
//
// Audit entries are appended to a JSON-lines file and, when --redis is
// given, to a Redis list as well.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/srxwire-net/srxwire/internal/server"
	"github.com/srxwire-net/srxwire/pkg/audit"
	"github.com/srxwire-net/srxwire/pkg/backup"
	"github.com/srxwire-net/srxwire/pkg/engine"
	"github.com/srxwire-net/srxwire/pkg/util"
	"github.com/srxwire-net/srxwire/pkg/version"
)

var (
	listenHost string
	listenPort int
	auditPath  string
	redisAddr  string
	backupDir  string
	logJSON    bool
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "srxwired",
	Short:         "SRX configuration API daemon",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("info")
		}
		if logJSON {
			util.SetJSONFormat()
		}

		auditLog, err := buildAuditLog()
		if err != nil {
			return err
		}
		defer auditLog.Close()

		opts := []engine.Option{engine.WithRecorder(auditLog)}
		if backupDir != "" {
			store, err := backup.NewStore(backupDir)
			if err != nil {
				return fmt.Errorf("opening backup dir: %w", err)
			}
			opts = append(opts, engine.WithBackupStore(store))
		}
		eng := engine.New(opts...)

		cfg := server.DefaultConfig()
		cfg.Host = listenHost
		cfg.Port = listenPort
		srv := server.New(cfg, eng, auditLog)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		util.Infof("srxwired %s starting", version.Version)
		return srv.Start(ctx)
	},
}

// buildAuditLog wires the file sink (always) and the Redis sink (opt-in).
func buildAuditLog() (*audit.Log, error) {
	var sinks []audit.Sink

	fileSink, err := audit.NewFileSink(auditPath, audit.RotationConfig{
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxBackups: 10,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audit log %s: %w", auditPath, err)
	}
	sinks = append(sinks, fileSink)

	if redisAddr != "" {
		redisSink, err := audit.NewRedisSink(redisAddr, "")
		if err != nil {
			return nil, fmt.Errorf("connecting to Redis %s: %w", redisAddr, err)
		}
		sinks = append(sinks, redisSink)
	}

	return audit.NewLog(sinks...), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("srxwired %s (%s)\n", version.Version, version.GitCommit)
	},
}

func init() {
	rootCmd.Flags().StringVar(&listenHost, "host", "0.0.0.0", "Listen address")
	rootCmd.Flags().IntVar(&listenPort, "port", 8080, "Listen port")
	rootCmd.Flags().StringVar(&auditPath, "audit-log", "/var/log/srxwire/audit.log", "Audit log path (JSON lines)")
	rootCmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for the audit sink (host:port)")
	rootCmd.Flags().StringVar(&backupDir, "backup-dir", "", "Directory for persisted configuration backups")
	rootCmd.Flags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(versionCmd)
}
