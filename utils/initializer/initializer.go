package initializer

import (
	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/env"
)

// Initialize goregistry's required environment variables
// to their default values.
func Initialize() {
	// Registry
	env.RegisterDefault("REGISTRY_MODE", "DEV")
	env.RegisterDefault("REGISTRY_SECRET", "Qx3vKbqUwp0zYR7sLaD8gTneImN5cAfH")
	env.RegisterDefault("ADMIN_SECRET", "savBs0F2daUjSd9syVovH6gXN4MuGQos")
	env.RegisterDefault("START_TIME", clock.Now().UTC().Format("2006-01-02 15:04"))
	env.RegisterDefault("LOG_LEVEL", "INFO")
	env.RegisterDefault("EMAILS_ENABLED", "TRUE")
	env.RegisterDefault("REGISTRY_SECRETARY_EMAIL", "secretary@alpaca.markets")
	env.RegisterDefault("OVERDUE_GRACE_DAYS", "0")
	env.RegisterDefault("BACKUP_PARALLELISM", "4")
	env.RegisterDefault("SNAPSHOT_WORKER_INTERVAL", "1h")
	env.RegisterDefault("DEADLINE_WORKER_INTERVAL", "1h")
	env.RegisterDefault("JOURNAL_WORKER_INTERVAL", "1m")
	env.RegisterDefault("JOURNAL_TIMEOUT", "10s")
	env.RegisterDefault("REGISTRY_PORT", "5995")
	env.RegisterDefault("REGISTRY_METRICS_PORT", "7777")
	env.RegisterDefault("STANDBY_MODE", "FALSE")

	// Postgres
	env.RegisterDefault("PGDATABASE", "goregistry")
	env.RegisterDefault("PGHOST", "127.0.0.1")
	env.RegisterDefault("PGUSER", "postgres")
	env.RegisterDefault("PGPASSWORD", "alpacas")

	// Registrar file exchange (SFTP)
	env.RegisterDefault("REGISTRAR_SFTP_HOST", "sftp.uat.registrar.local")
	env.RegisterDefault("REGISTRAR_SFTP_USER", "goregistry_uat")
	env.RegisterDefault("REGISTRAR_RSA", "id_rsa_registrar_uat")
	env.RegisterDefault("REGISTRAR_REMOTE_DIR", "/outbound")
	env.RegisterDefault("REGISTRAR_RETENTION_DAYS", "90")

	// Segment
	env.RegisterDefault("SEGMENT_KEY", "xmCnxB6n2DZkLushN3ZN0tvHW3CUJx6D")
}
