package fs

const (
	TohURL        = "TOH_URL"
	LastTarget    = "LAST_TARGET"
	LastSubtarget = "LAST_SUBTARGET"
	BackupPath    = "BACKUP_PATH"
	RouterIP      = "ROUTER_IP"
	LogLevel      = "LOG_LEVEL"
)
