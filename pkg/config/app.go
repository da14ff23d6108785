package config

import "time"

var AppVersion = "DEVELOPMENT"

const (
	AppName = "cardbay"
	LogFile = "cardbay.log"
	LogsDir = "logs"
	PidFile = "cardbay.pid"
	CfgFile = "config.toml"

	// EnqueueWait is how long an async submit waits for queue space before
	// giving up.
	EnqueueWait = 100 * time.Millisecond
	// DefaultMountTimeout bounds mount/format requests issued by the CLI.
	DefaultMountTimeout = 30 * time.Second
)
