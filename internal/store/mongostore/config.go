package mongostore

import "time"

// Config represents the connection settings for the Mongo backend.
type Config struct {
	ConnectionURL   string
	Database        string
	ConnectTimeout  time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	RetryAttempts   int           // connection attempts before giving up, at least one
	RetryInterval   time.Duration // pause between attempts
}
