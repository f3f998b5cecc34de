package config

import "time"

const (
	// DefaultMaxContentLength caps an upload at 10 MiB.
	DefaultMaxContentLength = 10 << 20

	// DefaultConversionTimeout bounds one converter run. Headless office
	// suites serialize invocations, so this also covers queueing behind
	// other requests.
	DefaultConversionTimeout = 120 * time.Second

	// DefaultLogKeep is how many log files LOG_DIR retains.
	DefaultLogKeep = 10

	// MaxFilenameLength is the longest sanitized upload name written to disk.
	// Most filesystems cap a path component at 255 bytes.
	MaxFilenameLength = 200

	// ProbeTimeout bounds the converter --version check.
	ProbeTimeout = 15 * time.Second
)
