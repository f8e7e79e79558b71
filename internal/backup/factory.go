package backup

import (
	"context"
	"fmt"
	"os"
)

// Open selects a backup Store implementation using environment variables.
//
//	FARMCORE_BACKUP_DRIVER: fs|s3|memory (default fs)
//	FARMCORE_BACKUP_FS_ROOT: directory root when driver=fs (default ./backupdata)
//	(S3 specific variables documented in s3.go)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("FARMCORE_BACKUP_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("FARMCORE_BACKUP_FS_ROOT"))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backup driver %s", driver)
	}
}
