package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/gamevault/storefront/config"
	"github.com/gamevault/storefront/pkg/logger"
)

var (
	mu          sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the "local" disk and, when S3_BUCKET is set, the "s3" disk.
// STORAGE_DISK picks the default.
func Connect(ctx context.Context) error {
	local, err := NewLocal(config.StorageLocalRoot(), config.StorageURL())
	if err != nil {
		return err
	}
	RegisterDisk("local", local)

	if config.StorageS3Bucket() != "" {
		d, err := NewS3(ctx, S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			RegisterDisk("s3", d)
		}
	}

	name := config.StorageDefault()
	if _, err := Use(name); err != nil {
		return err
	}
	mu.Lock()
	defaultDisk = name
	mu.Unlock()
	return nil
}

// RegisterDisk installs d under name, replacing any previous disk.
func RegisterDisk(name string, d Disk) {
	mu.Lock()
	disks[name] = d
	mu.Unlock()
}

// Use returns the named disk.
func Use(name string) (Disk, error) {
	mu.RLock()
	d, ok := disks[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the STORAGE_DISK disk, or nil before Connect.
func Default() Disk {
	mu.RLock()
	defer mu.RUnlock()
	return disks[defaultDisk]
}
