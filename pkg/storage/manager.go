package storage

import (
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the configured disks. The local disk is always available;
// the s3 disk only when a bucket is configured.
func Connect() error {
	managerMu.Lock()
	defer managerMu.Unlock()

	disks["local"] = NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())

	if config.StorageS3Bucket() != "" {
		d, err := NewS3Disk(S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			disks["s3"] = d
		}
	}

	name := config.StorageDefault()
	if _, ok := disks[name]; !ok {
		return fmt.Errorf("storage: default disk %q is not configured", name)
	}
	defaultDisk = name
	return nil
}

// Use returns the named disk.
func Use(name string) (Disk, error) {
	managerMu.RLock()
	defer managerMu.RUnlock()
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// RegisterDisk plugs in a disk under name. Tests use it to swap in a
// temporary local disk.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}

// Default returns the disk named by STORAGE_DISK. Before Connect it is a
// local disk under ./storage.
func Default() Disk {
	managerMu.Lock()
	defer managerMu.Unlock()
	if _, ok := disks[defaultDisk]; !ok {
		disks[defaultDisk] = NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	}
	return disks[defaultDisk]
}

// Local returns the local disk, or nil when the default disk is elsewhere
// and local was never booted.
func Local() *LocalDisk {
	managerMu.RLock()
	defer managerMu.RUnlock()
	d, _ := disks["local"].(*LocalDisk)
	return d
}
