package storage

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/salesops/kpi-backend-go/internal/config"
)

type FileStorage interface {
	// Upload stores a file and returns its path relative to the storage root
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download retrieves a file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file
	Delete(ctx context.Context, path string) error

	// GetURL returns a URL the file can be fetched from
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)
}

// Target is a named storage destination of exported reports
type Target struct {
	Name    string
	Storage FileStorage
	// Dir is prepended to every uploaded path
	Dir string
}

// NewTargets builds the export destinations: the local directory first, then
// the SFTP drop when the storage type is sftp. remoteDir applies to SFTP only.
func NewTargets(storageCfg config.StorageConfig, sftpCfg config.SFTPConfig, remoteDir string) ([]Target, error) {
	local, err := NewLocalStorage(storageCfg.BasePath, storageCfg.BaseURL)
	if err != nil {
		return nil, err
	}
	targets := []Target{{Name: "local", Storage: local}}

	if storageCfg.Type != "sftp" {
		return targets, nil
	}
	remote, err := NewSFTPStorage(SFTPConfig{
		Host:     sftpCfg.Host,
		Port:     strconv.Itoa(sftpCfg.Port),
		User:     sftpCfg.User,
		Password: sftpCfg.Password,
		HostKey:  sftpCfg.HostKey,
		BasePath: sftpCfg.BasePath,
		Timeout:  sftpCfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return append(targets, Target{Name: "sftp", Storage: remote, Dir: remoteDir}), nil
}
