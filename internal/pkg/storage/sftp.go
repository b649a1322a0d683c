package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPConfig holds the connection settings of a remote SFTP drop
type SFTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	// HostKey is an authorized_keys formatted public key; empty disables verification
	HostKey  string
	BasePath string
	Timeout  time.Duration
}

// SFTPStorage uploads files to a remote host. Each call opens its own session.
type SFTPStorage struct {
	cfg       SFTPConfig
	sshConfig *ssh.ClientConfig
}

func NewSFTPStorage(cfg SFTPConfig) (*SFTPStorage, error) {
	if cfg.Host == "" || cfg.User == "" {
		return nil, fmt.Errorf("sftp host and user are required")
	}
	if cfg.Port == "" {
		cfg.Port = "22"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.HostKey != "" {
		key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(cfg.HostKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse sftp host key: %w", err)
		}
		hostKeyCallback = ssh.FixedHostKey(key)
	} else {
		slog.Warn("SFTP host key verification disabled", "host", cfg.Host)
	}

	return &SFTPStorage{
		cfg: cfg,
		sshConfig: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
			HostKeyCallback: hostKeyCallback,
			Timeout:         cfg.Timeout,
		},
	}, nil
}

type sftpSession struct {
	conn   *ssh.Client
	client *sftp.Client
}

func (s *sftpSession) Close() error {
	return errors.Join(s.client.Close(), s.conn.Close())
}

func (s *SFTPStorage) dial(ctx context.Context) (*sftpSession, error) {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)

	dialer := net.Dialer{Timeout: s.cfg.Timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	c, chans, reqs, err := ssh.NewClientConn(netConn, addr, s.sshConfig)
	if err != nil {
		netConn.Close()
		return nil, fmt.Errorf("ssh handshake with %s failed: %w", addr, err)
	}
	conn := ssh.NewClient(c, chans, reqs)

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start sftp session: %w", err)
	}
	return &sftpSession{conn: conn, client: client}, nil
}

func (s *SFTPStorage) remotePath(p string) (string, error) {
	if strings.Contains(p, "..") {
		return "", fmt.Errorf("invalid file path: %s", p)
	}
	return path.Join(s.cfg.BasePath, path.Clean("/"+p)), nil
}

func (s *SFTPStorage) Upload(ctx context.Context, file io.Reader, p string, contentType string) (string, error) {
	remote, err := s.remotePath(p)
	if err != nil {
		return "", err
	}

	sess, err := s.dial(ctx)
	if err != nil {
		return "", err
	}
	defer sess.Close()

	if err := sess.client.MkdirAll(path.Dir(remote)); err != nil {
		return "", fmt.Errorf("failed to create remote directory: %w", err)
	}

	dst, err := sess.client.Create(remote)
	if err != nil {
		return "", fmt.Errorf("failed to create remote file: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to write remote file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to write remote file: %w", err)
	}

	slog.Info("Uploaded file over sftp", "host", s.cfg.Host, "path", remote)
	return strings.TrimPrefix(path.Clean("/"+p), "/"), nil
}

// remoteFile closes the sftp session together with the file
type remoteFile struct {
	*sftp.File
	sess *sftpSession
}

func (f *remoteFile) Close() error {
	return errors.Join(f.File.Close(), f.sess.Close())
}

func (s *SFTPStorage) Download(ctx context.Context, p string) (io.ReadCloser, error) {
	remote, err := s.remotePath(p)
	if err != nil {
		return nil, err
	}

	sess, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}

	f, err := sess.client.Open(remote)
	if err != nil {
		sess.Close()
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", p)
		}
		return nil, fmt.Errorf("failed to open remote file: %w", err)
	}
	return &remoteFile{File: f, sess: sess}, nil
}

func (s *SFTPStorage) Delete(ctx context.Context, p string) error {
	remote, err := s.remotePath(p)
	if err != nil {
		return err
	}

	sess, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.client.Remove(remote); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete remote file: %w", err)
	}
	return nil
}

func (s *SFTPStorage) GetURL(ctx context.Context, p string, expiry time.Duration) (string, error) {
	remote, err := s.remotePath(p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("sftp://%s%s", net.JoinHostPort(s.cfg.Host, s.cfg.Port), remote), nil
}

func (s *SFTPStorage) Exists(ctx context.Context, p string) (bool, error) {
	remote, err := s.remotePath(p)
	if err != nil {
		return false, err
	}

	sess, err := s.dial(ctx)
	if err != nil {
		return false, err
	}
	defer sess.Close()

	if _, err := sess.client.Stat(remote); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
