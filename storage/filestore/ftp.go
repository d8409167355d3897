// Package filestore stores submitted documents on the school's FTP server.
package filestore

import (
	"context"
	"io"
	"io/ioutil"
	"net/textproto"
	"sync"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/errors"

	"github.com/planacad/backend/core"
)

// FTPStore holds a single logged-in control connection. FTP control
// connections are stateful (CWD is per-connection) so every operation runs
// under the mutex and works from the root with absolute paths.
type FTPStore struct {
	mu     sync.Mutex
	conn   *ftp.ServerConn
	conf   core.FileStoreConfig
	logger core.Logger
}

var _ core.FileStore = (*FTPStore)(nil)

func NewFTPStore(conf *core.Config, logger core.Logger) (*FTPStore, error) {
	s := &FTPStore{conf: conf.FileStore, logger: logger}
	conn, err := s.connect()
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return s, nil
}

func (s *FTPStore) connect() (*ftp.ServerConn, error) {
	conn, err := ftp.Dial(s.conf.Host, ftp.DialWithTimeout(s.conf.Timeout))
	if err != nil {
		return nil, errors.Wrapf(core.ErrFileStoreUnavailable, "dialing %s: %v", s.conf.Host, err)
	}
	if err = conn.Login(s.conf.User, s.conf.Password); err != nil {
		_ = conn.Quit()
		return nil, errors.Wrapf(core.ErrFileStoreUnavailable, "logging in: %v", err)
	}
	return conn, nil
}

// withConn runs op under the lock, reconnecting once when the control
// connection has gone stale.
func (s *FTPStore) withConn(ctx context.Context, op func(conn *ftp.ServerConn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.conn.NoOp() != nil {
		if s.conn != nil {
			_ = s.conn.Quit()
		}
		conn, err := s.connect()
		if err != nil {
			return err
		}
		s.conn = conn
	}
	return op(s.conn)
}

// EnsureDir creates one directory level. An already existing directory is not
// an error: FTP reports it as a 550 reply and the store swallows it so the
// call is idempotent.
func (s *FTPStore) EnsureDir(ctx context.Context, path string) error {
	return s.withConn(ctx, func(conn *ftp.ServerConn) error {
		err := conn.MakeDir(path)
		if err == nil {
			return nil
		}
		if tpErr, ok := err.(*textproto.Error); ok && tpErr.Code == ftp.StatusFileUnavailable {
			return nil
		}
		return errors.Wrapf(err, "creating directory %s", path)
	})
}

func (s *FTPStore) Store(ctx context.Context, path string, r io.Reader) error {
	return s.withConn(ctx, func(conn *ftp.ServerConn) error {
		if err := conn.Stor(path, r); err != nil {
			return errors.Wrapf(err, "storing %s", path)
		}
		return nil
	})
}

func (s *FTPStore) Fetch(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := s.withConn(ctx, func(conn *ftp.ServerConn) error {
		resp, err := conn.Retr(path)
		if err != nil {
			return errors.Wrapf(err, "retrieving %s", path)
		}
		defer resp.Close()
		if data, err = ioutil.ReadAll(resp); err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}
		return nil
	})
	return data, err
}

func (s *FTPStore) Delete(ctx context.Context, path string) error {
	return s.withConn(ctx, func(conn *ftp.ServerConn) error {
		if err := conn.Delete(path); err != nil {
			return errors.Wrapf(err, "deleting %s", path)
		}
		return nil
	})
}

func (s *FTPStore) List(ctx context.Context, path string) ([]string, error) {
	var names []string
	err := s.withConn(ctx, func(conn *ftp.ServerConn) error {
		var err error
		if names, err = conn.NameList(path); err != nil {
			return errors.Wrapf(err, "listing %s", path)
		}
		return nil
	})
	return names, err
}

func (s *FTPStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Quit()
	s.conn = nil
	return err
}
