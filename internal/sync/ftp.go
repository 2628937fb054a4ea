// ABOUTME: FTP transport for database sync, with optional explicit FTPS.
// ABOUTME: Server refusals map to ErrReject, everything else to ErrNetwork.
package sync

import (
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/textproto"
	"strconv"
	"time"

	"github.com/jlaffaye/ftp"
)

const ftpDialTimeout = 5 * time.Second

// FTP talks to an FTP server. With TLS enabled the connection upgrades to
// explicit FTPS before login. Transfers run in binary mode.
type FTP struct {
	host     string
	port     int
	user     string
	password string
	useTLS   bool

	conn *ftp.ServerConn
}

// NewFTP prepares an FTP transport. Nothing connects until Login.
func NewFTP(host string, port int, user, password string, useTLS bool) *FTP {
	return &FTP{host: host, port: port, user: user, password: password, useTLS: useTLS}
}

// Login connects and authenticates.
func (f *FTP) Login() Result {
	addr := net.JoinHostPort(f.host, strconv.Itoa(f.port))
	opts := []ftp.DialOption{ftp.DialWithTimeout(ftpDialTimeout)}
	if f.useTLS {
		opts = append(opts, ftp.DialWithExplicitTLS(&tls.Config{ServerName: f.host}))
	}
	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return ftpResult(err)
	}
	if err := conn.Login(f.user, f.password); err != nil {
		_ = conn.Quit()
		return ftpResult(err)
	}
	f.conn = conn
	return OK
}

func (f *FTP) ChangeDir(dir string) Result {
	if f.conn == nil {
		return ErrNetwork
	}
	if dir == "" {
		dir = "."
	}
	if err := f.conn.ChangeDir(dir); err != nil {
		return ftpResult(err)
	}
	return OK
}

func (f *FTP) DownloadFile(w io.Writer, name string) Result {
	if f.conn == nil {
		return ErrNetwork
	}
	resp, err := f.conn.Retr(name)
	if err != nil {
		return ftpResult(err)
	}
	_, err = io.Copy(w, resp)
	if cerr := resp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return ftpResult(err)
	}
	return OK
}

func (f *FTP) RemoveFile(name string) Result {
	if f.conn == nil {
		return ErrNetwork
	}
	if err := f.conn.Delete(name); err != nil {
		return ftpResult(err)
	}
	return OK
}

func (f *FTP) RenameFile(oldName, newName string) Result {
	if f.conn == nil {
		return ErrNetwork
	}
	if err := f.conn.Rename(oldName, newName); err != nil {
		return ftpResult(err)
	}
	return OK
}

func (f *FTP) UploadFile(r io.Reader, name string) Result {
	if f.conn == nil {
		return ErrNetwork
	}
	if err := f.conn.Stor(name, r); err != nil {
		return ftpResult(err)
	}
	return OK
}

func (f *FTP) Disconnect() Result {
	if f.conn == nil {
		return OK
	}
	err := f.conn.Quit()
	f.conn = nil
	if err != nil {
		return ftpResult(err)
	}
	return OK
}

// ftpResult classifies an FTP error. A server reply code arrives as a
// textproto error and means the server refused the operation; anything
// else is a transport fault.
func ftpResult(err error) Result {
	var proto *textproto.Error
	if errors.As(err, &proto) {
		return ErrReject
	}
	return ErrNetwork
}
