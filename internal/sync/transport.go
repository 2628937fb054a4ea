// ABOUTME: Transport abstraction shared by the FTP and OneDrive sync backends.
// ABOUTME: Every call reports a coarse Result instead of an error value.
package sync

import "io"

// Result classifies the outcome of a transport call.
type Result int

const (
	// OK means the call succeeded.
	OK Result = iota
	// ErrNetwork means the call failed to reach the remote side.
	ErrNetwork
	// ErrReject means the remote side refused the operation.
	ErrReject
	// ErrLogin means the user has to complete an interactive login first.
	ErrLogin
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case ErrNetwork:
		return "network error"
	case ErrReject:
		return "rejected"
	case ErrLogin:
		return "login required"
	default:
		return "unknown"
	}
}

// Transport is the remote file store a sync run talks to. Implementations
// never return Go errors across this boundary; faults collapse into the
// Result classification so the engine can decide whether a stage is fatal.
type Transport interface {
	// ChangeDir selects the remote directory holding the database file.
	// An empty dir selects the root.
	ChangeDir(dir string) Result
	// DownloadFile copies the remote file into w.
	DownloadFile(w io.Writer, name string) Result
	// RemoveFile deletes the remote file. Removing a file that does not
	// exist reports ErrReject.
	RemoveFile(name string) Result
	// RenameFile renames a remote file within the current directory.
	RenameFile(oldName, newName string) Result
	// UploadFile stores the contents of r as the remote file.
	UploadFile(r io.Reader, name string) Result
	// Disconnect releases the connection. Safe to call after a failure.
	Disconnect() Result
}

// LoginTransport is implemented by transports that need an explicit login
// step before any other call, such as FTP.
type LoginTransport interface {
	Transport
	Login() Result
}

// AuthURLTransport is implemented by transports that can point the user at
// an interactive login page when a call reports ErrLogin.
type AuthURLTransport interface {
	Transport
	AuthURL() string
}
