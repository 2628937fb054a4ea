// ABOUTME: Engine runs one reconciliation pass between the local database and a remote copy.
// ABOUTME: Last-modified decides the direction; uploads go through a verified shadow file.
package sync

import (
	"bytes"
	"crypto/md5"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/woofdog/healthrec/internal/storage"
)

// Stage identifies the sync step currently running.
type Stage int

const (
	StageLogin Stage = iota
	StageChangeDir
	StageFetch
	StageRemove
	StageRemoveShadow
	StageUpload
	StageVerify
	StageRename
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageLogin:
		return "login"
	case StageChangeDir:
		return "change directory"
	case StageFetch:
		return "fetch"
	case StageRemove:
		return "remove remote file"
	case StageRemoveShadow:
		return "remove remote shadow"
	case StageUpload:
		return "upload"
	case StageVerify:
		return "verify"
	case StageRename:
		return "rename"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// maxUploadAttempts bounds the remove/upload/verify cycle when the
// re-downloaded copy keeps differing from the local file.
const maxUploadAttempts = 5

// Status is the outcome of a sync run. Stage is the step the run ended in,
// StageDone on success. A cancelled run reports Cancelled with Result OK.
// When Result is ErrLogin, AuthURL carries the page the user has to visit.
type Status struct {
	Stage     Stage
	Result    Result
	Cancelled bool
	AuthURL   string
}

type cmpResult int

const (
	cmpEqual cmpResult = iota
	cmpRemoteOlder
	cmpRemoteNewer
)

// Engine reconciles the bound local database file with its copy on a
// remote store. One Engine serves one run; Cancel may be called from
// another goroutine and stops the run after the current transport call.
type Engine struct {
	table     storage.Table
	client    Transport
	remoteDir string

	// Progress, when set, is called as each stage starts.
	Progress func(Stage)

	stage  Stage
	cancel atomic.Bool
}

// NewEngine prepares a sync run for the given bound table. remoteDir is the
// directory on the remote store holding the database file.
func NewEngine(table storage.Table, client Transport, remoteDir string) *Engine {
	return &Engine{table: table, client: client, remoteDir: remoteDir}
}

// Cancel asks a running sync to stop. The run finishes the transport call in
// flight, then terminates cleanly without touching either side further.
func (e *Engine) Cancel() {
	e.cancel.Store(true)
}

// Run executes the sync and blocks until it terminates. The local shadow
// file is removed and the transport disconnected no matter how the run ends.
func (e *Engine) Run() Status {
	localPath := e.table.FileName()
	name := filepath.Base(localPath)
	shadowPath := filepath.Join(filepath.Dir(localPath), "."+name)

	st := e.run(localPath, shadowPath, name)
	e.cleanup(shadowPath)
	if st.Result == ErrLogin {
		if a, ok := e.client.(AuthURLTransport); ok {
			st.AuthURL = a.AuthURL()
		}
	}
	return st
}

func (e *Engine) run(localPath, shadowPath, name string) Status {
	if lt, ok := e.client.(LoginTransport); ok {
		e.enter(StageLogin)
		res := lt.Login()
		if e.cancelled() {
			return e.stop()
		}
		if res != OK {
			return e.finish(res)
		}
	}

	e.enter(StageChangeDir)
	res := e.client.ChangeDir(e.remoteDir)
	if e.cancelled() {
		return e.stop()
	}
	if res != OK {
		return e.finish(res)
	}

	e.enter(StageFetch)
	res = e.fetch(shadowPath, name)
	if e.cancelled() {
		return e.stop()
	}
	switch res {
	case OK:
		switch e.compare(shadowPath) {
		case cmpRemoteNewer:
			if !e.swapLocal(localPath, shadowPath) {
				return e.finish(ErrReject)
			}
			e.enter(StageDone)
			return e.finish(OK)
		case cmpEqual:
			e.enter(StageDone)
			return e.finish(OK)
		case cmpRemoteOlder:
			// Local wins, fall through to the upload cycle.
		}
	case ErrNetwork, ErrLogin:
		return e.finish(res)
	default:
		// The remote file is missing or unreadable; upload ours.
	}

	for attempt := 1; ; attempt++ {
		// The remote file and shadow may not exist yet, so a refusal
		// here is not fatal.
		e.enter(StageRemove)
		res = e.client.RemoveFile(name)
		if e.cancelled() {
			return e.stop()
		}
		if res == ErrNetwork || res == ErrLogin {
			return e.finish(res)
		}

		e.enter(StageRemoveShadow)
		res = e.client.RemoveFile("." + name)
		if e.cancelled() {
			return e.stop()
		}
		if res == ErrNetwork || res == ErrLogin {
			return e.finish(res)
		}

		e.enter(StageUpload)
		local, err := os.Open(localPath)
		if err != nil {
			log.Error("open local database", "path", localPath, "err", err)
			return e.finish(ErrReject)
		}
		res = e.client.UploadFile(local, "."+name)
		local.Close()
		if e.cancelled() {
			return e.stop()
		}
		if res != OK {
			return e.finish(res)
		}

		e.enter(StageVerify)
		res = e.fetch(shadowPath, "."+name)
		if e.cancelled() {
			return e.stop()
		}
		if res != OK {
			return e.finish(res)
		}
		match, ok := filesMatch(localPath, shadowPath)
		if !ok {
			return e.finish(ErrReject)
		}
		if match {
			break
		}
		if attempt >= maxUploadAttempts {
			log.Error("upload verification kept failing", "attempts", attempt)
			return e.finish(ErrReject)
		}
	}

	e.enter(StageRename)
	res = e.client.RenameFile("."+name, name)
	if res != OK {
		return e.finish(res)
	}
	e.enter(StageDone)
	return e.finish(OK)
}

func (e *Engine) enter(s Stage) {
	e.stage = s
	if e.Progress != nil {
		e.Progress(s)
	}
}

func (e *Engine) cancelled() bool {
	return e.cancel.Load()
}

func (e *Engine) finish(res Result) Status {
	return Status{Stage: e.stage, Result: res}
}

func (e *Engine) stop() Status {
	return Status{Stage: e.stage, Result: OK, Cancelled: true}
}

// fetch downloads the named remote file into the local shadow path.
func (e *Engine) fetch(shadowPath, name string) Result {
	f, err := os.Create(shadowPath)
	if err != nil {
		log.Error("create shadow file", "path", shadowPath, "err", err)
		return ErrReject
	}
	res := e.client.DownloadFile(f, name)
	if err := f.Close(); err != nil && res == OK {
		log.Error("close shadow file", "path", shadowPath, "err", err)
		return ErrReject
	}
	return res
}

// compare opens the downloaded shadow with a scratch table and compares its
// last-modified stamp to the local one. A shadow that cannot be opened
// counts as never modified, so the local side wins.
func (e *Engine) compare(shadowPath string) cmpResult {
	var localTime, remoteTime int64
	if t, ok := e.table.LastModified(); ok {
		localTime = t
	}
	scratch := storage.NewSQLite()
	if scratch.SetFileName(shadowPath) {
		if t, ok := scratch.LastModified(); ok {
			remoteTime = t
		}
	}
	scratch.SetFileName("")

	switch {
	case localTime == remoteTime:
		return cmpEqual
	case localTime < remoteTime:
		return cmpRemoteNewer
	default:
		return cmpRemoteOlder
	}
}

// swapLocal installs the downloaded shadow as the local database. The table
// is unbound while the files move and rebound afterwards.
func (e *Engine) swapLocal(localPath, shadowPath string) bool {
	e.table.SetFileName("")
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		log.Error("remove local database", "path", localPath, "err", err)
	}
	if err := os.Rename(shadowPath, localPath); err != nil {
		log.Error("install remote database", "path", localPath, "err", err)
		return false
	}
	return e.table.SetFileName(localPath)
}

func (e *Engine) cleanup(shadowPath string) {
	if err := os.Remove(shadowPath); err != nil && !os.IsNotExist(err) {
		log.Debug("remove shadow file", "path", shadowPath, "err", err)
	}
	e.client.Disconnect()
}

func filesMatch(a, b string) (bool, bool) {
	da, err := fileDigest(a)
	if err != nil {
		log.Error("digest file", "path", a, "err", err)
		return false, false
	}
	db, err := fileDigest(b)
	if err != nil {
		log.Error("digest file", "path", b, "err", err)
		return false, false
	}
	return bytes.Equal(da, db), true
}

func fileDigest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
