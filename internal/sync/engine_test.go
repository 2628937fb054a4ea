// ABOUTME: Tests for the sync engine state machine using an in-memory transport.
// ABOUTME: Covers both reconciliation directions, verify retries, cancellation, and failures.
package sync

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woofdog/healthrec/internal/models"
	"github.com/woofdog/healthrec/internal/storage"
)

// fakeTransport serves remote files from a map. Each call appends its name
// to calls so tests can assert the stage order. When cancelAfter matches a
// call name the engine is cancelled right after that call returns, and
// corruptUploads flips a byte in that many uploads before behaving.
type fakeTransport struct {
	files map[string][]byte

	changeDirResult Result
	corruptUploads  int
	cancelAfter     string
	engine          *Engine

	calls        []string
	uploads      int
	disconnected bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{files: map[string][]byte{}}
}

func (f *fakeTransport) record(name string) {
	f.calls = append(f.calls, name)
	if f.cancelAfter == name && f.engine != nil {
		f.engine.Cancel()
	}
}

func (f *fakeTransport) ChangeDir(dir string) Result {
	f.record("changedir")
	return f.changeDirResult
}

func (f *fakeTransport) DownloadFile(w io.Writer, name string) Result {
	f.record("download")
	data, ok := f.files[name]
	if !ok {
		return ErrReject
	}
	if _, err := w.Write(data); err != nil {
		return ErrNetwork
	}
	return OK
}

func (f *fakeTransport) RemoveFile(name string) Result {
	f.record("remove")
	if _, ok := f.files[name]; !ok {
		return ErrReject
	}
	delete(f.files, name)
	return OK
}

func (f *fakeTransport) RenameFile(oldName, newName string) Result {
	f.record("rename")
	data, ok := f.files[oldName]
	if !ok {
		return ErrReject
	}
	delete(f.files, oldName)
	f.files[newName] = data
	return OK
}

func (f *fakeTransport) UploadFile(r io.Reader, name string) Result {
	f.record("upload")
	f.uploads++
	data, err := io.ReadAll(r)
	if err != nil {
		return ErrNetwork
	}
	if f.corruptUploads > 0 {
		f.corruptUploads--
		data = append([]byte{}, data...)
		data[len(data)/2] ^= 0xff
	}
	f.files[name] = data
	return OK
}

func (f *fakeTransport) Disconnect() Result {
	f.disconnected = true
	return OK
}

// loginFake adds the explicit login step FTP needs.
type loginFake struct {
	*fakeTransport
	loginResult Result
}

func (f *loginFake) Login() Result {
	f.record("login")
	return f.loginResult
}

// authFake reports a login page like the OneDrive transport does.
type authFake struct {
	*fakeTransport
	url string
}

func (f *authFake) AuthURL() string { return f.url }

func setupLocalTable(t *testing.T) (*storage.SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "health.db")
	table := storage.NewSQLite()
	require.True(t, table.SetFileName(path))
	t.Cleanup(func() { table.SetFileName("") })
	return table, path
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestSyncUploadsWhenRemoteMissing(t *testing.T) {
	table, path := setupLocalTable(t)
	rec := models.NewBodyWeight()
	rec.Weight = 81.5
	require.True(t, table.AddBodyWeight(rec))

	ft := newFakeTransport()
	eng := NewEngine(table, ft, "backups")
	ft.engine = eng

	st := eng.Run()
	assert.Equal(t, OK, st.Result)
	assert.Equal(t, StageDone, st.Stage)
	assert.False(t, st.Cancelled)

	assert.Equal(t, readFile(t, path), ft.files["health.db"])
	assert.NotContains(t, ft.files, ".health.db")
	assert.True(t, ft.disconnected)

	_, err := os.Stat(filepath.Join(filepath.Dir(path), ".health.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestSyncEqualTimestampsSkip(t *testing.T) {
	table, path := setupLocalTable(t)
	rec := models.NewBodyWeight()
	require.True(t, table.AddBodyWeight(rec))
	require.True(t, table.SetLastModified(5000))

	ft := newFakeTransport()
	ft.files["health.db"] = readFile(t, path)
	eng := NewEngine(table, ft, "")
	ft.engine = eng

	st := eng.Run()
	assert.Equal(t, OK, st.Result)
	assert.Equal(t, StageDone, st.Stage)
	assert.Zero(t, ft.uploads)
}

func TestSyncRemoteNewerReplacesLocal(t *testing.T) {
	table, path := setupLocalTable(t)
	require.True(t, table.SetLastModified(100))

	remotePath := filepath.Join(t.TempDir(), "remote.db")
	remote := storage.NewSQLite()
	require.True(t, remote.SetFileName(remotePath))
	rec := models.NewBloodPressure()
	rec.Systolic = 128
	rec.Diastolic = 83
	require.True(t, remote.AddBloodPressure(rec))
	require.True(t, remote.SetLastModified(200))
	require.True(t, remote.SetFileName(""))

	ft := newFakeTransport()
	ft.files["health.db"] = readFile(t, remotePath)
	eng := NewEngine(table, ft, "")
	ft.engine = eng

	st := eng.Run()
	assert.Equal(t, OK, st.Result)
	assert.Equal(t, StageDone, st.Stage)
	assert.Zero(t, ft.uploads)

	// The local table was rebound to the downloaded copy.
	assert.Equal(t, path, table.FileName())
	got := table.BloodPressureByID(rec.ID)
	require.NotNil(t, got)
	assert.Equal(t, 128, got.Systolic)
	lm, ok := table.LastModified()
	require.True(t, ok)
	assert.Equal(t, int64(200), lm)
}

func TestSyncVerifyRetriesCorruptedUpload(t *testing.T) {
	table, path := setupLocalTable(t)
	require.True(t, table.SetLastModified(300))

	ft := newFakeTransport()
	ft.corruptUploads = 2
	eng := NewEngine(table, ft, "")
	ft.engine = eng

	st := eng.Run()
	assert.Equal(t, OK, st.Result)
	assert.Equal(t, StageDone, st.Stage)
	assert.Equal(t, 3, ft.uploads)
	assert.Equal(t, readFile(t, path), ft.files["health.db"])
}

func TestSyncVerifyGivesUpAfterRetryBudget(t *testing.T) {
	table, _ := setupLocalTable(t)

	ft := newFakeTransport()
	ft.corruptUploads = 100
	eng := NewEngine(table, ft, "")
	ft.engine = eng

	st := eng.Run()
	assert.Equal(t, ErrReject, st.Result)
	assert.Equal(t, StageVerify, st.Stage)
	assert.Equal(t, 5, ft.uploads)
	assert.True(t, ft.disconnected)
}

func TestSyncCancelStopsCleanly(t *testing.T) {
	table, _ := setupLocalTable(t)

	ft := newFakeTransport()
	ft.cancelAfter = "changedir"
	eng := NewEngine(table, ft, "")
	ft.engine = eng

	st := eng.Run()
	assert.True(t, st.Cancelled)
	assert.Equal(t, OK, st.Result)
	assert.Equal(t, StageChangeDir, st.Stage)
	assert.NotContains(t, ft.calls, "download")
	assert.True(t, ft.disconnected)
}

func TestSyncNetworkFailureReportsStage(t *testing.T) {
	table, _ := setupLocalTable(t)

	ft := newFakeTransport()
	ft.changeDirResult = ErrNetwork
	eng := NewEngine(table, ft, "")
	ft.engine = eng

	st := eng.Run()
	assert.Equal(t, ErrNetwork, st.Result)
	assert.Equal(t, StageChangeDir, st.Stage)
	assert.True(t, ft.disconnected)
}

func TestSyncLoginStageRunsFirst(t *testing.T) {
	table, _ := setupLocalTable(t)

	ft := &loginFake{fakeTransport: newFakeTransport(), loginResult: ErrReject}
	eng := NewEngine(table, ft, "")
	ft.engine = eng

	st := eng.Run()
	assert.Equal(t, ErrReject, st.Result)
	assert.Equal(t, StageLogin, st.Stage)
	assert.Equal(t, []string{"login"}, ft.calls)
}

func TestSyncLoginSuccessProceeds(t *testing.T) {
	table, _ := setupLocalTable(t)

	ft := &loginFake{fakeTransport: newFakeTransport(), loginResult: OK}
	eng := NewEngine(table, ft, "")
	ft.engine = eng

	st := eng.Run()
	assert.Equal(t, OK, st.Result)
	assert.Equal(t, StageDone, st.Stage)
	assert.Equal(t, "login", ft.calls[0])
	assert.Equal(t, "changedir", ft.calls[1])
}

func TestSyncLoginRequiredSurfacesAuthURL(t *testing.T) {
	table, _ := setupLocalTable(t)

	ft := &authFake{fakeTransport: newFakeTransport(), url: "https://login.example.com/consent"}
	ft.changeDirResult = ErrLogin
	eng := NewEngine(table, ft, "")
	ft.engine = eng

	st := eng.Run()
	assert.Equal(t, ErrLogin, st.Result)
	assert.Equal(t, "https://login.example.com/consent", st.AuthURL)
}

func TestSyncProgressReportsStages(t *testing.T) {
	table, _ := setupLocalTable(t)

	ft := newFakeTransport()
	eng := NewEngine(table, ft, "")
	ft.engine = eng
	var stages []Stage
	eng.Progress = func(s Stage) { stages = append(stages, s) }

	st := eng.Run()
	require.Equal(t, OK, st.Result)
	assert.Equal(t, []Stage{
		StageChangeDir, StageFetch, StageRemove, StageRemoveShadow,
		StageUpload, StageVerify, StageRename, StageDone,
	}, stages)
}
