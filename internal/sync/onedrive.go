// ABOUTME: OneDrive transport for database sync over the Microsoft Graph API.
// ABOUTME: OAuth2 tokens chain access token, refresh token, then interactive login.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	graphBaseURL = "https://graph.microsoft.com/v1.0/me/drive"

	oneDriveAuthURL     = "https://login.microsoftonline.com/consumers/oauth2/v2.0/authorize"
	oneDriveTokenURL    = "https://login.microsoftonline.com/consumers/oauth2/v2.0/token"
	oneDriveRedirectURL = "https://login.microsoftonline.com/common/oauth2/nativeclient"
)

// OneDrive stores the database in a Microsoft OneDrive folder. Calls get an
// access token on demand: a cached unexpired token is reused, a refresh
// token mints a new one, and a one-shot authorization code bootstraps the
// first pair. With none of those available calls report ErrLogin and
// AuthURL points at the consent page to visit.
type OneDrive struct {
	clientID string

	// OnTokenRefresh, when set, receives each rotated refresh token so the
	// caller can persist it for the next run.
	OnTokenRefresh func(refreshToken string)

	httpClient   *http.Client
	refreshToken string
	authCode     string
	accessToken  string
	expiry       time.Time
	dirPath      string
	authURL      string
}

// NewOneDrive prepares a OneDrive transport for the given application
// client ID. refreshToken may be empty on first use.
func NewOneDrive(clientID, refreshToken string) *OneDrive {
	return &OneDrive{
		clientID:     clientID,
		refreshToken: refreshToken,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetAuthCode hands over the authorization code copied from the login page.
// It is consumed on the next call that needs a token.
func (o *OneDrive) SetAuthCode(code string) {
	o.authCode = code
}

// AuthURL returns the login page to visit after a call reported ErrLogin.
func (o *OneDrive) AuthURL() string {
	return o.authURL
}

// ChangeDir resolves the remote directory the database lives in. An empty
// dir selects the drive root.
func (o *OneDrive) ChangeDir(dir string) Result {
	if res := o.ensureToken(); res != OK {
		return res
	}

	segments := []string{}
	for _, s := range strings.Split(dir, "/") {
		if s == "" {
			continue
		}
		segments = append(segments, url.PathEscape(s))
	}
	o.dirPath = strings.Join(segments, "/")
	if o.dirPath == "" {
		return OK
	}
	_, res := o.itemID(o.dirPath)
	return res
}

func (o *OneDrive) DownloadFile(w io.Writer, name string) Result {
	if res := o.ensureToken(); res != OK {
		return res
	}

	req, err := http.NewRequest(http.MethodGet, o.contentURL(o.remotePath(name)), nil)
	if err != nil {
		return ErrReject
	}
	resp, err := o.do(req)
	if err != nil {
		return ErrNetwork
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ErrReject
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return ErrNetwork
	}
	return OK
}

func (o *OneDrive) RemoveFile(name string) Result {
	if res := o.ensureToken(); res != OK {
		return res
	}

	id, res := o.itemID(o.remotePath(name))
	if res != OK {
		return res
	}
	req, err := http.NewRequest(http.MethodDelete, graphBaseURL+"/items/"+id, nil)
	if err != nil {
		return ErrReject
	}
	resp, err := o.do(req)
	if err != nil {
		return ErrNetwork
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return ErrReject
	}
	return OK
}

func (o *OneDrive) RenameFile(oldName, newName string) Result {
	if res := o.ensureToken(); res != OK {
		return res
	}

	dirID, res := o.itemID(o.dirPath)
	if res != OK {
		return res
	}
	fileID, res := o.itemID(o.remotePath(oldName))
	if res != OK {
		return res
	}

	patch, err := json.Marshal(map[string]any{
		"parentReference": map[string]string{"id": dirID},
		"name":            newName,
	})
	if err != nil {
		return ErrReject
	}
	req, err := http.NewRequest(http.MethodPatch,
		graphBaseURL+"/items/"+fileID, strings.NewReader(string(patch)))
	if err != nil {
		return ErrReject
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := o.do(req)
	if err != nil {
		return ErrNetwork
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ErrReject
	}
	return OK
}

func (o *OneDrive) UploadFile(r io.Reader, name string) Result {
	if res := o.ensureToken(); res != OK {
		return res
	}

	dirID, res := o.itemID(o.dirPath)
	if res != OK {
		return res
	}
	uploadURL := fmt.Sprintf("%s/items/%s:/%s:/content",
		graphBaseURL, dirID, url.PathEscape(name))
	req, err := http.NewRequest(http.MethodPut, uploadURL, r)
	if err != nil {
		return ErrReject
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := o.do(req)
	if err != nil {
		return ErrNetwork
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return ErrReject
	}
	return OK
}

// Disconnect is a no-op; Graph calls are stateless.
func (o *OneDrive) Disconnect() Result {
	return OK
}

// itemID looks up the drive item ID for a path relative to the drive root.
// An empty path resolves the root itself.
func (o *OneDrive) itemID(path string) (string, Result) {
	itemURL := graphBaseURL + "/root"
	if path != "" {
		itemURL += ":/" + path
	}
	req, err := http.NewRequest(http.MethodGet, itemURL, nil)
	if err != nil {
		return "", ErrReject
	}
	resp, err := o.do(req)
	if err != nil {
		return "", ErrNetwork
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", ErrReject
	}

	var item struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return "", ErrNetwork
	}
	if item.ID == "" {
		return "", ErrReject
	}
	return item.ID, OK
}

func (o *OneDrive) remotePath(name string) string {
	if o.dirPath == "" {
		return url.PathEscape(name)
	}
	return o.dirPath + "/" + url.PathEscape(name)
}

func (o *OneDrive) contentURL(path string) string {
	return graphBaseURL + "/root:/" + path + ":/content"
}

func (o *OneDrive) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+o.accessToken)
	return o.httpClient.Do(req)
}

// ensureToken makes sure a usable access token is cached, walking the chain
// cached token, refresh token, authorization code. Rotated refresh tokens
// go to OnTokenRefresh.
func (o *OneDrive) ensureToken() Result {
	if o.accessToken != "" && time.Now().Before(o.expiry) {
		return OK
	}
	o.accessToken = ""

	cfg := o.oauthConfig()
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, o.httpClient)

	var (
		tok *oauth2.Token
		err error
	)
	switch {
	case o.refreshToken != "":
		tok, err = cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: o.refreshToken}).Token()
	case o.authCode != "":
		tok, err = cfg.Exchange(ctx, o.authCode)
		o.authCode = ""
	default:
		o.authURL = cfg.AuthCodeURL("")
		return ErrLogin
	}
	if err != nil {
		var retrieve *oauth2.RetrieveError
		if errors.As(err, &retrieve) {
			return ErrReject
		}
		return ErrNetwork
	}

	o.accessToken = tok.AccessToken
	o.expiry = tok.Expiry
	if tok.RefreshToken != "" && tok.RefreshToken != o.refreshToken {
		o.refreshToken = tok.RefreshToken
		if o.OnTokenRefresh != nil {
			o.OnTokenRefresh(o.refreshToken)
		}
	}
	return OK
}

func (o *OneDrive) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:    o.clientID,
		RedirectURL: oneDriveRedirectURL,
		Scopes:      []string{"offline_access", "files.readwrite"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  oneDriveAuthURL,
			TokenURL: oneDriveTokenURL,
		},
	}
}
