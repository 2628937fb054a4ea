// ABOUTME: CLI commands for remote database sync.
// ABOUTME: Runs the reconciliation engine and manages sync settings and login.
package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/woofdog/healthrec/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync the database with a remote copy",
	Long: `Sync the database file with its copy on an FTP/FTPS server or in a
Microsoft OneDrive folder.

HOW IT DECIDES:

  The side modified more recently wins. A newer remote copy replaces
  the local file; a newer local file is uploaded through a hidden
  shadow file, verified byte for byte, and then renamed into place so
  the remote never holds a half-written database.

GETTING STARTED:

  1. Configure the backend:
     healthrec sync setup --mode ftp --host ftp.example.com --user me

  2. Run a sync:
     healthrec sync

  For OneDrive, the first run prints a login page. Sign in, copy the
  code from the address bar, and hand it over:
     healthrec sync login <code>

COMMANDS:

  setup       Configure the sync backend
  login       Store a OneDrive authorization code

Press Ctrl-C during a sync to cancel after the current step.`,
	RunE: runSync,
}

var syncPassword string

func runSync(cmd *cobra.Command, args []string) error {
	if cfg.GetBackend() != "sqlite" {
		return fmt.Errorf("sync requires the sqlite backend")
	}
	if table.ReadOnly() {
		return fmt.Errorf("database is read-only; refusing to sync")
	}

	scfg, err := sync.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading sync config: %w", err)
	}
	if scfg.Mode == sync.SyncNone {
		return fmt.Errorf("sync is not configured; run 'healthrec sync setup' first")
	}
	if err := scfg.Validate(); err != nil {
		return err
	}

	var client sync.Transport
	switch scfg.Mode {
	case sync.SyncFTP, sync.SyncFTPS:
		password := scfg.PlainPassword()
		if syncPassword != "" {
			password = syncPassword
		}
		if password == "" {
			return fmt.Errorf("no FTP password; pass --password or store one with " +
				"'healthrec sync setup --password ... --remember-password'")
		}
		client = sync.NewFTP(scfg.Host, scfg.Port, scfg.User,
			password, scfg.Mode == sync.SyncFTPS)
	case sync.SyncOneDrive:
		od := sync.NewOneDrive(scfg.ClientID, scfg.PlainRefreshToken())
		if scfg.AuthCode != "" {
			od.SetAuthCode(scfg.AuthCode)
			scfg.AuthCode = ""
		}
		od.OnTokenRefresh = func(token string) {
			scfg.SetRefreshToken(token)
		}
		client = od
	}

	eng := sync.NewEngine(table, client, scfg.RemoteDir)
	eng.Progress = func(s sync.Stage) {
		fmt.Printf("  %s...\n", s)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			color.Yellow("Cancelling after the current step...")
			eng.Cancel()
		case <-done:
		}
	}()

	st := eng.Run()
	close(done)

	// Persist the cleared auth code and any rotated refresh token.
	if err := sync.SaveConfig(scfg); err != nil {
		color.Yellow("⚠ Could not save sync config: %v", err)
	}

	switch {
	case st.Cancelled:
		color.Yellow("✗ Sync cancelled")
		return nil
	case st.Result == sync.OK:
		color.Green("✓ Sync complete")
		return nil
	case st.Result == sync.ErrLogin:
		fmt.Println("Authorization required. Open this page, sign in, and copy the")
		fmt.Println("code from the address you are redirected to:")
		fmt.Printf("\n  %s\n\n", st.AuthURL)
		fmt.Println("Then run: healthrec sync login <code>")
		return fmt.Errorf("sync needs login")
	default:
		return fmt.Errorf("sync failed during %s: %s", st.Stage, st.Result)
	}
}

var (
	setupMode             string
	setupHost             string
	setupPort             int
	setupUser             string
	setupPassword         string
	setupRememberPassword bool
	setupDir              string
	setupClientID         string
	setupRememberToken    bool
)

var syncSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the sync backend",
	Long: `Configure how the database syncs. Only the flags you pass are
changed; everything else keeps its stored value.

MODES:

  none        Disable sync
  ftp         Plain FTP
  ftps        FTP over explicit TLS
  onedrive    Microsoft OneDrive (needs --client-id)

Passwords and tokens are stored obfuscated, not encrypted, and only
when the matching remember flag is on.

EXAMPLES:

  healthrec sync setup --mode ftps --host ftp.example.com --port 21 \
      --user alice --password secret --remember-password --dir backups
  healthrec sync setup --mode onedrive --client-id <app-id> --remember-token`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scfg, err := sync.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading sync config: %w", err)
		}

		if cmd.Flags().Changed("mode") {
			scfg.Mode = sync.Type(setupMode)
		}
		if cmd.Flags().Changed("host") {
			scfg.Host = setupHost
		}
		if cmd.Flags().Changed("port") {
			scfg.Port = setupPort
		}
		if cmd.Flags().Changed("user") {
			scfg.User = setupUser
		}
		if cmd.Flags().Changed("password") {
			scfg.SetPassword(setupPassword)
		}
		if cmd.Flags().Changed("remember-password") {
			scfg.RememberPassword = setupRememberPassword
		}
		if cmd.Flags().Changed("dir") {
			scfg.RemoteDir = setupDir
		}
		if cmd.Flags().Changed("client-id") {
			scfg.ClientID = setupClientID
		}
		if cmd.Flags().Changed("remember-token") {
			scfg.RememberToken = setupRememberToken
		}

		if err := scfg.Validate(); err != nil {
			return err
		}
		if err := sync.SaveConfig(scfg); err != nil {
			return fmt.Errorf("saving sync config: %w", err)
		}

		color.Green("✓ Sync configured (%s)", scfg.Mode)
		return nil
	},
}

var syncLoginCmd = &cobra.Command{
	Use:   "login <code>",
	Short: "Store a OneDrive authorization code",
	Long: `Store the authorization code copied from the OneDrive login page.
The code is single-use; the next 'healthrec sync' exchanges it for
tokens.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scfg, err := sync.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading sync config: %w", err)
		}
		if scfg.Mode != sync.SyncOneDrive {
			return fmt.Errorf("sync mode is %s, not onedrive", scfg.Mode)
		}

		scfg.AuthCode = args[0]
		if err := sync.SaveConfig(scfg); err != nil {
			return fmt.Errorf("saving sync config: %w", err)
		}

		color.Green("✓ Authorization code stored")
		fmt.Println("Run 'healthrec sync' to finish logging in.")
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncPassword, "password", "", "FTP password for this run only")

	syncSetupCmd.Flags().StringVar(&setupMode, "mode", "", "sync mode: none, ftp, ftps, onedrive")
	syncSetupCmd.Flags().StringVar(&setupHost, "host", "", "FTP host name")
	syncSetupCmd.Flags().IntVar(&setupPort, "port", 21, "FTP port")
	syncSetupCmd.Flags().StringVar(&setupUser, "user", "", "FTP user name")
	syncSetupCmd.Flags().StringVar(&setupPassword, "password", "", "FTP password")
	syncSetupCmd.Flags().BoolVar(&setupRememberPassword, "remember-password", false, "store the password")
	syncSetupCmd.Flags().StringVar(&setupDir, "dir", "", "remote directory holding the database")
	syncSetupCmd.Flags().StringVar(&setupClientID, "client-id", "", "OneDrive application client ID")
	syncSetupCmd.Flags().BoolVar(&setupRememberToken, "remember-token", false, "store the refresh token")

	syncCmd.AddCommand(syncSetupCmd, syncLoginCmd)
	rootCmd.AddCommand(syncCmd)
}
