// ABOUTME: Entry point for the astrdesk command-line client
// ABOUTME: Subcommand dispatch, config and token loading, client construction

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/astrdesk/astrdesk/internal/api"
	"github.com/astrdesk/astrdesk/internal/archive"
	"github.com/astrdesk/astrdesk/internal/config"
	"github.com/astrdesk/astrdesk/internal/export"
)

// Version is set by goreleaser at build time.
var version = "dev"

func usage() {
	fmt.Println("Usage: astrdesk <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login                    Log in and store the bearer token")
	fmt.Println("  status                   Show connection status and token expiry")
	fmt.Println("  sessions                 List remote sessions")
	fmt.Println("  new-session [platform]   Create a session")
	fmt.Println("  delete-session <id>      Delete a session")
	fmt.Println("  history <id>             Show a session's server-side history")
	fmt.Println("  chat [session-id]        Interactive chat (creates a session if omitted)")
	fmt.Println("  upload <path>            Upload a file, print its attachment id")
	fmt.Println("  download <name> <dest>   Download a server file")
	fmt.Println("  attachment <id> <dest>   Download an attachment")
	fmt.Println("  export <id> <out.html>   Export an archived session to HTML")
	fmt.Println("  version                  Print version")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := os.Args[2:]

	var err error
	switch os.Args[1] {
	case "login":
		err = runLogin(ctx)
	case "status":
		err = runStatus(ctx)
	case "sessions":
		err = runListSessions(ctx)
	case "new-session":
		err = runNewSession(ctx, args)
	case "delete-session":
		err = runDeleteSession(ctx, args)
	case "history":
		err = runHistory(ctx, args)
	case "chat":
		err = runChat(ctx, args)
	case "upload":
		err = runUpload(ctx, args)
	case "download":
		err = runDownload(ctx, args, false)
	case "attachment":
		err = runDownload(ctx, args, true)
	case "export":
		err = runExport(ctx, args)
	case "version":
		fmt.Println("astrdesk", version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// tokenPath returns where the bearer token is persisted between runs.
func tokenPath() string {
	return filepath.Join(filepath.Dir(config.DefaultPath()), "token")
}

// loadToken reads the persisted token, ASTRDESK_TOKEN taking priority.
func loadToken() string {
	if token := os.Getenv("ASTRDESK_TOKEN"); token != "" {
		return token
	}
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// saveToken persists the token for later runs.
func saveToken(token string) error {
	path := tokenPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}

// setup loads config, installs logging, and builds a client carrying
// any persisted token.
func setup() (*config.Config, *api.Client, error) {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	setupLogging(cfg.Logging)

	client := api.New(cfg.Server.URL, api.Options{
		Username:          cfg.Auth.Username,
		Password:          cfg.Auth.Password,
		Token:             loadToken(),
		RequestTimeout:    cfg.Server.RequestTimeout,
		StreamReadTimeout: cfg.Server.StreamReadTimeout,
	})
	return cfg, client, nil
}

func runLogin(ctx context.Context) error {
	_, client, err := setup()
	if err != nil {
		return err
	}
	defer client.Close()

	msg, err := client.Login(ctx, "", "")
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := saveToken(client.Token()); err != nil {
		return err
	}

	color.Green("%s", msg)
	return nil
}

func runStatus(ctx context.Context) error {
	cfg, client, err := setup()
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Printf("Server: %s\n", cfg.Server.URL)

	if client.Token() == "" {
		color.Yellow("Not logged in (run: astrdesk login)")
		return nil
	}

	if exp, ok := client.TokenExpiry(); ok {
		if time.Now().After(exp) {
			color.Yellow("Token expired %s", exp.Format(time.RFC3339))
		} else {
			fmt.Printf("Token expires: %s\n", exp.Format(time.RFC3339))
		}
	}

	if client.CheckConnection(ctx) {
		color.Green("Connected")
	} else {
		color.Red("Disconnected")
	}
	return nil
}

func runListSessions(ctx context.Context) error {
	_, client, err := setup()
	if err != nil {
		return err
	}
	defer client.Close()

	data, err := client.ListSessions(ctx, api.DefaultPlatformID)
	if err != nil {
		return err
	}
	return printJSON(data)
}

func runNewSession(ctx context.Context, args []string) error {
	_, client, err := setup()
	if err != nil {
		return err
	}
	defer client.Close()

	platformID := api.DefaultPlatformID
	if len(args) > 0 {
		platformID = args[0]
	}

	sessionID, err := client.CreateSession(ctx, platformID)
	if err != nil {
		return err
	}
	fmt.Println(sessionID)
	return nil
}

func runDeleteSession(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: astrdesk delete-session <session-id>")
	}
	_, client, err := setup()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeleteSession(ctx, args[0]); err != nil {
		return err
	}
	color.Green("Deleted %s", args[0])
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: astrdesk history <session-id>")
	}
	_, client, err := setup()
	if err != nil {
		return err
	}
	defer client.Close()

	data, err := client.GetSessionHistory(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(data)
}

func runUpload(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: astrdesk upload <path>")
	}
	_, client, err := setup()
	if err != nil {
		return err
	}
	defer client.Close()

	result, ok := client.UploadFile(ctx, args[0])
	if !ok {
		return fmt.Errorf("upload failed")
	}
	fmt.Printf("%s\t%s\t%s\n", result.AttachmentID, result.Filename, result.Type)
	return nil
}

func runDownload(ctx context.Context, args []string, byAttachment bool) error {
	if len(args) < 2 {
		if byAttachment {
			return fmt.Errorf("usage: astrdesk attachment <attachment-id> <dest>")
		}
		return fmt.Errorf("usage: astrdesk download <filename> <dest>")
	}
	_, client, err := setup()
	if err != nil {
		return err
	}
	defer client.Close()

	var ok bool
	if byAttachment {
		ok = client.GetAttachment(ctx, args[0], args[1])
	} else {
		ok = client.DownloadFile(ctx, args[0], args[1])
	}
	if !ok {
		return fmt.Errorf("download failed")
	}
	color.Green("Saved %s", args[1])
	return nil
}

func runExport(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: astrdesk export <session-id> <out.html>")
	}
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	if !cfg.Archive.Enabled {
		return fmt.Errorf("archive is disabled in config")
	}

	arch, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		return err
	}
	defer arch.Close()

	events, err := arch.Events(ctx, args[0])
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no archived events for session %s", args[0])
	}

	out, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	if err := export.HTML(out, args[0], events); err != nil {
		return err
	}
	color.Green("Exported %d events to %s", len(events), args[1])
	return nil
}

// printJSON pretty-prints an opaque server payload.
func printJSON(data json.RawMessage) error {
	var buf any
	if err := json.Unmarshal(data, &buf); err != nil {
		fmt.Println(string(data))
		return nil
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}
