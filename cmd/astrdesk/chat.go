// ABOUTME: Interactive chat REPL consuming the SSE event stream
// ABOUTME: Archives both sides of the conversation when the archive is enabled

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/astrdesk/astrdesk/internal/api"
	"github.com/astrdesk/astrdesk/internal/archive"
)

func runChat(ctx context.Context, args []string) error {
	cfg, client, err := setup()
	if err != nil {
		return err
	}
	defer client.Close()

	if client.Token() == "" {
		if _, err := client.Login(ctx, "", ""); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := saveToken(client.Token()); err != nil {
			return err
		}
	}

	var sessionID string
	if len(args) > 0 {
		sessionID = args[0]
	} else {
		sessionID, err = client.CreateSession(ctx, api.DefaultPlatformID)
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		fmt.Printf("Session %s\n", sessionID)
	}

	var arch *archive.Archive
	if cfg.Archive.Enabled {
		arch, err = archive.Open(cfg.Archive.Path)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer arch.Close()
	}

	fmt.Println("Type a message and press Enter. /help for commands. Ctrl+C to quit.")
	fmt.Println()

	return chatLoop(ctx, client, arch, sessionID)
}

func chatLoop(ctx context.Context, client *api.Client, arch *archive.Archive, sessionID string) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")

		// Read input with context awareness
		inputCh := make(chan string, 1)
		errCh := make(chan error, 1)

		go func() {
			if scanner.Scan() {
				inputCh <- scanner.Text()
			} else {
				if err := scanner.Err(); err != nil {
					errCh <- err
				} else {
					errCh <- io.EOF
				}
			}
		}()

		var input string
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case input = <-inputCh:
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if input == "/quit" || input == "/exit" || input == "/q" {
			return nil
		}

		if input == "/help" {
			printChatHelp()
			fmt.Println()
			continue
		}

		var events <-chan api.SSEEvent
		var recorded string
		switch {
		case strings.HasPrefix(input, "/image "):
			path, caption := splitPathArg(strings.TrimPrefix(input, "/image "))
			events = client.SendImageMessage(ctx, sessionID, path, caption, nil)
			recorded = "[image] " + path
		case strings.HasPrefix(input, "/voice "):
			path := strings.TrimSpace(strings.TrimPrefix(input, "/voice "))
			events = client.SendVoiceMessage(ctx, sessionID, path, nil)
			recorded = "[voice] " + path
		case strings.HasPrefix(input, "/file "):
			path, caption := splitPathArg(strings.TrimPrefix(input, "/file "))
			events = client.SendFileMessage(ctx, sessionID, path, caption, nil)
			recorded = "[file] " + path
		case strings.HasPrefix(input, "/"):
			fmt.Printf("Unknown command %q. /help for commands.\n\n", input)
			continue
		default:
			events = client.SendTextMessage(ctx, sessionID, input, nil)
			recorded = input
		}

		appendArchive(ctx, arch, sessionID, "user", "plain", recorded)
		streamResponse(ctx, events, arch, sessionID)
		fmt.Println()
	}
}

// streamResponse consumes one send's event stream, printing and
// archiving as it goes. Failures arrive on the same channel as
// content, so this is the only loop needed.
func streamResponse(ctx context.Context, events <-chan api.SSEEvent, arch *archive.Archive, sessionID string) {
	var reply strings.Builder

	for ev := range events {
		switch ev.Type {
		case api.EventPlain:
			if ev.ChainType == api.ChainReasoning {
				color.New(color.Faint).Print(ev.Data)
			} else {
				fmt.Print(ev.Data)
				reply.WriteString(ev.Data)
			}
		case api.EventImage:
			color.Cyan("\n[image] %s", ev.Data)
			appendArchive(ctx, arch, sessionID, "assistant", ev.Type, ev.Data)
		case api.EventRecord:
			color.Cyan("\n[voice] %s", ev.Data)
			appendArchive(ctx, arch, sessionID, "assistant", ev.Type, ev.Data)
		case api.EventFile:
			color.Cyan("\n[file] %s", ev.Data)
			appendArchive(ctx, arch, sessionID, "assistant", ev.Type, ev.Data)
		case api.EventError:
			color.Red("\n[error] %s", ev.Data)
		case api.EventEnd:
			fmt.Println()
		case api.EventComplete, api.EventBreak, api.EventMessageSaved:
			// Bookkeeping events, nothing to show.
		}
	}

	if reply.Len() > 0 {
		appendArchive(ctx, arch, sessionID, "assistant", "plain", reply.String())
	}
}

// appendArchive records one transcript event, if archiving is on.
func appendArchive(ctx context.Context, arch *archive.Archive, sessionID, role, eventType, body string) {
	if arch == nil || body == "" {
		return
	}
	err := arch.Append(ctx, sessionID, api.DefaultPlatformID, &archive.Event{
		Role: role,
		Type: eventType,
		Body: body,
	})
	if err != nil {
		color.Red("[archive] %v", err)
	}
}

// splitPathArg splits "path optional caption text" on the first space.
func splitPathArg(s string) (path, caption string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

func printChatHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /image <path> [text]  Send an image with optional caption")
	fmt.Println("  /voice <path>         Send a voice recording")
	fmt.Println("  /file <path> [text]   Send a file with optional caption")
	fmt.Println("  /help                 Show this help")
	fmt.Println("  /quit                 Exit")
}
