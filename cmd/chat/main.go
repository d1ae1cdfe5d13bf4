// Command chat is a terminal client for the chat API server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/client"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/client/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8000", "chat API server base URL")
	exportDir := flag.String("export-dir", ".", "directory for exported transcripts")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	stdin := bufio.NewReader(os.Stdin)
	renderer := term.New(os.Stdout, stdin)
	api := client.NewAPI(*serverURL)
	ctrl := client.NewController(api, renderer)

	ctx := context.Background()
	ctrl.RefreshDirectory(ctx)

	fmt.Println("Connected to", *serverURL)
	fmt.Println("Type a message, or /help for commands.")

	for {
		fmt.Print("> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			ctrl.SendMessage(ctx, line)
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "/help":
			printHelp()
		case "/new":
			ctrl.CreateSession(ctx)
		case "/sessions":
			ctrl.RefreshDirectory(ctx)
		case "/switch":
			if id := resolveSession(ctrl, arg); id != "" {
				ctrl.SwitchSession(ctx, id)
			}
		case "/delete":
			if id := resolveSession(ctrl, arg); id != "" {
				ctrl.DeleteSession(ctx, id)
			}
		case "/export":
			if path, err := ctrl.ExportTranscript(ctx, *exportDir); err == nil {
				fmt.Println("Exported to", path)
			}
		case "/upload":
			uploadFile(ctx, ctrl, arg)
		case "/quit", "/exit":
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

// resolveSession accepts either a 1-based list index or a raw session ID.
func resolveSession(ctrl *client.Controller, arg string) string {
	if arg == "" {
		fmt.Println("Usage: /switch <number|session-id>")
		return ""
	}
	if n, err := strconv.Atoi(arg); err == nil {
		sessions := ctrl.Sessions()
		if n < 1 || n > len(sessions) {
			fmt.Println("No such session number:", n)
			return ""
		}
		return sessions[n-1].ID
	}
	return arg
}

func uploadFile(ctx context.Context, ctrl *client.Controller, path string) {
	if path == "" {
		fmt.Println("Usage: /upload <path>")
		return
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Println("Cannot open file:", err)
		return
	}
	defer f.Close()
	ctrl.UploadArtifact(ctx, path, f)
}

func printHelp() {
	fmt.Print(`Commands:
  /new              start a new chat session
  /sessions         list sessions
  /switch <n|id>    switch to a session
  /delete <n|id>    delete a session
  /export           save the current session as a text file
  /upload <path>    upload a file and ask the assistant about it
  /quit             exit
`)
}
