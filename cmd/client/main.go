package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"govault/client"
)

var replCommands = []string{"set", "get", "delete", "del", "help", "quit", "exit"}

func main() {
	flag.Parse()

	addr := "127.0.0.1:8080"
	if flag.NArg() > 0 {
		addr = flag.Arg(0)
	}

	fmt.Printf("Connecting to %s...\n", addr)
	c, err := client.Dial(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect failed: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()
	fmt.Println("Connected. Type 'help' for commands, 'quit' to exit.")

	if err := repl(c); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".govault_history")
}

func repl(c *client.Client) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(prefix string) (out []string) {
		for _, cmd := range replCommands {
			if strings.HasPrefix(cmd, strings.ToLower(prefix)) {
				out = append(out, cmd)
			}
		}
		return out
	})

	if f, err := os.Open(historyFile()); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer saveHistory(line)

	for {
		input, err := line.Prompt("govault> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		parts := strings.Fields(input)
		switch strings.ToLower(parts[0]) {
		case "quit", "exit":
			fmt.Println("Bye!")
			return nil
		case "help":
			printHelp()
		default:
			runCommand(c, input, parts)
		}
	}
}

func runCommand(c *client.Client, input string, parts []string) {
	switch strings.ToLower(parts[0]) {
	case "set":
		// The value is everything after the key, spaces included.
		if len(parts) < 3 {
			fmt.Println("Usage: set <key> <value>")
			return
		}
		rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
		value := strings.TrimLeft(strings.TrimPrefix(rest, parts[1]), " ")
		if err := c.Set(parts[1], value); err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Println("OK")

	case "get":
		if len(parts) != 2 {
			fmt.Println("Usage: get <key>")
			return
		}
		value, ok, err := c.Get(parts[1])
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		if !ok {
			fmt.Println("(nil)")
			return
		}
		fmt.Println(value)

	case "delete", "del":
		if len(parts) != 2 {
			fmt.Println("Usage: delete <key>")
			return
		}
		present, err := c.Delete(parts[1])
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		if !present {
			fmt.Println("Key not found")
			return
		}
		fmt.Println("OK")

	default:
		fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", parts[0])
	}
}

func saveHistory(line *liner.State) {
	path := historyFile()
	if path == "" {
		return
	}
	if f, err := os.Create(path); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}

func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  set <key> <value>  - store a value under a key")
	fmt.Println("  get <key>          - fetch the value for a key")
	fmt.Println("  delete <key>       - remove a key (alias: del)")
	fmt.Println("  help               - show this help")
	fmt.Println("  quit               - exit (alias: exit)")
}
