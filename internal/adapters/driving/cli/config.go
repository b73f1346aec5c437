package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// secretKeys are masked by config list and read without echo by config set.
var secretKeys = map[string]bool{
	"embedding.api_key": true,
	"store.dsn":         true,
}

// Overridable for tests.
var (
	termCheck                = term.IsTerminal
	stdin          io.Reader = os.Stdin
	readPasswordFn           = term.ReadPassword
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and edit sercha-rag settings.

Settings are stored in a TOML file. Values given here are validated before
they are saved. Environment variables (NOMIC_API_KEY, OPENAI_API_KEY) are used
when no API key is configured, and TIDB_DSN when no store.dsn is set.`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Validate and save one setting",
	Long: `Validate and save one setting.

Secrets such as embedding.api_key are read from the terminal without echo
when no value is given.

Examples:
  sercha-rag config set embedding.provider ollama
  sercha-rag config set retrieval.default_k 10
  sercha-rag config set embedding.api_key`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		cmd.Println(settingsService.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Printf("Config file: %s\n\n", settingsService.Path())
	for _, key := range settingsService.Keys() {
		val, ok := settingsService.Lookup(key)
		switch {
		case !ok:
			val = "(default)"
		case secretKeys[key]:
			val = maskAPIKey(val)
		}
		cmd.Printf("  %-28s %s\n", key, val)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key := args[0]
	if !knownKey(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	val, ok := settingsService.Lookup(key)
	if !ok {
		cmd.Println("(default)")
		return nil
	}
	if secretKeys[key] {
		val = maskAPIKey(val)
	}
	cmd.Println(val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key := args[0]

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		if !secretKeys[key] {
			return fmt.Errorf("a value is required for %s", key)
		}
		cmd.Printf("%s: ", key)
		value = readSecret()
		cmd.Println()
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	cmd.Printf("%s updated.\n", key)
	return nil
}

func knownKey(key string) bool {
	for _, k := range settingsService.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret() string {
	if f, ok := stdin.(*os.File); ok && termCheck(int(f.Fd())) {
		secret, err := readPasswordFn(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(bufio.NewReader(stdin))
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
