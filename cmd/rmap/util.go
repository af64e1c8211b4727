package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ValentinKolb/rmap/config"
	"github.com/ValentinKolb/rmap/serializer"
)

// wrapWidth is the column width used for wrapping CLI help text.
const wrapWidth = 50

// wrapString wraps text at wrapWidth characters.
func wrapString(text string) string {
	var lines []string
	var current strings.Builder
	width := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)
		if width > 0 && width+1+wordWidth > wrapWidth {
			lines = append(lines, current.String())
			current.Reset()
			width = 0
		}
		if width > 0 {
			current.WriteString(" ")
			width++
		}
		current.WriteString(word)
		width += wordWidth
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, "\n")
}

// setupClientFlags registers the persistent flags every subcommand that
// talks to a server needs.
func setupClientFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("remote", "localhost:8765", wrapString("host:port of the remote map server"))
	cmd.PersistentFlags().Int("timeout", 30, wrapString("Client operation timeout, in seconds"))
	cmd.PersistentFlags().String("name", "default", wrapString("Client name used as the label on this client's metrics"))
	cmd.PersistentFlags().Bool("put-returns-null", false, wrapString("Use the fire-and-forget PUT_WITHOUT_ACK variant and skip reading back the prior value"))
	cmd.PersistentFlags().Bool("remove-returns-null", false, wrapString("Use the fire-and-forget REMOVE_WITHOUT_ACK variant and skip reading back the prior value"))
	cmd.PersistentFlags().Int("entry-size-hint", config.DefaultEntrySizeHint, wrapString("Initial FramedBuffer capacity hint, in bytes"))
	cmd.PersistentFlags().String("serializer", "string", wrapString("Key/value serializer to use (string, json, gob)"))
	cmd.PersistentFlags().String("log-level", "info", wrapString("Log level (debug, info, warning, error)"))
}

// initConfig loads .env files before viper binds environment variables.
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("rmap")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// buildClientConfig reads the persistent client flags via viper into a
// config.ClientConfig.
func buildClientConfig() config.ClientConfig {
	return config.ClientConfig{
		RemoteAddress:     viper.GetString("remote"),
		Timeout:           time.Duration(viper.GetInt("timeout")) * time.Second,
		Name:              viper.GetString("name"),
		PutReturnsNull:    viper.GetBool("put-returns-null"),
		RemoveReturnsNull: viper.GetBool("remove-returns-null"),
		EntrySizeHint:     viper.GetInt("entry-size-hint"),
	}.WithDefaults()
}

// stringSerializer resolves the configured serializer for the CLI's own
// ad hoc get/put/remove commands, which always operate on string keys
// and values.
func stringSerializer() (serializer.Serializer[string], error) {
	switch viper.GetString("serializer") {
	case "string", "":
		return serializer.StringSerializer{}, nil
	case "json":
		return serializer.JSONSerializer[string]{}, nil
	case "gob":
		return serializer.GobSerializer[string]{}, nil
	default:
		return nil, fmt.Errorf("invalid serializer %q", viper.GetString("serializer"))
	}
}

func bindFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// viperLogLevelFlag reads the log-level flag after binding, for
// rootCmd's PersistentPreRunE.
func viperLogLevelFlag() string {
	return viper.GetString("log-level")
}
