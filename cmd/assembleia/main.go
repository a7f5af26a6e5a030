package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const programName = "assembleia"

var globalFlags = struct {
	debug bool
}{}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("comando falhou")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Administração das assembleias de condomínio",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonRun()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.debug, "debug", "D", false, "habilita logs de debug")

	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(listCommand())
	rootCmd.AddCommand(exportCommand())
	rootCmd.AddCommand(tokenCommand())
	return rootCmd
}

func commonRun() {
	level := zerolog.InfoLevel
	if globalFlags.debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
		log.Debug().Str("component", programName).Msg(fmt.Sprintf(format, v...))
	})); err != nil {
		log.Warn().Err(err).Msg("maxprocs: falha ao ajustar GOMAXPROCS")
	}
}
