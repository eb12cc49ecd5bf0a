package cmd

import (
	"os"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "MPD"

// NewRootCmd creates the root command for mpd. It is called once in main.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "mpd",
		Short:         "Mental poker protocol driver",
		Long:          "Drives the cryptographic mental poker core: commutative deck encryption, cascaded shuffle and lock, verified card reveals.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress log output")
	if err := v.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(newSimulateCmd(v))
	return rootCmd
}

func newLogger(v *viper.Viper) log.Logger {
	if v.GetBool("quiet") {
		return log.NewNopLogger()
	}
	return log.NewLogger(os.Stderr)
}
