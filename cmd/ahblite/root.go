package main

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/ahblite/config"
)

// envFile holds the default values of the configuration.
const envFile = ".env"

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "ahblite",
	Short: "ahblite generates and checks AHB-Lite3 traffic.",
	Long: "ahblite generates random, protocol-legal AHB-Lite3 bursts. It can " +
		"print or record them, or drive them through a simulated bus with a " +
		"memory slave while checking the protocol and the read data. Default " +
		"values come from AHBLITE_* variables, in the environment or in a " +
		".env file.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the command line and exits the program.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func init() {
	d := config.Default()
	flags := rootCmd.PersistentFlags()

	flags.Int64("seed", d.Seed, "Seed of the random generators")
	flags.Int("address-width", d.AddressWidth, "Number of address bits")
	flags.Int("data-width", d.DataWidth, "Data bus width in bits")
	flags.Bool("no-busy", false, "Never insert BUSY cycles")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(envFile)
	if err != nil {
		return err
	}

	applyFlags(cmd, &c)
	cfg = c

	return cfg.Validate()
}

// applyFlags overrides c with the flags set on the command line.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("seed") {
		c.Seed, _ = flags.GetInt64("seed")
	}

	if flags.Changed("address-width") {
		c.AddressWidth, _ = flags.GetInt("address-width")
	}

	if flags.Changed("data-width") {
		c.DataWidth, _ = flags.GetInt("data-width")
	}

	if noBusy, _ := flags.GetBool("no-busy"); noBusy {
		c.BusyProbability = 0
	}

	if flags.Changed("count") {
		c.Count, _ = flags.GetInt("count")
	}

	if flags.Changed("workers") {
		c.Workers, _ = flags.GetInt("workers")
	}

	if flags.Changed("format") {
		c.Format, _ = flags.GetString("format")
	}

	if flags.Changed("output") {
		c.Output, _ = flags.GetString("output")
	}

	if flags.Changed("cycles") {
		c.Cycles, _ = flags.GetUint64("cycles")
	}

	if flags.Changed("monitor") {
		c.Monitor, _ = flags.GetBool("monitor")
	}

	if flags.Changed("monitor-port") {
		c.MonitorPort, _ = flags.GetInt("monitor-port")
	}

	if flags.Changed("open-browser") {
		c.OpenBrowser, _ = flags.GetBool("open-browser")
	}

	if flags.Changed("record") {
		c.Record, _ = flags.GetString("record")
	}

	if flags.Changed("preload") {
		c.Preload, _ = flags.GetString("preload")
	}
}
