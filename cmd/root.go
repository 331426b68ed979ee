package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hadirku",
	Short: "Face recognition attendance service",
	Long: `Hadirku records attendance by matching face embeddings against a
gallery of enrolled identities. It serves a camera kiosk and an operator
API over HTTP, and enrollment, listing, and export are also available
directly from the command line.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
