package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the docbridge CLI
var rootCmd = &cobra.Command{
	Use:   "docbridge",
	Short: "Document conversion service",
	Long: `docbridge converts PDF documents to editable HTML and renders
edited HTML back to paginated PDF documents.`,
}

// Execute runs the root command
func Execute() {
	// A local .env is a convenience for development; missing is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
