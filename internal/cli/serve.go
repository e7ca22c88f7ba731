// internal/cli/serve.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/soldscrape/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scrape API over HTTP",
	Long: `Starts an HTTP server exposing POST /api/scrape-ebay. The request body is
{"searchTerm": "...", "pages": 3, "startPage": 1}; the response carries every
sold listing found across the requested pages.`,
	Example: `  soldscrape serve
  soldscrape serve --addr 127.0.0.1:9000

  # Query it
  curl -X POST localhost:8080/api/scrape-ebay -d '{"searchTerm":"game boy","pages":2}'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	addr := a.Config.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(a.Service, addr, a.Config.ShutdownTimeout)
	return srv.ListenAndServe(cmd.Context())
}
