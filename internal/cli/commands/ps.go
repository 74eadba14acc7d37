package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcpgate/mcpgate/internal/cli/ui"
	"github.com/mcpgate/mcpgate/internal/core/session"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List active sessions",
	Long:  "Query a running gateway for its active sessions",
	RunE:  runPs,
}

var psAddr string

func init() {
	psCmd.Flags().StringVar(&psAddr, "addr", "http://127.0.0.1:8840", "Gateway address")
}

func runPs(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(psAddr + "/sessions")
	if err != nil {
		return fmt.Errorf("failed to reach gateway at %s: %w", psAddr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned %s", resp.Status)
	}

	var infos []session.Info
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return fmt.Errorf("failed to decode session list: %w", err)
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(infos)
	}

	ui.PrintSessionList(infos)
	return nil
}
