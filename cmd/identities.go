package cmd

import (
	"fmt"
	"time"

	"github.com/satriadp/hadirku/internal/config"
	"github.com/spf13/cobra"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "List enrolled identities",
	RunE:  runIdentities,
}

func init() {
	rootCmd.AddCommand(identitiesCmd)
}

func runIdentities(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	identities, err := st.ListAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list identities: %w", err)
	}

	if len(identities) == 0 {
		fmt.Println("No identities enrolled.")
		return nil
	}

	corrupt := 0
	for _, ident := range identities {
		line := fmt.Sprintf("%4d  %-30s  %-15s  %s",
			ident.ID, ident.DisplayName, ident.ExternalRef,
			ident.CreatedAt.Format(time.DateOnly))
		if ident.Corrupt {
			line += "  (corrupt embedding)"
			corrupt++
		}
		fmt.Println(line)
	}

	fmt.Printf("\n%d identities", len(identities))
	if corrupt > 0 {
		fmt.Printf(", %d with corrupt embeddings (re-enroll to fix)", corrupt)
	}
	fmt.Println()
	return nil
}
