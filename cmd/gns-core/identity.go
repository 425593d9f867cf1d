package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cayerbe/gns-core/identity"
)

var identitySeedHex string

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Identity generation and inspection",
}

var identityGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a fresh identity and print its seed and public keys",
	RunE:  runIdentityGenerate,
}

var identityInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the public keys derived from a seed",
	Example: `  gns-core identity inspect --seed <64-hex seed>`,
	RunE: runIdentityInspect,
}

func init() {
	rootCmd.AddCommand(identityCmd)
	identityCmd.AddCommand(identityGenerateCmd)
	identityCmd.AddCommand(identityInspectCmd)

	identityInspectCmd.Flags().StringVar(&identitySeedHex, "seed", "", "64-character hex seed (required)")
	identityInspectCmd.MarkFlagRequired("seed")
}

type identityView struct {
	SeedHex             string `json:"seed_hex,omitempty"`
	PublicKeyHex        string `json:"public_key_hex"`
	AgreementPublicHex  string `json:"agreement_public_hex"`
}

func runIdentityGenerate(cmd *cobra.Command, args []string) error {
	id, err := identity.Generate()
	if err != nil {
		return fmt.Errorf("generate identity: %w", err)
	}
	defer id.Close()

	return printJSON(identityView{
		SeedHex:            id.SeedHex(),
		PublicKeyHex:       id.PublicHex(),
		AgreementPublicHex: id.AgreementPublicHex(),
	})
}

func runIdentityInspect(cmd *cobra.Command, args []string) error {
	id, err := identity.FromHex(identitySeedHex)
	if err != nil {
		return fmt.Errorf("load identity from seed: %w", err)
	}
	defer id.Close()

	return printJSON(identityView{
		PublicKeyHex:       id.PublicHex(),
		AgreementPublicHex: id.AgreementPublicHex(),
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
