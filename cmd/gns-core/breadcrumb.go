package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cayerbe/gns-core/breadcrumb"
	"github.com/cayerbe/gns-core/identity"
)

var (
	crumbSeedHex string
	crumbLat     float64
	crumbLon     float64
	crumbRes     uint8
	crumbPrev    string

	verifyIn string
)

var breadcrumbCmd = &cobra.Command{
	Use:   "breadcrumb",
	Short: "Create and verify location breadcrumbs",
}

var breadcrumbCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Quantize and sign a (lat, lon) breadcrumb",
	RunE:  runBreadcrumbCreate,
}

var breadcrumbVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a breadcrumb's signature (reads JSON from --in, or stdin if omitted)",
	RunE:  runBreadcrumbVerify,
}

func init() {
	rootCmd.AddCommand(breadcrumbCmd)
	breadcrumbCmd.AddCommand(breadcrumbCreateCmd)
	breadcrumbCmd.AddCommand(breadcrumbVerifyCmd)

	breadcrumbCreateCmd.Flags().StringVar(&crumbSeedHex, "seed", "", "signer's 64-hex seed (required)")
	breadcrumbCreateCmd.Flags().Float64Var(&crumbLat, "lat", 0, "latitude (required)")
	breadcrumbCreateCmd.Flags().Float64Var(&crumbLon, "lon", 0, "longitude (required)")
	breadcrumbCreateCmd.Flags().Uint8Var(&crumbRes, "resolution", breadcrumb.DefaultResolution, "quantizer resolution")
	breadcrumbCreateCmd.Flags().StringVar(&crumbPrev, "prev-hash", "", "ContentHash of the previous breadcrumb in this device's chain")
	for _, name := range []string{"seed", "lat", "lon"} {
		breadcrumbCreateCmd.MarkFlagRequired(name)
	}

	breadcrumbVerifyCmd.Flags().StringVar(&verifyIn, "in", "", "path to breadcrumb JSON (default: stdin)")
}

func runBreadcrumbCreate(cmd *cobra.Command, args []string) error {
	id, err := identity.FromHex(crumbSeedHex)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	defer id.Close()

	crumb, err := breadcrumb.Create(breadcrumb.DefaultQuantizer{}, id, crumbLat, crumbLon, crumbRes, crumbPrev)
	if err != nil {
		return fmt.Errorf("create breadcrumb: %w", err)
	}

	return printJSON(crumb)
}

func runBreadcrumbVerify(cmd *cobra.Command, args []string) error {
	raw, err := readInput(verifyIn)
	if err != nil {
		return fmt.Errorf("read breadcrumb input: %w", err)
	}

	var crumb breadcrumb.Breadcrumb
	if err := json.Unmarshal(raw, &crumb); err != nil {
		return fmt.Errorf("parse breadcrumb JSON: %w", err)
	}

	valid, err := breadcrumb.Verify(&crumb)
	if err != nil {
		return fmt.Errorf("verify breadcrumb: %w", err)
	}

	return printJSON(struct {
		Valid bool `json:"valid"`
	}{Valid: valid})
}
