package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bloom/internal/merge"
	"github.com/vovakirdan/bloom/internal/storage"
)

var flagResetSkin bool

var skinCmd = &cobra.Command{
	Use:   "skin [tier] [asset]",
	Short: "Show or equip the skin of a tier",
	Long: `Without arguments, lists the equipped skin of every tier.
With a tier, shows its skin; with a tier and an asset, equips it.

A tier is its number (0-9) or its name (smallest ... largest).

Examples:
  bloom skin
  bloom skin medium tulip
  bloom skin 3 --reset`,
	Args: cobra.MaximumNArgs(2),
	Run:  runSkin,
}

func init() {
	skinCmd.Flags().BoolVar(&flagResetSkin, "reset", false, "Restore the default skin of the tier")
}

func runSkin(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if len(args) == 0 {
		skins, err := store.LoadSkins()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading skins: %v\n", err)
			return
		}
		fmt.Printf("  %-4s  %-14s  %s\n", "Tier", "Name", "Skin")
		fmt.Printf("  %-4s  %-14s  %s\n", "----", "----", "----")
		for t := merge.Tier(0); t < merge.TierCount; t++ {
			fmt.Printf("  %-4d  %-14s  %s\n", int(t), t.Name(), skins.EquippedSkin(t))
		}
		return
	}

	tier, err := merge.ParseTier(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	switch {
	case flagResetSkin:
		err = store.ResetSkin(tier)
	case len(args) == 2:
		err = store.EquipSkin(tier, args[1])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	asset, err := store.Skin(tier)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Printf("%s: %s\n", tier.Name(), asset)
}
