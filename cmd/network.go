package main

import "github.com/spf13/cobra"

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Street network acquisition",
	Long:  "Fetch and cache the walkable street network from the Overpass API.",
}

func init() { rootCmd.AddCommand(networkCmd) }
