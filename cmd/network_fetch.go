package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reroute-bcn/streetscore/internal/osm"
	"github.com/reroute-bcn/streetscore/internal/store"
)

var networkFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the walkable street network and cache it locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		segs, err := osm.New(cfg.Overpass).FetchWalkNetwork(ctx, cfg.Overpass.BBox)
		if err != nil {
			return eris.Wrap(err, "network fetch")
		}
		if err := st.PutNetwork(ctx, cfg.Overpass.BBox, segs); err != nil {
			return err
		}

		zap.L().Info("network cached",
			zap.Int("segments", len(segs)),
			zap.String("store", cfg.Store.Path),
		)
		return nil
	},
}

func init() { networkCmd.AddCommand(networkFetchCmd) }
