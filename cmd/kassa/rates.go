package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/kassa/internal/accounts"
	"github.com/Veraticus/kassa/internal/cli"
	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/config"
	"github.com/Veraticus/kassa/internal/rates"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Keep exchange rates current",
	}
	cmd.AddCommand(syncRatesCmd())
	return cmd
}

func syncRatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch the latest exchange rates",
		Long: `Fetch rates for the supported currencies against the base currency from
rates.url and store them. When the endpoint cannot be reached, the last rates
cached in Redis (redis.addr) are used, and failing that the stored rates stay
as they are.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireEditor(); err != nil {
				return err
			}
			cfg, err := config.LoadRatesConfig(viper.GetViper())
			if err != nil {
				return err
			}

			var cache rates.Cache
			if cfg.RedisAddr != "" {
				redisCache := rates.NewRedisCache(cfg.RedisAddr, cfg.RedisTTL)
				defer func() { _ = redisCache.Close() }()
				cache = redisCache
			}

			return withAccounts(cmd.Context(), func(_ *accounts.Service, store *storage.SQLiteStorage) error {
				syncer := rates.NewSyncer(
					rates.NewHTTPFetcher(cfg.URL, cfg.Timeout),
					cache,
					store,
					service.RetryOptions{
						MaxAttempts:  cfg.Retries,
						InitialDelay: 500 * time.Millisecond,
						MaxDelay:     5 * time.Second,
						Multiplier:   2,
					},
				)
				result, err := syncer.Sync(cmd.Context())
				if err != nil {
					return err
				}

				switch result.Origin {
				case rates.OriginLive:
					fmt.Fprintln(out(cmd), cli.FormatSuccess("Exchange rates updated"))
				case rates.OriginCache:
					fmt.Fprintln(out(cmd), cli.FormatWarning("Rate service unavailable; using cached rates"))
				default:
					fmt.Fprintln(out(cmd), cli.FormatWarning("Rate service unavailable; keeping stored rates"))
				}
				if result.FetchErr != nil {
					common.LogDebug("rate fetch error", common.Fields{"error": result.FetchErr.Error()})
				}
				fmt.Fprintln(out(cmd), renderSettings(&result.Settings))
				return nil
			})
		},
	}
}
