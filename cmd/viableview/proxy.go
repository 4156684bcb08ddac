package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alpharomercoma/viableview-scraper/browser"
	"github.com/alpharomercoma/viableview-scraper/config"
	"github.com/alpharomercoma/viableview-scraper/proxy"
)

// NewProxyCmd creates the proxy command.
func NewProxyCmd() *cobra.Command {
	var (
		attempts int
		fallback bool
		headed   bool
	)

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Find a working free proxy and print its URL",
		Long: `Proxy scrapes a public free-proxy list, probes candidates with a
Chrome-fingerprint request, and prints the first working proxy URL.

The result can be passed to crawl via --proxy. Free proxies are unreliable;
with --fallback (the default) the last candidate is printed even when no
probe succeeded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			initLogger(cfg.Log)

			if headed {
				cfg.Browser.Headless = false
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sess, err := browser.NewSession(cfg.Browser, cfg.Target)
			if err != nil {
				return err
			}
			defer sess.Close()

			found, err := proxy.NewFinder(sess).Find(ctx, attempts, fallback)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), found)
			return nil
		},
	}

	cmd.Flags().IntVar(&attempts, "attempts", 20, "Maximum number of candidates to probe")
	cmd.Flags().BoolVar(&fallback, "fallback", true, "Print the last candidate even if no probe succeeded")
	cmd.Flags().BoolVar(&headed, "headed", false, "Run the browser visibly")

	return cmd
}
