package main

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lokis-perfume/storefront/client"
	"github.com/lokis-perfume/storefront/config"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		req  client.SearchRequest
		sort string
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the catalog index",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Sort = client.ParseSort(sort)
			c, err := a.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			page, err := c.SearchProducts(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}
	bindFilterFlags(cmd.Flags(), &req.ProductFilter)
	cmd.Flags().StringVar(&sort, "sort", "", `Ordering, e.g. "precio:desc,name"`)
	return cmd
}

func newFlushCacheCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "flush-cache",
		Short: "Drop cached search responses (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.bearer()
			if err != nil {
				return err
			}
			c, err := a.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			resp, err := c.FlushSearchCache(ctx, token)
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
}

// serviceStatus is one row of the health report.
type serviceStatus struct {
	Service string `json:"service"`
	BaseURL string `json:"base_url"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// probeAll checks /healthz of every backend concurrently. Failures are
// reported per service rather than aborting the others.
func probeAll(cmd *cobra.Command, a *app, c *client.Client) []serviceStatus {
	ctx, cancel := a.context(cmd)
	defer cancel()

	out := make([]serviceStatus, len(config.Services))
	var wg sync.WaitGroup
	for i, svc := range config.Services {
		wg.Add(1)
		go func(i int, svc config.Service) {
			defer wg.Done()
			st := serviceStatus{Service: string(svc), BaseURL: c.BaseURL(svc)}
			h, err := c.Health(ctx, svc)
			switch {
			case err != nil:
				st.Status = "down"
				st.Error = err.Error()
			case h.Status == "":
				st.Status = "ok"
			default:
				st.Status = h.Status
			}
			out[i] = st
		}(i, svc)
	}
	wg.Wait()
	return out
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe every backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			report := probeAll(cmd, a, c)
			if err := printJSON(cmd, report); err != nil {
				return err
			}
			down := 0
			for _, st := range report {
				if st.Status == "down" {
					down++
				}
			}
			if down > 0 {
				return fmt.Errorf("%d of %d services are down", down, len(report))
			}
			return nil
		},
	}
}

// overview is the landing-page data set: a catalog page, the top search
// hits and the health of every backend.
type overview struct {
	Catalog  *client.ProductPage `json:"catalog"`
	TopRated *client.ProductPage `json:"top_rated"`
	Services []serviceStatus     `json:"services"`
}

func newOverviewCmd(a *app) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Fetch catalog, search and health concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			var res overview
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				page, err := c.ListProducts(gctx, client.ProductFilter{Page: 1, Size: size})
				if err != nil {
					return fmt.Errorf("catalog: %w", err)
				}
				res.Catalog = page
				return nil
			})
			g.Go(func() error {
				page, err := c.SearchProducts(gctx, client.SearchRequest{
					ProductFilter: client.ProductFilter{Page: 1, Size: size},
					Sort:          []client.SortField{{Field: "score", Order: "desc"}},
				})
				if err != nil {
					return fmt.Errorf("search: %w", err)
				}
				res.TopRated = page
				return nil
			})
			g.Go(func() error {
				res.Services = probeAll(cmd, a, c)
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}
			log.Debug().Int64("catalog_total", res.Catalog.Total).Int64("search_total", res.TopRated.Total).Msg("overview fetched")
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().IntVar(&size, "size", 5, "Products per section")
	return cmd
}
