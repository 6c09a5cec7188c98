package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/lokis-perfume/storefront/client"
)

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Browse and manage the catalog",
	}
	cmd.AddCommand(
		newProductsListCmd(a),
		newProductsGetCmd(a),
		newProductsCreateCmd(a),
		newProductsUpdateCmd(a),
		newProductsDeleteCmd(a),
		newProductsImportCmd(a),
	)
	return cmd
}

// bindFilterFlags registers the catalog filters shared by listing and search.
func bindFilterFlags(fs *pflag.FlagSet, f *client.ProductFilter) {
	fs.StringVarP(&f.Text, "query", "q", "", "Free-text query")
	fs.StringVar(&f.Type, "type", "", "Product type (tipo)")
	fs.StringVar(&f.Season, "season", "", "Season (estacion)")
	fs.StringVar(&f.Occasion, "occasion", "", "Occasion (ocasion)")
	fs.StringVar(&f.Gender, "gender", "", "Gender (genero)")
	fs.StringVar(&f.Brand, "brand", "", "Brand (marca)")
	fs.IntVar(&f.Page, "page", 0, "Page number, 1-based")
	fs.IntVar(&f.Size, "size", 0, "Page size")
}

// bindProductFlags registers the editable product fields.
func bindProductFlags(fs *pflag.FlagSet, in *client.ProductInput, ownerID *uint) {
	fs.StringVar(&in.Name, "name", "", "Name")
	fs.StringVar(&in.Description, "description", "", "Description")
	fs.Float64Var(&in.Price, "price", 0, "Price")
	fs.IntVar(&in.Stock, "stock", 0, "Units in stock")
	fs.StringVar(&in.Type, "type", "", "Product type (tipo)")
	fs.StringVar(&in.Season, "season", "", "Season (estacion)")
	fs.StringVar(&in.Occasion, "occasion", "", "Occasion (ocasion)")
	fs.StringSliceVar(&in.Notes, "notes", nil, "Olfactory notes, comma separated")
	fs.StringVar(&in.Gender, "gender", "", "Gender (genero)")
	fs.StringVar(&in.Brand, "brand", "", "Brand (marca)")
	fs.StringVar(&in.Image, "image", "", "Image URL or file name")
	fs.UintVar(ownerID, "owner-id", 0, "Owner user ID (admins only)")
}

func withOwner(in client.ProductInput, ownerID uint) client.ProductInput {
	if ownerID > 0 {
		in.OwnerID = &ownerID
	}
	return in
}

func newProductsListCmd(a *app) *cobra.Command {
	var filter client.ProductFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			page, err := c.ListProducts(ctx, filter)
			if err != nil {
				return err
			}
			log.Debug().Int("items", len(page.Items)).Int64("total", page.Total).Msg("listed products")
			return printJSON(cmd, page)
		},
	}
	bindFilterFlags(cmd.Flags(), &filter)
	return cmd
}

func newProductsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			p, err := c.GetProduct(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
}

func newProductsCreateCmd(a *app) *cobra.Command {
	var (
		in      client.ProductInput
		ownerID uint
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
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

			p, err := c.CreateProduct(ctx, withOwner(in, ownerID), token)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
	bindProductFlags(cmd.Flags(), &in, &ownerID)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProductsUpdateCmd(a *app) *cobra.Command {
	var (
		in      client.ProductInput
		ownerID uint
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the editable fields of a product",
		Args:  cobra.ExactArgs(1),
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

			p, err := c.UpdateProduct(ctx, args[0], withOwner(in, ownerID), token)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
	bindProductFlags(cmd.Flags(), &in, &ownerID)
	return cmd
}

func newProductsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a product",
		Args:  cobra.ExactArgs(1),
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

			if err := c.DeleteProduct(ctx, args[0], token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product deleted: %s\n", args[0])
			return nil
		},
	}
}

// importFile is the YAML document read by "products import". Items with an
// id are updated, the others created.
type importFile struct {
	Products []importItem `yaml:"products"`
}

type importItem struct {
	ID                  string `yaml:"id,omitempty"`
	client.ProductInput `yaml:",inline"`
}

// key orders mutations: updates of one product run in file order.
func (it importItem) key(idx int) string {
	if it.ID != "" {
		return it.ID
	}
	return fmt.Sprintf("new-%d", idx)
}

type importFailure struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

type importReport struct {
	Created int             `json:"created"`
	Updated int             `json:"updated"`
	Failed  []importFailure `json:"failed,omitempty"`
}

func readImportFile(path string) (*importFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	var f importFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse import file %s: %w", path, err)
	}
	if len(f.Products) == 0 {
		return nil, fmt.Errorf("import file %s lists no products", path)
	}
	return &f, nil
}

// newImportLimiter paces import requests; perSecond <= 0 disables pacing.
func newImportLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func newProductsImportCmd(a *app) *cobra.Command {
	var perSecond float64
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create or update products listed in a YAML file",
		Long: `Reads a YAML document of the form

  products:
    - name: Oud Wood
      precio: 120.5
      marca: Tom Ford
    - id: 665f1c
      name: Oud Wood Intense

Entries with an id are updated, the rest created. Changes to the same
product are applied in file order; transient failures are retried.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readImportFile(args[0])
			if err != nil {
				return err
			}
			token, err := a.bearer()
			if err != nil {
				return err
			}

			var (
				mu     sync.Mutex
				report importReport
			)
			onFail := func(key string, err error) {
				mu.Lock()
				defer mu.Unlock()
				report.Failed = append(report.Failed, importFailure{Key: key, Error: err.Error()})
			}
			c, err := a.newClient(client.WithMutationErrorHandler(onFail))
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := a.context(cmd)
			defer cancel()

			limiter := newImportLimiter(perSecond)
			var created, updated int64
			keys := make([]string, 0, len(f.Products))
			seen := make(map[string]bool, len(f.Products))
			for i, it := range f.Products {
				it := it
				key := it.key(i)
				if !seen[key] {
					seen[key] = true
					keys = append(keys, key)
				}
				err := c.SubmitMutation(ctx, key, func(ctx context.Context) error {
					if err := limiter.Wait(ctx); err != nil {
						return err
					}
					if it.ID == "" {
						if _, err := c.CreateProduct(ctx, it.ProductInput, token); err != nil {
							return err
						}
						atomic.AddInt64(&created, 1)
						return nil
					}
					if _, err := c.UpdateProduct(ctx, it.ID, it.ProductInput, token); err != nil {
						return err
					}
					atomic.AddInt64(&updated, 1)
					return nil
				})
				if err != nil {
					onFail(key, err)
				}
			}
			for _, key := range keys {
				if err := c.Await(ctx, key); err != nil {
					return fmt.Errorf("wait for %s: %w", key, err)
				}
			}

			mu.Lock()
			report.Created = int(atomic.LoadInt64(&created))
			report.Updated = int(atomic.LoadInt64(&updated))
			failed := len(report.Failed)
			mu.Unlock()

			if err := printJSON(cmd, report); err != nil {
				return err
			}
			if failed > 0 {
				return errImportIncomplete{failed: failed, total: len(f.Products)}
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&perSecond, "rate", 0, "Maximum requests per second, 0 for unlimited")
	return cmd
}

type errImportIncomplete struct{ failed, total int }

func (e errImportIncomplete) Error() string {
	return fmt.Sprintf("%d of %d products failed to import", e.failed, e.total)
}
