package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lokis-perfume/storefront/client"
)

func newPurchaseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "purchase",
		Aliases: []string{"purchases"},
		Short:   "Check out and review past purchases",
	}
	cmd.AddCommand(newPurchaseCreateCmd(a), newPurchaseListCmd(a))
	return cmd
}

// parseItems turns "id:qty" pairs into checkout lines. A missing quantity
// means one unit.
func parseItems(raw []string) ([]client.CheckoutItem, error) {
	items := make([]client.CheckoutItem, 0, len(raw))
	for _, r := range raw {
		id, qty, hasQty := strings.Cut(strings.TrimSpace(r), ":")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("item %q: product id is empty", r)
		}
		n := 1
		if hasQty {
			v, err := strconv.Atoi(strings.TrimSpace(qty))
			if err != nil || v <= 0 {
				return nil, fmt.Errorf("item %q: quantity must be a positive integer", r)
			}
			n = v
		}
		items = append(items, client.CheckoutItem{ProductID: id, Quantity: n})
	}
	return items, nil
}

func newPurchaseCreateCmd(a *app) *cobra.Command {
	var raw []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Buy products",
		Example: `  storefront purchase create --item 665f1c:2 --item 6660aa
  storefront purchase create --item 665f1c:2,6660aa:1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parseItems(raw)
			if err != nil {
				return err
			}
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

			p, err := c.CreatePurchase(ctx, items, token)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
	cmd.Flags().StringSliceVar(&raw, "item", nil, "Line as product-id[:quantity]; repeatable")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newPurchaseListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your purchases",
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

			list, err := c.ListMyPurchases(ctx, token)
			if err != nil {
				return err
			}
			return printJSON(cmd, list)
		},
	}
}
