package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/veronalabs/restops-backend/internal/catalog"
	"github.com/veronalabs/restops-backend/internal/etl"
	"github.com/veronalabs/restops-backend/internal/inventory"
	"github.com/veronalabs/restops-backend/internal/ledger"
	"github.com/veronalabs/restops-backend/internal/orders"
	"github.com/veronalabs/restops-backend/pkg/enums"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "restopsctl",
		Short:         "Restaurant operations toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newSeedCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newCreateOrderCmd())
	root.AddCommand(newAddItemCmd())
	root.AddCommand(newCheckoutCmd())
	root.AddCommand(newCreatePOCmd())
	root.AddCommand(newReceivePOCmd())
	root.AddCommand(newLowStockCmd())
	root.AddCommand(newCreateProductCmd())
	root.AddCommand(newLedgerCmd())

	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadRawLines(path string) ([]etl.Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raw export: %w", err)
	}
	defer f.Close()
	return etl.Load(f)
}

func newSeedCmd() *cobra.Command {
	var rawPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Bootstrap master data from a raw point-of-sale export",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			lines, err := loadRawLines(rawPath)
			if err != nil {
				return err
			}
			result, err := a.seeder.Seed(cmd.Context(), lines)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().StringVar(&rawPath, "raw", "", "Path to the raw orders CSV")
	_ = cmd.MarkFlagRequired("raw")
	return cmd
}

func newImportCmd() *cobra.Command {
	var rawPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import historical orders from a raw export",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			f, err := os.Open(rawPath)
			if err != nil {
				return fmt.Errorf("open raw export: %w", err)
			}
			defer f.Close()
			count, err := a.orders.ImportHistorical(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]int{"imported": count})
		},
	}
	cmd.Flags().StringVar(&rawPath, "raw", "", "Path to the raw orders CSV")
	_ = cmd.MarkFlagRequired("raw")
	return cmd
}

func newCreateOrderCmd() *cobra.Command {
	var customerID, branchID int
	var payment string
	cmd := &cobra.Command{
		Use:   "create-order",
		Short: "Open a new order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			method, err := enums.ParsePaymentMethod(payment)
			if err != nil {
				return err
			}
			orderID, err := a.orders.CreateOrder(cmd.Context(), orders.CreateOrderInput{
				CustomerID:    customerID,
				BranchID:      branchID,
				PaymentMethod: method,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]int{"order_id": orderID})
		},
	}
	cmd.Flags().IntVar(&customerID, "customer", 0, "Customer id")
	cmd.Flags().IntVar(&branchID, "branch", 0, "Branch id")
	cmd.Flags().StringVar(&payment, "payment", string(enums.PaymentMethodCash), "Payment method (Cash, Card, Transfer)")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("branch")
	return cmd
}

func newAddItemCmd() *cobra.Command {
	var orderID, productID, qty int
	cmd := &cobra.Command{
		Use:   "add-item",
		Short: "Add a product line to an open order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			item, err := a.orders.AddItem(cmd.Context(), orders.AddItemInput{
				OrderID:   orderID,
				ProductID: productID,
				Quantity:  qty,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, item)
		},
	}
	cmd.Flags().IntVar(&orderID, "order", 0, "Order id")
	cmd.Flags().IntVar(&productID, "product", 0, "Product id")
	cmd.Flags().IntVar(&qty, "qty", 1, "Quantity")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func newCheckoutCmd() *cobra.Command {
	var orderID int
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Pay an order and run the ledger and inventory cascade",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			result, err := a.orders.Checkout(cmd.Context(), orderID)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().IntVar(&orderID, "order", 0, "Order id")
	_ = cmd.MarkFlagRequired("order")
	return cmd
}

func newCreatePOCmd() *cobra.Command {
	var branchID, productID, qty int
	var expected string
	cmd := &cobra.Command{
		Use:   "create-po",
		Short: "Create a manual purchase order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			poID, err := a.inventory.CreatePurchaseOrder(cmd.Context(), inventory.CreatePurchaseOrderInput{
				BranchID:     branchID,
				ProductID:    productID,
				Qty:          qty,
				ExpectedDate: expected,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]int{"po_id": poID})
		},
	}
	cmd.Flags().IntVar(&branchID, "branch", 0, "Branch id")
	cmd.Flags().IntVar(&productID, "product", 0, "Product id")
	cmd.Flags().IntVar(&qty, "qty", 0, "Quantity to order")
	cmd.Flags().StringVar(&expected, "expected", "", "Expected date (YYYY-MM-DD, defaults to supplier lead time)")
	_ = cmd.MarkFlagRequired("branch")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func newReceivePOCmd() *cobra.Command {
	var poID int
	cmd := &cobra.Command{
		Use:   "receive-po",
		Short: "Receive a purchase order and credit stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.inventory.ReceivePurchaseOrder(cmd.Context(), poID); err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"po_id": poID, "status": "RECEIVED"})
		},
	}
	cmd.Flags().IntVar(&poID, "po", 0, "Purchase order id")
	_ = cmd.MarkFlagRequired("po")
	return cmd
}

func newCreateProductCmd() *cobra.Command {
	var name, category, price, cost string
	var supplierID int
	cmd := &cobra.Command{
		Use:   "create-product",
		Short: "Add a product to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			salePrice, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("parse price: %w", err)
			}
			unitCost, err := decimal.NewFromString(cost)
			if err != nil {
				return fmt.Errorf("parse cost: %w", err)
			}
			productID, err := a.catalog.CreateProduct(cmd.Context(), catalog.CreateProductInput{
				Name:       name,
				Category:   category,
				SalePrice:  salePrice,
				UnitCost:   unitCost,
				SupplierID: supplierID,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]int{"product_id": productID})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Product name")
	cmd.Flags().StringVar(&category, "category", "", "Product category")
	cmd.Flags().StringVar(&price, "price", "0", "Sale price")
	cmd.Flags().StringVar(&cost, "cost", "0", "Unit cost")
	cmd.Flags().IntVar(&supplierID, "supplier", 0, "Supplier id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("supplier")
	return cmd
}

func newLedgerCmd() *cobra.Command {
	var orderID int
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "List accounting entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			var entries []ledger.Entry
			if orderID > 0 {
				entries, err = a.ledger.EntriesForOrder(cmd.Context(), orderID)
			} else {
				entries, err = a.ledger.List(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, entries)
		},
	}
	cmd.Flags().IntVar(&orderID, "order", 0, "Filter by order id")
	return cmd
}

func newLowStockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "low-stock",
		Short: "List inventory rows under their minimum",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			alerts, err := a.inventory.LowStock(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, alerts)
		},
	}
}
