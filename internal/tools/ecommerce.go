package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ecommerceTools covers products, orders, transactions and subscriptions.
func ecommerceTools() []Tool {
	var out []Tool
	out = append(out, productTools()...)
	out = append(out, orderTools()...)
	out = append(out, transactionTools()...)
	return append(out, subscriptionTools()...)
}

func productTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_create_product",
				mcp.WithDescription("Create a new product in Keap"),
				mcp.WithString("product_name", mcp.Required(), mcp.Description("Product name")),
				mcp.WithString("product_short_desc", mcp.Description("Short description")),
				mcp.WithString("product_desc", mcp.Description("Full description")),
				mcp.WithNumber("product_price", mcp.Required(), mcp.Description("Product price")),
				mcp.WithString("sku", mcp.Description("SKU code")),
				mcp.WithBoolean("subscription_only", mcp.Description("Is subscription-only product"), mcp.DefaultBool(false)),
				mcp.WithString("url", mcp.Description("Product URL")),
			),
			Handler: passthrough("/products"),
		},
		{
			Definition: mcp.NewTool("keap_get_product",
				mcp.WithDescription("Retrieve a product by ID"),
				idArg("product_id", "Product ID"),
			),
			Handler: getByID("/products", "product_id"),
		},
		{
			Definition: mcp.NewTool("keap_update_product",
				mcp.WithDescription("Update an existing product"),
				idArg("product_id", "Product ID"),
				mcp.WithString("product_name", mcp.Description("Product name")),
				mcp.WithNumber("product_price", mcp.Description("Product price")),
				mcp.WithString("sku", mcp.Description("SKU code")),
				mcp.WithNumber("status", mcp.Description("Status (0=inactive, 1=active)")),
			),
			Handler: patchByID("/products", "product_id"),
		},
		{
			Definition: mcp.NewTool("keap_delete_product",
				mcp.WithDescription("Delete a product"),
				idArg("product_id", "Product ID to delete"),
			),
			Handler: deleteByID("/products", "product_id", "Product deleted successfully"),
		},
		{
			Definition: mcp.NewTool("keap_list_products",
				mcp.WithDescription("List all products with pagination"),
				limitArg("Results per page"),
				offsetArg(),
				mcp.WithBoolean("active", mcp.Description("Filter by active status")),
			),
			Handler: list("/products"),
		},
	}
}

func orderTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_create_order",
				mcp.WithDescription("Create a new order in Keap"),
				idArg("contact_id", "Contact ID"),
				mcp.WithString("order_title", mcp.Required(), mcp.Description("Order title")),
				mcp.WithString("order_type", mcp.Description("Order type (Online, Offline)"), mcp.DefaultString("Online")),
				objectList("order_items", "Array of order items", mcp.Required()),
				stringList("promo_codes", "Promo codes to apply"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/orders", compact(map[string]any{
					"contact_id":  args.Get("contact_id"),
					"order_title": args.Get("order_title"),
					"order_type":  args.Or("order_type", "Online"),
					"order_items": args.Get("order_items"),
					"promo_codes": args.Get("promo_codes"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_get_order",
				mcp.WithDescription("Retrieve an order by ID"),
				idArg("order_id", "Order ID"),
			),
			Handler: getByID("/orders", "order_id"),
		},
		{
			Definition: mcp.NewTool("keap_delete_order",
				mcp.WithDescription("Delete an order"),
				idArg("order_id", "Order ID to delete"),
			),
			Handler: deleteByID("/orders", "order_id", "Order deleted successfully"),
		},
		{
			Definition: mcp.NewTool("keap_list_orders",
				mcp.WithDescription("List orders with filtering"),
				mcp.WithNumber("contact_id", mcp.Description("Filter by contact")),
				mcp.WithNumber("product_id", mcp.Description("Filter by product")),
				limitArg("Results per page"),
				offsetArg(),
				mcp.WithString("since", mcp.Description("Orders after this date")),
				mcp.WithString("until", mcp.Description("Orders before this date")),
				mcp.WithBoolean("paid", mcp.Description("Filter by paid status")),
			),
			Handler: list("/orders"),
		},
		{
			Definition: mcp.NewTool("keap_list_order_transactions",
				mcp.WithDescription("Get all transactions for an order"),
				idArg("order_id", "Order ID"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Get(ctx, "/orders/"+args.ID("order_id")+"/transactions", nil)
			},
		},
	}
}

func transactionTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_get_transaction",
				mcp.WithDescription("Retrieve a transaction by ID"),
				idArg("transaction_id", "Transaction ID"),
			),
			Handler: getByID("/transactions", "transaction_id"),
		},
		{
			Definition: mcp.NewTool("keap_list_transactions",
				mcp.WithDescription("List transactions with filtering"),
				mcp.WithNumber("contact_id", mcp.Description("Filter by contact")),
				limitArg("Results per page"),
				offsetArg(),
				mcp.WithString("since", mcp.Description("Transactions after this date")),
				mcp.WithString("until", mcp.Description("Transactions before this date")),
			),
			Handler: list("/transactions"),
		},
	}
}

func subscriptionTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_create_subscription",
				mcp.WithDescription("Create a subscription for a contact"),
				idArg("contact_id", "Contact ID"),
				idArg("product_id", "Product ID"),
				idArg("subscription_plan_id", "Subscription plan ID"),
				mcp.WithNumber("quantity", mcp.Description("Quantity"), mcp.DefaultNumber(1)),
				mcp.WithNumber("billing_amount", mcp.Description("Billing amount")),
				mcp.WithNumber("credit_card_id", mcp.Description("Credit card ID for payment")),
			),
			Handler: passthrough("/subscriptions"),
		},
		{
			Definition: mcp.NewTool("keap_get_subscription",
				mcp.WithDescription("Retrieve a subscription by ID"),
				idArg("subscription_id", "Subscription ID"),
			),
			Handler: getByID("/subscriptions", "subscription_id"),
		},
		{
			Definition: mcp.NewTool("keap_list_subscriptions",
				mcp.WithDescription("List subscriptions with filtering"),
				mcp.WithNumber("contact_id", mcp.Description("Filter by contact")),
				mcp.WithBoolean("active", mcp.Description("Filter by active status")),
				limitArg("Results per page"),
			),
			Handler: list("/subscriptions"),
		},
	}
}
