package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-sneakers-store/internal/catalog"
	"github.com/ariefcatur/go-sneakers-store/internal/orders"
)

const (
	welcomeText = "👟 Welcome to Sneakers Store Bot!\n\n" +
		"Use /list to see available sneakers.\n" +
		"Use /order to place an order."

	orderUsage = "To place an order send:\n" +
		"/order <sneaker id> <quantity> <name>; <phone>; <address>\n\n" +
		"Example: /order 7 1 Ivan Petrov; +7 900 000 00 00; Lenina 1, Moscow"

	emptyCatalogText = "No sneakers available at the moment."
	listFailedText   = "Error getting sneakers list. Please try again later."
	orderFailedText  = "Error placing the order. Please try again later."
)

var errOrderUsage = errors.New("usage: /order <id> <qty> <name>; <phone>; <address>")

type Catalog interface {
	ListAvailable(ctx context.Context) ([]catalog.StockUnit, error)
}

type Placer interface {
	PlaceOrder(ctx context.Context, req orders.PlaceRequest) (orders.Outcome, error)
}

// Handler turns a bot command into a Markdown reply. It knows nothing about
// the Telegram transport.
type Handler struct {
	Catalog Catalog
	Orders  Placer
	Log     *zap.Logger
}

func (h *Handler) Handle(ctx context.Context, command, args string) string {
	switch command {
	case "start":
		return welcomeText
	case "help":
		return welcomeText + "\n\n" + orderUsage
	case "list":
		return h.list(ctx)
	case "order":
		return h.order(ctx, args)
	}
	return "Unknown command. Use /help."
}

func (h *Handler) list(ctx context.Context) string {
	units, err := h.Catalog.ListAvailable(ctx)
	if err != nil {
		h.Log.Error("list command", zap.Error(err))
		return listFailedText
	}
	if len(units) == 0 {
		return emptyCatalogText
	}
	var b strings.Builder
	b.WriteString("🛒 Available Sneakers:\n\n")
	for _, u := range units {
		fmt.Fprintf(&b, "👟 *%s %s* (#%d)\n", md(u.Brand), md(u.Model), u.ID)
		fmt.Fprintf(&b, "🔹 Color: %s\n", md(u.Color))
		fmt.Fprintf(&b, "🔹 Size: %s\n", strconv.FormatFloat(u.Size, 'f', 1, 64))
		fmt.Fprintf(&b, "🔹 Price: $%s\n", u.Price.StringFixed(2))
		fmt.Fprintf(&b, "🔹 Available: %d pairs\n\n", u.Quantity)
	}
	b.WriteString("To order, please use /order command.")
	return b.String()
}

func (h *Handler) order(ctx context.Context, args string) string {
	req, err := ParseOrderArgs(args)
	if err != nil {
		return orderUsage
	}
	out, err := h.Orders.PlaceOrder(ctx, req)
	if err != nil {
		h.Log.Error("order command", zap.Error(err), zap.Int64("stock_unit_id", req.StockUnitID))
		return orderFailedText
	}
	switch out.Reason {
	case "":
		return fmt.Sprintf("✅ Order #%d placed: %d pair(s). We will contact you at %s.",
			out.OrderID, req.Quantity, md(req.CustomerPhone))
	case orders.RejectNotFound:
		return fmt.Sprintf("Sneaker #%d was not found. Use /list to see available sneakers.", req.StockUnitID)
	case orders.RejectInsufficientStock:
		return "Sorry, there are not enough pairs in stock for this order."
	case orders.RejectInvalidQuantity:
		return "Quantity must be a positive number."
	}
	return orderFailedText
}

// ParseOrderArgs parses "<id> <qty> <name>; <phone>; <address>". Quantity is
// only checked to be an integer; its sign is the reservation's business.
func ParseOrderArgs(args string) (orders.PlaceRequest, error) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return orders.PlaceRequest{}, errOrderUsage
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return orders.PlaceRequest{}, fmt.Errorf("%w: sneaker id %q", errOrderUsage, fields[0])
	}
	qty, err := strconv.Atoi(fields[1])
	if err != nil {
		return orders.PlaceRequest{}, fmt.Errorf("%w: quantity %q", errOrderUsage, fields[1])
	}

	rest := strings.TrimSpace(args)
	for i := 0; i < 2; i++ {
		rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[i]))
	}
	parts := strings.Split(rest, ";")
	if len(parts) != 3 {
		return orders.PlaceRequest{}, errOrderUsage
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return orders.PlaceRequest{}, errOrderUsage
		}
	}
	return orders.PlaceRequest{
		StockUnitID:     id,
		Quantity:        qty,
		CustomerName:    parts[0],
		CustomerPhone:   parts[1],
		CustomerAddress: parts[2],
	}, nil
}

func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}
