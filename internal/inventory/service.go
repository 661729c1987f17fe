package inventory

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	kafkax "github.com/ariefcatur/go-sneakers-store/internal/kafka"
	"github.com/ariefcatur/go-sneakers-store/internal/orders"
)

type Reserver interface {
	Reserve(ctx context.Context, req orders.PlaceRequest) (orders.Outcome, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header) bool
}

// Service places orders for the HTTP and bot front ends.
type Service struct {
	Reserver    Reserver
	Events      Publisher // nil disables OrderPlaced events
	ServiceName string
	Tracer      trace.Tracer
}

// PlaceOrder reserves stock and, once the reservation has committed, announces
// it. Rejections and faults are returned unchanged from the reserver.
func (s *Service) PlaceOrder(ctx context.Context, req orders.PlaceRequest) (orders.Outcome, error) {
	ctx, span := s.tracer().Start(ctx, "inventory.PlaceOrder", trace.WithAttributes(
		attribute.Int64("stock_unit.id", req.StockUnitID),
		attribute.Int("order.quantity", req.Quantity),
	))
	defer span.End()

	out, err := s.Reserver.Reserve(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reservation failed")
		return out, err
	}
	if !out.Committed() {
		span.SetAttributes(attribute.String("order.rejected", string(out.Reason)))
		return out, nil
	}

	span.SetAttributes(attribute.Int64("order.id", out.OrderID))
	s.publishPlaced(span.SpanContext(), req, out.OrderID)
	return out, nil
}

func (s *Service) publishPlaced(sc trace.SpanContext, req orders.PlaceRequest, orderID int64) {
	if s.Events == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID:     orderID,
			StockUnitID: req.StockUnitID,
			Quantity:    req.Quantity,
			Status:      orders.StatusNew,
		}),
	}
	if sc.HasTraceID() {
		ev.TraceID = sc.TraceID().String()
	}
	s.Events.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) tracer() trace.Tracer {
	if s.Tracer != nil {
		return s.Tracer
	}
	return otel.Tracer("github.com/ariefcatur/go-sneakers-store/internal/inventory")
}
