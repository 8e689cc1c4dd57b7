// Package checkout confirms the payment that publishes a job listing.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"jobmate/board-service/internal/listing"
)

// ReturnPath is where the payment provider sends the buyer after confirming.
const ReturnPath = "/jobs/order-complete"

const unexpectedMessage = "An unexpected error occurred."

// Confirmer confirms a payment intent with the payment provider.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, intentID, returnURL string) error
}

// Publisher makes a paid listing visible for a number of days.
type Publisher interface {
	Publish(ctx context.Context, userID, id string, days int) (*listing.JobListing, error)
}

// PaymentError is a failure reported by the payment provider.
type PaymentError struct {
	Type    string // provider category, e.g. "card_error"
	Message string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment %s: %s", e.Type, e.Message)
}

// UserMessage returns the text to show the buyer for a failed checkout.
// Only card and validation errors carry a message meant for the buyer.
func UserMessage(err error) string {
	var pe *PaymentError
	if errors.As(err, &pe) && (pe.Type == "card_error" || pe.Type == "validation_error") {
		return pe.Message
	}
	return unexpectedMessage
}

// Checkout runs payment confirmation followed by publication.
type Checkout struct {
	confirmer Confirmer
	publisher Publisher
	origin    string
}

// New returns a Checkout whose return URL is built from origin.
func New(confirmer Confirmer, publisher Publisher, origin string) *Checkout {
	return &Checkout{
		confirmer: confirmer,
		publisher: publisher,
		origin:    strings.TrimRight(origin, "/"),
	}
}

// ReturnURL is the absolute URL the provider redirects to.
func (c *Checkout) ReturnURL() string { return c.origin + ReturnPath }

// Submit confirms intentID and, once paid, publishes the listing for days.
func (c *Checkout) Submit(ctx context.Context, userID, listingID, intentID string, days int) (*listing.JobListing, error) {
	if intentID == "" {
		return nil, &listing.ValidationError{Msg: "paymentIntentId is required"}
	}
	if days < 1 {
		return nil, &listing.ValidationError{Msg: "days must be at least 1"}
	}

	if err := c.confirmer.ConfirmPayment(ctx, intentID, c.ReturnURL()); err != nil {
		slog.Warn("payment confirmation failed", "listingId", listingID, "intent", intentID, "err", err)
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	l, err := c.publisher.Publish(ctx, userID, listingID, days)
	if err != nil {
		return nil, fmt.Errorf("publish listing: %w", err)
	}
	slog.Info("listing published", "listingId", listingID, "days", days)
	return l, nil
}

// PayLabel is the caption of the pay button for a USD amount, e.g.
// "Pay $1,234.50".
func PayLabel(amount float64) string {
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprintf("Pay $%v", number.Decimal(amount,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
