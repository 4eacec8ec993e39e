package app

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/Adda-Baaj/wirecard-go/pkg/wirecard"
)

// outcome is what a single operation produced.
type outcome struct {
	output     string
	resourceID string
	statusCode int
}

type operation struct {
	name         string
	needsID      bool
	needsPayload bool
	call         func(ctx context.Context, c *wirecard.Client, id string, payload json.RawMessage) (outcome, error)
}

var operations = map[string]operation{
	"customer.create": {name: wirecard.OpCreateCustomer, needsPayload: true,
		call: func(ctx context.Context, c *wirecard.Client, _ string, p json.RawMessage) (outcome, error) {
			body, err := c.CreateCustomer(ctx, p)
			return bodyOutcome(body, ""), err
		}},
	"customer.get": {name: wirecard.OpGetCustomer, needsID: true,
		call: func(ctx context.Context, c *wirecard.Client, id string, _ json.RawMessage) (outcome, error) {
			body, err := c.GetCustomer(ctx, id)
			return bodyOutcome(body, id), err
		}},
	"card.add": {name: wirecard.OpAddCreditCard, needsID: true, needsPayload: true,
		call: func(ctx context.Context, c *wirecard.Client, id string, p json.RawMessage) (outcome, error) {
			cardID, err := c.AddCreditCard(ctx, id, p)
			return outcome{output: cardID, resourceID: cardID}, err
		}},
	"card.remove": {name: wirecard.OpRemoveCreditCard, needsID: true,
		call: func(ctx context.Context, c *wirecard.Client, id string, _ json.RawMessage) (outcome, error) {
			status, err := c.RemoveCreditCard(ctx, id)
			if err != nil {
				return outcome{resourceID: id}, err
			}
			return outcome{output: strconv.Itoa(status), resourceID: id, statusCode: status}, nil
		}},
	"order.create": {name: wirecard.OpCreateOrder, needsPayload: true,
		call: func(ctx context.Context, c *wirecard.Client, _ string, p json.RawMessage) (outcome, error) {
			body, err := c.CreateOrder(ctx, p)
			return bodyOutcome(body, ""), err
		}},
	"order.get": {name: wirecard.OpGetOrder, needsID: true,
		call: func(ctx context.Context, c *wirecard.Client, id string, _ json.RawMessage) (outcome, error) {
			body, err := c.GetOrder(ctx, id)
			return bodyOutcome(body, id), err
		}},
	"payment.create": {name: wirecard.OpCreatePayment, needsID: true, needsPayload: true,
		call: func(ctx context.Context, c *wirecard.Client, id string, p json.RawMessage) (outcome, error) {
			body, err := c.CreatePayment(ctx, id, p)
			return bodyOutcome(body, ""), err
		}},
	"payment.get": {name: wirecard.OpGetPayment, needsID: true,
		call: func(ctx context.Context, c *wirecard.Client, id string, _ json.RawMessage) (outcome, error) {
			body, err := c.GetPayment(ctx, id)
			return bodyOutcome(body, id), err
		}},
	"payment.capture": {name: wirecard.OpCapturePayment, needsID: true,
		call: func(ctx context.Context, c *wirecard.Client, id string, _ json.RawMessage) (outcome, error) {
			body, err := c.CapturePayment(ctx, id)
			return bodyOutcome(body, id), err
		}},
	"payment.void": {name: wirecard.OpVoidPayment, needsID: true,
		call: func(ctx context.Context, c *wirecard.Client, id string, _ json.RawMessage) (outcome, error) {
			body, err := c.VoidPayment(ctx, id)
			return bodyOutcome(body, id), err
		}},
	"account.exists": {name: wirecard.OpAccountExists, needsID: true,
		call: func(ctx context.Context, c *wirecard.Client, id string, _ json.RawMessage) (outcome, error) {
			exists, err := c.AccountExists(ctx, id)
			return outcome{output: strconv.FormatBool(exists), resourceID: id}, err
		}},
}

// Operations lists the command names the runner accepts, sorted.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// bodyOutcome wraps a raw response body, taking the resource id from the
// body's top-level "id" when fallback is empty.
func bodyOutcome(body, fallback string) outcome {
	out := outcome{output: body, resourceID: fallback}
	if out.resourceID == "" && body != "" {
		var doc struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(body), &doc); err == nil {
			out.resourceID = doc.ID
		}
	}
	return out
}
