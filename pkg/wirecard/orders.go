package wirecard

import (
	"context"
	"net/http"
)

const (
	OpCreateOrder    = "create_order"
	OpGetOrder       = "get_order"
	OpCreatePayment  = "create_payment"
	OpGetPayment     = "get_payment"
	OpCapturePayment = "capture_payment"
	OpVoidPayment    = "void_payment"
	OpAccountExists  = "account_exists"
)

// CreateOrder creates an order and returns the raw response body.
func (c *Client) CreateOrder(ctx context.Context, payload any) (string, error) {
	body, err := c.post(ctx, OpCreateOrder, "v2/orders", http.StatusCreated, payload)
	return body, c.report(err)
}

// GetOrder fetches an order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (string, error) {
	path, err := resourcePath(OpGetOrder, "v2/orders", orderID, "")
	if err != nil {
		return "", c.report(err)
	}
	body, err := c.get(ctx, OpGetOrder, path, nil)
	return body, c.report(err)
}

// CreatePayment creates a payment for the order. The endpoint is expected to answer 200.
func (c *Client) CreatePayment(ctx context.Context, orderID string, payload any) (string, error) {
	path, err := resourcePath(OpCreatePayment, "v2/orders", orderID, "payments")
	if err != nil {
		return "", c.report(err)
	}
	body, err := c.post(ctx, OpCreatePayment, path, http.StatusOK, payload)
	return body, c.report(err)
}

// GetPayment fetches a payment by id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (string, error) {
	path, err := resourcePath(OpGetPayment, "v2/payments", paymentID, "")
	if err != nil {
		return "", c.report(err)
	}
	body, err := c.get(ctx, OpGetPayment, path, nil)
	return body, c.report(err)
}

// CapturePayment captures a pre-authorized payment.
func (c *Client) CapturePayment(ctx context.Context, paymentID string) (string, error) {
	return c.paymentAction(ctx, OpCapturePayment, paymentID, "capture")
}

// VoidPayment cancels a pre-authorized payment.
func (c *Client) VoidPayment(ctx context.Context, paymentID string) (string, error) {
	return c.paymentAction(ctx, OpVoidPayment, paymentID, "void")
}

func (c *Client) paymentAction(ctx context.Context, op, paymentID, action string) (string, error) {
	path, err := resourcePath(op, "v2/payments", paymentID, action)
	if err != nil {
		return "", c.report(err)
	}
	body, err := c.post(ctx, op, path, http.StatusOK, nil)
	return body, c.report(err)
}

// AccountExists reports whether the account can be fetched. It returns true
// only for a 200 response; every other outcome comes back as false with a
// non-nil error, so a failed lookup is never mistaken for a plain "no".
func (c *Client) AccountExists(ctx context.Context, accountID string) (bool, error) {
	path, err := resourcePath(OpAccountExists, "v2/accounts", accountID, "")
	if err != nil {
		return false, c.report(err)
	}
	if _, err := c.get(ctx, OpAccountExists, path, nil); err != nil {
		return false, c.report(err)
	}
	return true, nil
}
