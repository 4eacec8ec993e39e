package wirecard

import (
	"context"
	"encoding/json"
	"net/http"
)

const (
	OpCreateCustomer   = "create_customer"
	OpGetCustomer      = "get_customer"
	OpAddCreditCard    = "add_credit_card"
	OpRemoveCreditCard = "remove_credit_card"
)

// CreateCustomer registers a customer and returns the raw response body.
func (c *Client) CreateCustomer(ctx context.Context, payload any) (string, error) {
	body, err := c.post(ctx, OpCreateCustomer, "v2/customers", http.StatusCreated, payload)
	return body, c.report(err)
}

// GetCustomer fetches a customer by id and returns the raw response body.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (string, error) {
	path, err := resourcePath(OpGetCustomer, "v2/customers", customerID, "")
	if err != nil {
		return "", c.report(err)
	}
	body, err := c.get(ctx, OpGetCustomer, path, nil)
	return body, c.report(err)
}

type fundingInstrumentResponse struct {
	CreditCard *struct {
		ID string `json:"id"`
	} `json:"creditCard"`
}

// AddCreditCard stores a credit card funding instrument for the customer and
// returns the new card id.
func (c *Client) AddCreditCard(ctx context.Context, customerID string, payload any) (string, error) {
	path, err := resourcePath(OpAddCreditCard, "v2/customers", customerID, "fundinginstruments")
	if err != nil {
		return "", c.report(err)
	}
	body, err := c.post(ctx, OpAddCreditCard, path, http.StatusCreated, payload)
	if err != nil {
		return "", c.report(err)
	}

	var out fundingInstrumentResponse
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return "", c.report(&Error{Kind: KindDecode, Op: OpAddCreditCard, StatusCode: http.StatusCreated, Message: "decode funding instrument", Err: err})
	}
	if out.CreditCard == nil || out.CreditCard.ID == "" {
		return "", c.report(&Error{Kind: KindDecode, Op: OpAddCreditCard, StatusCode: http.StatusCreated, Message: "response missing creditCard.id"})
	}
	return out.CreditCard.ID, nil
}

// RemoveCreditCard deletes a funding instrument and returns the response
// status as-is; no status is treated as a failure.
func (c *Client) RemoveCreditCard(ctx context.Context, creditCardID string) (int, error) {
	path, err := resourcePath(OpRemoveCreditCard, "v2/fundinginstruments", creditCardID, "")
	if err != nil {
		return 0, c.report(err)
	}
	status, err := c.delete(ctx, OpRemoveCreditCard, path)
	return status, c.report(err)
}
