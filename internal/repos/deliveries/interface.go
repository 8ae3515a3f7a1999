// Package deliveries is the fulfillment boundary: granting the purchased
// good to the account. The in-game mailer drains what gets enqueued here;
// actually landing the item in a mailbox is outside this system.
package deliveries

import "context"

// Fulfillment grants a purchased game object to an account.
type Fulfillment interface {
	GrantItem(ctx context.Context, accountID, purchaseID uint32) error
}
