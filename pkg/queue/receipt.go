package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/citizenwallet/custody/pkg/custody"
)

var ErrInvalidReceiptMessage = errors.New("invalid receipt message")

// ReceiptProcessor runs the jobs that follow a confirmed transfer. It is safe to
// run more than once for the same receipt: the journal ignores a repeated tx hash
// and consumers of the event are expected to do the same.
type ReceiptProcessor struct {
	ctx       context.Context
	journal   custody.Journal
	publisher custody.Publisher
	wm        custody.WebhookMessager
}

func NewReceiptProcessor(ctx context.Context, journal custody.Journal, publisher custody.Publisher, wm custody.WebhookMessager) *ReceiptProcessor {
	return &ReceiptProcessor{ctx: ctx, journal: journal, publisher: publisher, wm: wm}
}

func (p *ReceiptProcessor) Process(m custody.Message) error {
	rm, ok := m.Message.(custody.ReceiptMessage)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidReceiptMessage, m.ID)
	}

	r := &rm.Receipt

	if p.journal != nil {
		if err := p.journal.AddReceipt(p.ctx, r); err != nil {
			return fmt.Errorf("journal %s: %w", r.TransactionHash, err)
		}
	}

	if p.publisher != nil {
		if err := p.publisher.PublishTransfer(p.ctx, r); err != nil {
			return fmt.Errorf("publish %s: %w", r.TransactionHash, err)
		}
	}

	// notifications are best effort and never cause a retry
	p.wm.Notify(p.ctx, fmt.Sprintf("token %s moved from %s to %s in tx %s", r.TokenID.String(), r.From, r.To, r.TransactionHash))

	return nil
}
