// Package admin serves the operator console: a JSON API over the request
// store plus the reply workflow that delivers answers through the gateway.
package admin

import (
	"context"
	"fmt"

	"github.com/spravuz/spravbot/internal/gateway"
	"github.com/spravuz/spravbot/internal/i18n"
	"github.com/spravuz/spravbot/internal/models"
	"github.com/spravuz/spravbot/internal/store"
)

// Workflow implements the operator actions that mutate request state.
type Workflow struct {
	store   *store.Store
	gateway gateway.Gateway
}

// NewWorkflow creates a Workflow.
func NewWorkflow(st *store.Store, gw gateway.Gateway) (*Workflow, error) {
	if st == nil {
		return nil, fmt.Errorf("admin: store is required")
	}
	if gw == nil {
		return nil, fmt.Errorf("admin: gateway is required")
	}
	return &Workflow{store: st, gateway: gw}, nil
}

// ChangeStatus sets a request's status, recording the operator. Any known
// status may follow any other.
func (w *Workflow) ChangeStatus(id uint, status, operator string) error {
	return w.store.SetStatus(id, status, operator)
}

// Reply delivers an answer to the request's user and records it. Delivery
// happens first: if the gateway fails, no reply row is appended and the
// error is returned, so the operator never sees an undelivered reply
// marked as sent.
func (w *Workflow) Reply(ctx context.Context, id uint, message, operator string) (*models.Reply, error) {
	detail, err := w.store.GetRequest(id)
	if err != nil {
		return nil, err
	}

	lang := i18n.DefaultLanguage
	if detail.User != nil && i18n.Known(detail.User.Language) {
		lang = detail.User.Language
	}

	prompt := gateway.OutboundPrompt{
		Identity: detail.Request.UserID,
		Text: fmt.Sprintf("%s #%d:\n\n%s",
			i18n.Resolve(lang, i18n.KeyReplyPrefix), id, message),
	}
	if err := w.gateway.Send(ctx, prompt); err != nil {
		return nil, fmt.Errorf("admin: deliver reply to request %d: %w", id, err)
	}

	reply, err := w.store.AppendReply(id, message, operator)
	if err != nil {
		// Delivered but not recorded; surface the failure so the
		// operator retries visibly.
		return nil, fmt.Errorf("admin: record reply to request %d: %w", id, err)
	}
	return reply, nil
}
