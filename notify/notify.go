// Package notify delivers best-effort status-change messages to the
// reporter. Delivery failures are the caller's to log and swallow; they
// must never surface to the HTTP client or roll back a transition.
package notify

import (
	"context"
	"fmt"
	"io"
	"log"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"go-hazardwatch/types"
)

// Notifier delivers a status-change message for a report.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, reporterID, reportTitle string, newStatus types.Status, notes string) error
}

// StatusMessage renders the message body sent to the reporter.
func StatusMessage(reportTitle string, newStatus types.Status, notes string) string {
	msg := fmt.Sprintf("Your report '%s' has been updated to status '%s'.", reportTitle, newStatus)
	if notes != "" {
		msg += " Notes: " + notes
	}
	return msg
}

// LogNotifier is the fallback channel used when no delivery URLs are
// configured: it just records the would-be message.
type LogNotifier struct{}

func (LogNotifier) NotifyStatusChange(_ context.Context, reporterID, reportTitle string, newStatus types.Status, notes string) error {
	log.Printf("[notification] to=%s status=%s title=%q", reporterID, newStatus, reportTitle)
	log.Println(StatusMessage(reportTitle, newStatus, notes))
	return nil
}

// ShoutrrrNotifier pushes through one or more shoutrrr service URLs
// (email, telegram, gotify, ...).
type ShoutrrrNotifier struct {
	sender *router.ServiceRouter
}

func NewShoutrrrNotifier(urls []string) (*ShoutrrrNotifier, error) {
	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("creating notification sender: %w", err)
	}
	sender.SetLogger(log.New(io.Discard, "", 0))
	return &ShoutrrrNotifier{sender: sender}, nil
}

func (n *ShoutrrrNotifier) NotifyStatusChange(_ context.Context, reporterID, reportTitle string, newStatus types.Status, notes string) error {
	params := stypes.Params{}
	params.SetTitle("Report status update")

	body := StatusMessage(reportTitle, newStatus, notes)
	for _, err := range n.sender.Send(body, &params) {
		if err != nil {
			return fmt.Errorf("sending notification for reporter %s: %w", reporterID, err)
		}
	}
	return nil
}
