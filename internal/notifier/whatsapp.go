package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
)

// messageCreator is the subset of the Twilio REST API used for WhatsApp.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// WhatsAppNotifier sends alerts through Twilio's WhatsApp channel.
type WhatsAppNotifier struct {
	api  messageCreator
	from string
	to   string
}

// NewWhatsAppNotifier creates a notifier. Numbers may be given with or without
// the "whatsapp:" prefix.
func NewWhatsAppNotifier(accountSID, authToken, from, to string) *WhatsAppNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &WhatsAppNotifier{api: client.Api, from: whatsappAddr(from), to: whatsappAddr(to)}
}

func whatsappAddr(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

func (w *WhatsAppNotifier) Name() string { return "whatsapp" }

func (w *WhatsAppNotifier) Send(ctx context.Context, alert model.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(w.from)
	params.SetTo(w.to)
	params.SetBody(FormatAlert(alert))
	if _, err := w.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	return nil
}
