package notifier

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/tabor-plzen/camp-api/internal/models"
)

// DiscordNotifier posts registration and payment notices to the staff
// channel.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
	logger    *zap.Logger
}

func NewDiscordNotifier(session *discordgo.Session, channelID string, logger *zap.Logger) *DiscordNotifier {
	return &DiscordNotifier{session: session, channelID: channelID, logger: logger}
}

func (n *DiscordNotifier) NotifyRegistration(reg models.Registration) error {
	message := fmt.Sprintf("📋 **New registration**\n**Camp:** %s\n**Child:** %s %s\n**Dates:** %s - %s\n**Status:** %s",
		reg.Camp.Name,
		reg.ChildName, reg.ChildSurname,
		reg.Camp.StartDate.Format("2006-01-02"),
		reg.Camp.EndDate.Format("2006-01-02"),
		reg.Status,
	)
	return n.send(message)
}

func (n *DiscordNotifier) NotifyPayment(reg models.Registration, payment models.Payment) error {
	message := fmt.Sprintf("💳 **Payment %s**\n**Camp:** %s\n**Amount:** %d %s\n**Method:** %s\n**Transaction:** %s",
		payment.Status,
		reg.Camp.Name,
		payment.Amount, payment.Currency,
		payment.Method,
		payment.TransactionID,
	)
	return n.send(message)
}

func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		n.logger.Warn("failed to send discord message", zap.Error(err))
		return err
	}
	return nil
}
