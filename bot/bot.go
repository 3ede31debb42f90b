package bot

import (
	"fmt"
	"strings"
	"time"

	"aegis/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
	// SetupSessionTTL is shown on the setup panel; it must match the TTL
	// the setup service was built with.
	SetupSessionTTL time.Duration
}

// Bot glues the Discord session to the workflow services. All state
// transitions live in the service layer; handlers only parse
// interactions and render responses.
type Bot struct {
	config              Config
	session             *discordgo.Session
	configRepo          service.GuildConfigRepository
	setupService        service.SetupService
	announcementService service.AnnouncementService
}

// New creates the Discord session without connecting. The services are
// wired in Start; they need the Messenger this session backs, so the
// session has to exist first.
func New(config Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	return &Bot{
		config:  config,
		session: dg,
	}, nil
}

// Start wires the services, connects the gateway and registers the
// slash commands.
func (b *Bot) Start(configRepo service.GuildConfigRepository, setupService service.SetupService, announcementService service.AnnouncementService) error {
	b.configRepo = configRepo
	b.setupService = setupService
	b.announcementService = announcementService

	b.session.AddHandler(b.handleCommands)
	b.session.AddHandler(b.handleSetupInteraction)
	b.session.AddHandler(b.handleAnnouncementModal)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}

	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// Messenger returns the outbound rendering surface backed by this
// session, for wiring into the services.
func (b *Bot) Messenger() service.Messenger {
	return &sessionMessenger{session: b.session}
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	// All commands are guild-scoped; Member is nil in DMs.
	if i.GuildID == "" || i.Member == nil {
		b.respondWithError(s, i, "Use this command in a server.")
		return
	}

	switch i.ApplicationCommandData().Name {
	case "setup":
		b.handleSetup(s, i)
	case "config":
		b.handleConfigShow(s, i)
	case "roe":
		b.handleReport(s, i)
	case "declare":
		b.handleDeclare(s, i)
	}
}

// handleSetupInteraction routes the setup panel's select menus and
// buttons by custom ID prefix.
func (b *Bot) handleSetupInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID
	if strings.HasPrefix(customID, "setup_") {
		b.handleSetupComponent(s, i, customID)
	}
}

// handleAnnouncementModal routes detail-modal submissions back into the
// workflow via the correlation token embedded in the custom ID.
func (b *Bot) handleAnnouncementModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionModalSubmit {
		return
	}
	customID := i.ModalSubmitData().CustomID
	if token, ok := strings.CutPrefix(customID, "announce_modal_"); ok {
		b.handleAnnouncementSubmit(s, i, token)
	}
}
