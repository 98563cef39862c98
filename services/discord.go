package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"portfolio-assistant/models"

	"github.com/bwmarrin/discordgo"
)

// discordHistoryCap bounds the per-channel ring buffer. Discord callers cannot
// resupply history per request the way the web widget does, so the service keeps a
// small in-process window matching the prompt's bounded-context policy.
const discordHistoryCap = 2 * MaxHistoryTurns

// DiscordService delivers the assistant over Discord as an optional second
// front-end sharing the same engine as the HTTP surface.
type DiscordService struct {
	session       *discordgo.Session
	assistant     *Assistant
	commandPrefix string
	enabled       bool

	mu        sync.Mutex
	histories map[string][]models.ChatTurn
}

// NewDiscordService creates a Discord service instance. It stays disabled unless
// DISCORD_BOT_TOKEN is set.
func NewDiscordService(assistant *Assistant) *DiscordService {
	token := os.Getenv("DISCORD_BOT_TOKEN")
	commandPrefix := os.Getenv("DISCORD_COMMAND_PREFIX")

	if commandPrefix == "" {
		commandPrefix = "!ask "
	}

	service := &DiscordService{
		assistant:     assistant,
		commandPrefix: commandPrefix,
		histories:     make(map[string][]models.ChatTurn),
	}

	if token == "" {
		log.Printf("Discord front-end disabled: DISCORD_BOT_TOKEN environment variable not set")
		return service
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Printf("Error creating Discord session: %v", err)
		return service
	}
	service.session = session

	session.AddHandler(func(s *discordgo.Session, event *discordgo.Ready) {
		log.Printf("Discord bot online as %s, connected to %d servers", event.User.Username, len(event.Guilds))
	})
	session.AddHandler(service.messageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	service.enabled = true
	log.Printf("Discord front-end initialized with prefix: %s", commandPrefix)
	return service
}

// IsEnabled reports whether the service is configured to run.
func (d *DiscordService) IsEnabled() bool { return d.enabled }

// Start opens the Discord websocket connection.
func (d *DiscordService) Start() error {
	if !d.enabled {
		return fmt.Errorf("Discord service not enabled (missing bot token)")
	}
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("error opening Discord connection: %w", err)
	}
	log.Printf("Discord bot started. Use '%s<message>' in Discord", d.commandPrefix)
	return nil
}

// Stop closes the Discord connection.
func (d *DiscordService) Stop() error {
	if d.session != nil {
		return d.session.Close()
	}
	return nil
}

// messageCreate handles incoming Discord messages.
func (d *DiscordService) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, d.commandPrefix) {
		return
	}

	question := strings.TrimSpace(m.Content[len(d.commandPrefix):])
	if question == "" {
		d.sendMessage(s, m.ChannelID, fmt.Sprintf("Please provide a message after `%s`", strings.TrimSpace(d.commandPrefix)))
		return
	}

	s.ChannelTyping(m.ChannelID)

	ctx, cancel := context.WithTimeout(context.Background(), defaultUpstreamTimeout)
	defer cancel()

	history := d.channelHistory(m.ChannelID)
	reply, err := d.assistant.Respond(ctx, question, history)
	if err != nil {
		perr := Classify(err)
		log.Printf("Discord chat failed in channel %s: %v", m.ChannelID, err)
		d.sendMessage(s, m.ChannelID, perr.Reply)
		return
	}

	d.recordTurns(m.ChannelID, question, reply.Message)
	d.sendMessage(s, m.ChannelID, reply.Message)
}

func (d *DiscordService) sendMessage(s *discordgo.Session, channelID, message string) {
	// Discord caps messages at 2000 characters
	if len(message) > 2000 {
		message = message[:1997] + "..."
	}
	if _, err := s.ChannelMessageSend(channelID, message); err != nil {
		log.Printf("Failed to send Discord message: %v", err)
	}
}

func (d *DiscordService) channelHistory(channelID string) []models.ChatTurn {
	d.mu.Lock()
	defer d.mu.Unlock()

	history := d.histories[channelID]
	out := make([]models.ChatTurn, len(history))
	copy(out, history)
	return out
}

func (d *DiscordService) recordTurns(channelID, question, answer string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	history := append(d.histories[channelID],
		models.ChatTurn{Role: models.RoleUser, Content: question},
		models.ChatTurn{Role: models.RoleAssistant, Content: answer},
	)
	if len(history) > discordHistoryCap {
		history = history[len(history)-discordHistoryCap:]
	}
	d.histories[channelID] = history
}
