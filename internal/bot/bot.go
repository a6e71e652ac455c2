package bot

import (
	"context"
	"fmt"

	"opendaoc/internal/metrics"
	"opendaoc/internal/registry"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Members with any of these can manage the list of servers
const moderatorPermissions int64 = discordgo.PermissionAdministrator | discordgo.PermissionManageMessages

type Bot struct {
	token       string
	prefix      string
	registry    *registry.Registry
	fetcher     Fetcher
	render      Renderer
	concurrency int
	metrics     *metrics.Metrics
	ctx         context.Context
}

func NewBot(token string, prefix string, concurrency int, reg *registry.Registry, fetcher Fetcher, render Renderer, m *metrics.Metrics) (*Bot, error) {

	if reg == nil || fetcher == nil || render == nil || m == nil {
		return nil, fmt.Errorf("bot needs a registry, a fetcher, a renderer and metrics")
	}
	if concurrency < 1 {
		concurrency = 1
	}

	return &Bot{
		token:       token,
		prefix:      prefix,
		registry:    reg,
		fetcher:     fetcher,
		render:      render,
		concurrency: concurrency,
		metrics:     m,
		ctx:         context.Background(),
	}, nil
}

// Run connects to discord and handles messages until ctx is done
func (bot *Bot) Run(ctx context.Context) error {

	if bot.token == "" {
		return fmt.Errorf("no discord token configured")
	}

	// Create session
	discord, err := discordgo.New("Bot " + bot.token)
	if err != nil {
		return fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	// Event handler
	bot.ctx = ctx
	discord.AddHandler(bot.Receive)

	// Open session
	if err := discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer discord.Close()

	log.Info().Msg(fmt.Sprintf("Bot running with prefix %q and %d servers registered", bot.prefix, bot.registry.Len()))
	<-ctx.Done()
	log.Info().Msg("Closing discord session")

	return nil
}

func (bot *Bot) Receive(discord *discordgo.Session, message *discordgo.MessageCreate) {

	// Reject my own messages
	if message.Author == nil || message.Author.ID == discord.State.User.ID {
		return
	}

	// Parse the input provided and call the appropriate function
	parseResult := Parse(bot.prefix, message.Content)
	switch parseResult.parseid {
	case PARSEID_NO_BOT_PREFIX, PARSEID_NOT_FOR_BOT:
		return
	}

	// Ignore messages from private channels
	if message.GuildID == "" {
		log.Debug().Msg("Ignoring private message")
		bot.sendResponses(discord, message.ChannelID, PrivateMessagesIgnored())
		return
	}

	log.Info().Msg(fmt.Sprintf("Received message: %s", message.Content))
	if parseResult.parseid == PARSEID_OK && parseResult.command == COMMAND_ONLINE {
		// Fetching can take a while
		if err := discord.ChannelTyping(message.ChannelID); err != nil {
			log.Debug().Err(err).Msg("Could not send typing indicator")
		}
	}

	isModerator := func() bool {
		return bot.isModerator(discord, message)
	}
	bot.sendResponses(discord, message.ChannelID, bot.Execute(bot.ctx, parseResult, isModerator))
}

func (bot *Bot) sendResponses(discord *discordgo.Session, channelId string, responses []Response) {
	for _, response := range responses {
		if err := response.Send(channelId, discord); err != nil {
			log.Error().Err(err).Msg(fmt.Sprintf("Could not send response to channel %s", channelId))
		}
	}
}

func (bot *Bot) isModerator(discord *discordgo.Session, message *discordgo.MessageCreate) bool {

	permissions, err := discord.UserChannelPermissions(message.Author.ID, message.ChannelID)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not get permissions of user %s in channel %s", message.Author.ID, message.ChannelID))
		return false
	}
	return HasModeratorPermissions(permissions)
}

func HasModeratorPermissions(permissions int64) bool {
	return permissions&moderatorPermissions != 0
}
