package bot

import (
	"context"
	"errors"
	"fmt"

	"opendaoc/internal/registry"

	"github.com/rs/zerolog/log"
)

type handler func(bot *Bot, ctx context.Context, parsed ParseResult) []Response

type command struct {
	name          string
	moderatorOnly bool
	handle        handler
}

// Every command the bot understands. Moderator only commands are
// checked before the handler runs
var commands = map[int]command{
	COMMAND_HELP:          {name: "opendaoc", handle: (*Bot).help},
	COMMAND_SERVER_HELP:   {name: "opendaoc server", handle: (*Bot).help},
	COMMAND_SERVER_ADD:    {name: "opendaoc server add", moderatorOnly: true, handle: (*Bot).serverAdd},
	COMMAND_SERVER_REMOVE: {name: "opendaoc server remove", moderatorOnly: true, handle: (*Bot).serverRemove},
	COMMAND_SERVER_LIST:   {name: "opendaoc server list", handle: (*Bot).serverList},
	COMMAND_ONLINE:        {name: "online", handle: (*Bot).online},
}

// Execute runs an already parsed command. isModerator is only
// consulted for moderator only commands
func (bot *Bot) Execute(ctx context.Context, parsed ParseResult, isModerator func() bool) []Response {

	if parsed.parseid != PARSEID_OK {
		return InputNotValid(parsed.errorMessage)
	}
	cmd, ok := commands[parsed.command]
	if !ok {
		log.Error().Msg(fmt.Sprintf("Command %d is not one of the possible ones", parsed.command))
		return nil
	}
	if cmd.moderatorOnly && (isModerator == nil || !isModerator()) {
		log.Info().Msg(fmt.Sprintf("Rejecting %s from a non moderator", cmd.name))
		return NotModerator(cmd.name)
	}
	bot.metrics.Command(cmd.name)
	return cmd.handle(bot, ctx, parsed)
}

func (bot *Bot) help(ctx context.Context, parsed ParseResult) []Response {
	return HelpMessage(bot.prefix)
}

func (bot *Bot) serverAdd(ctx context.Context, parsed ParseResult) []Response {

	entry, err := bot.registry.Add(ctx, parsed.name, parsed.url)
	var duplicate *registry.DuplicateNameError
	if errors.As(err, &duplicate) {
		log.Info().Msg(fmt.Sprintf("Server %s is already registered", duplicate.Name))
		return ServerAlreadyExists(duplicate.Name)
	}
	var invalid *registry.InvalidNameError
	if errors.As(err, &invalid) {
		log.Info().Msg(fmt.Sprintf("Rejecting server name %q", invalid.Name))
		return InvalidServerName(invalid.Name)
	}
	if err != nil {
		log.Error().Err(err).Msg("Could not add server")
		return RegistryUnavailable()
	}

	log.Info().Msg(fmt.Sprintf("Server %s has been added with url %s", entry.Name, entry.URL))
	return ServerAdded(entry.Name)
}

func (bot *Bot) serverRemove(ctx context.Context, parsed ParseResult) []Response {

	entry, err := bot.registry.Remove(ctx, parsed.name)
	var notFound *registry.NotFoundError
	if errors.As(err, &notFound) {
		log.Info().Msg(fmt.Sprintf("Server %s was not registered", notFound.Name))
		suggestion, _ := bot.registry.Suggest(notFound.Name)
		return ServerDoesNotExist(notFound.Name, suggestion)
	}
	if err != nil {
		log.Error().Err(err).Msg("Could not remove server")
		return RegistryUnavailable()
	}

	log.Info().Msg(fmt.Sprintf("Server %s has been removed", entry.Name))
	return ServerRemoved(entry.Name)
}

func (bot *Bot) serverList(ctx context.Context, parsed ParseResult) []Response {
	return ServerList(bot.registry.List())
}
