package bot

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	COMMAND_HELP          = iota
	COMMAND_SERVER_HELP   = iota
	COMMAND_SERVER_ADD    = iota
	COMMAND_SERVER_REMOVE = iota
	COMMAND_SERVER_LIST   = iota
	COMMAND_ONLINE        = iota
)

const (
	PARSEID_OK                     = iota
	PARSEID_NO_BOT_PREFIX          = iota
	PARSEID_NOT_FOR_BOT            = iota
	PARSEID_NO_COMMAND             = iota
	PARSEID_COMMAND_NOT_RECOGNISED = iota
	PARSEID_NO_INPUT               = iota
)

var errorMessages map[int]string = map[int]string{
	PARSEID_NO_COMMAND:             "No command provided",
	PARSEID_COMMAND_NOT_RECOGNISED: "Command `%s` not recognised",
	PARSEID_NO_INPUT:               "Command `%s` requires %s",
}

type ParseResult struct {
	command      int
	parseid      int
	errorMessage string
	name         string // server name, when the command takes one
	url          string
}

// Parse a chat message. Only messages starting with the prefix followed
// by one of our command groups are for the bot; anything else is ignored
// silently so the bot can share a prefix with others
func Parse(prefix string, message string) ParseResult {

	noInput := func(command int, commandString string, what string) ParseResult {
		parseid := PARSEID_NO_INPUT
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString, what)}
	}
	notRecognised := func(commandString string) ParseResult {
		parseid := PARSEID_COMMAND_NOT_RECOGNISED
		return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}

	// The message has to start with the bot prefix
	if !strings.HasPrefix(message, prefix) {
		return ParseResult{parseid: PARSEID_NO_BOT_PREFIX}
	}

	words := strings.Fields(message[len(prefix):])
	if len(words) == 0 {
		parseid := PARSEID_NO_COMMAND
		return ParseResult{parseid: parseid, errorMessage: errorMessages[parseid]}
	}
	group := strings.ToLower(words[0])
	words = words[1:]

	switch group {
	case "online":
		// online [server_name]
		result := ParseResult{command: COMMAND_ONLINE, parseid: PARSEID_OK}
		if len(words) > 0 {
			result.name = words[0]
		}
		return result
	case "opendaoc":
		// opendaoc
		if len(words) == 0 {
			return ParseResult{command: COMMAND_HELP, parseid: PARSEID_OK}
		}
		if strings.ToLower(words[0]) != "server" {
			return notRecognised("opendaoc " + words[0])
		}
		words = words[1:]
		// opendaoc server
		if len(words) == 0 {
			return ParseResult{command: COMMAND_SERVER_HELP, parseid: PARSEID_OK}
		}
		subcommand := strings.ToLower(words[0])
		words = words[1:]
		switch subcommand {
		case "add":
			// opendaoc server add <name> <url>
			if len(words) < 2 {
				return noInput(COMMAND_SERVER_ADD, "opendaoc server add", "a name and a url")
			}
			return ParseResult{command: COMMAND_SERVER_ADD, parseid: PARSEID_OK, name: words[0], url: words[1]}
		case "remove":
			// opendaoc server remove <name>
			if len(words) == 0 {
				return noInput(COMMAND_SERVER_REMOVE, "opendaoc server remove", "a name")
			}
			return ParseResult{command: COMMAND_SERVER_REMOVE, parseid: PARSEID_OK, name: words[0]}
		case "list":
			// opendaoc server list
			return ParseResult{command: COMMAND_SERVER_LIST, parseid: PARSEID_OK}
		default:
			return notRecognised("opendaoc server " + subcommand)
		}
	default:
		log.Debug().Msg(fmt.Sprintf("Ignoring unknown command %s", group))
		return ParseResult{parseid: PARSEID_NOT_FOR_BOT}
	}
}
