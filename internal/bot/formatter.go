package bot

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"opendaoc/internal/registry"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

// Use Midgard blue for the bot
const color int = 0x0000FF

func InputNotValid(errorMessage string) []Response {

	return []Response{ResponseString{fmt.Sprintf("Input not valid: \n> %s", errorMessage)}}
}

func PrivateMessagesIgnored() []Response {
	return []Response{ResponseString{"For the time being, I am ignoring private messages"}}
}

func HelpMessage(prefix string) []Response {

	embed := discordgo.MessageEmbed{Title: "Commands available", Color: color}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("`%sonline [server_name]`", prefix),
		Value:  "Show the realm distribution of the players online, for one server or all of them",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("`%sopendaoc server list`", prefix),
		Value:  "List all servers and their URLs",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("`%sopendaoc server add <name> <url>`", prefix),
		Value:  "Add a server to the list (moderators only)",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("`%sopendaoc server remove <name>`", prefix),
		Value:  "Remove a server from the list (moderators only)",
		Inline: false,
	})
	return []Response{ResponseEmbed{embed}}
}

func NotModerator(command string) []Response {
	return []Response{ResponseString{fmt.Sprintf("You need moderator permissions to use `%s`", command)}}
}

func ServerAlreadyExists(name string) []Response {
	return []Response{ResponseString{fmt.Sprintf("The server '%s' already exists.", name)}}
}

func InvalidServerName(name string) []Response {
	return []Response{ResponseString{fmt.Sprintf("The server name '%s' is not valid. Use only lowercase letters, digits, '-' and '_'.", name)}}
}

func ServerAdded(name string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Server '%s' has been added.", name)}}
}

func ServerDoesNotExist(name string, suggestion string) []Response {
	content := fmt.Sprintf("The server '%s' does not exist.", name)
	if suggestion != "" {
		content += fmt.Sprintf(" Did you mean '%s'?", suggestion)
	}
	return []Response{ResponseString{content}}
}

func ServerRemoved(name string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Server '%s' has been removed.", name)}}
}

func RegistryUnavailable() []Response {
	return []Response{ResponseString{"Could not save the list of servers, try again later."}}
}

func ServerList(entries []registry.Entry) []Response {

	if len(entries) == 0 {
		return []Response{ResponseString{"No servers are currently available."}}
	}
	var content strings.Builder
	content.WriteString("List of servers and their URLs:\n")
	for _, entry := range entries {
		fmt.Fprintf(&content, "- %s: %s\n", Capitalize(entry.Name), entry.URL)
	}
	return []Response{ResponseString{content.String()}}
}

func AllServersOffline() []Response {
	return []Response{ResponseString{"All servers are currently empty or offline."}}
}

func ServerOffline(name string) []Response {
	return []Response{ResponseString{fmt.Sprintf("%s is currently empty or offline.", Capitalize(name))}}
}

func PopulationCharts(results []serverResult) []Response {

	names := make([]string, 0, len(results))
	for _, result := range results {
		names = append(names, Capitalize(result.entry.Name))
	}

	var content strings.Builder
	fmt.Fprintf(&content, "Player distribution for %s:", strings.Join(names, ", "))
	files := make([]File, 0, len(results))
	for _, result := range results {
		s := result.snapshot
		fmt.Fprintf(&content, "\n- %s: %s players (Albion %s, Midgard %s, Hibernia %s)",
			Capitalize(result.entry.Name),
			humanize.Comma(s.Total()),
			humanize.Comma(int64(s.Albion)),
			humanize.Comma(int64(s.Midgard)),
			humanize.Comma(int64(s.Hibernia)))
		files = append(files, File{
			Name:        fmt.Sprintf("%s_players.png", result.entry.Name),
			ContentType: "image/png",
			Data:        result.chart,
		})
	}
	return []Response{ResponseFiles{content: content.String(), files: files}}
}

// Upper case first letter, lower case the rest
func Capitalize(name string) string {
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(name[size:])
}
