package bot

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// Discord does not accept more attachments than this in one message
const maxFilesPerMessage = 10

// Discord rejects message content longer than this, counted in characters
const maxContentLength = 2000

type ResponseString struct {
	string
}
type ResponseEmbed struct {
	discordgo.MessageEmbed
}

// A message with attached images
type ResponseFiles struct {
	content string
	files   []File
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Response interface {
	Send(channelid string, discord *discordgo.Session) error
}

func (response ResponseString) Send(channelid string, discord *discordgo.Session) error {
	for _, chunk := range splitContent(response.string, maxContentLength) {
		if _, err := discord.ChannelMessageSend(channelid, chunk); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}

func (response ResponseEmbed) Send(channelid string, discord *discordgo.Session) error {
	if _, err := discord.ChannelMessageSendEmbed(channelid, &response.MessageEmbed); err != nil {
		return fmt.Errorf("send embed: %w", err)
	}
	return nil
}

func (response ResponseFiles) Send(channelid string, discord *discordgo.Session) error {
	for _, message := range response.messages() {
		if _, err := discord.ChannelMessageSendComplex(channelid, &message); err != nil {
			return fmt.Errorf("send files: %w", err)
		}
	}
	return nil
}

// Content that does not fit in one message is sent first as text,
// its last part goes with the first batch of files
func (response ResponseFiles) messages() []discordgo.MessageSend {
	chunks := splitContent(response.content, maxContentLength)
	last := len(chunks) - 1

	var messages []discordgo.MessageSend
	for _, chunk := range chunks[:last] {
		messages = append(messages, discordgo.MessageSend{Content: chunk})
	}
	for i, batch := range batchFiles(response.files, maxFilesPerMessage) {
		message := discordgo.MessageSend{}
		if i == 0 {
			message.Content = chunks[last]
		}
		for _, file := range batch {
			message.Files = append(message.Files, &discordgo.File{
				Name:        file.Name,
				ContentType: file.ContentType,
				Reader:      bytes.NewReader(file.Data),
			})
		}
		messages = append(messages, message)
	}
	return messages
}

// splitContent cuts content into parts of at most limit characters,
// preferring line ends. Joined back together the parts give the content
func splitContent(content string, limit int) []string {
	if utf8.RuneCountInString(content) <= limit {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0
	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range strings.SplitAfter(content, "\n") {
		lineLen := utf8.RuneCountInString(line)
		if currentLen+lineLen > limit {
			flush()
		}
		// A single line longer than a message is cut anywhere
		for lineLen > limit {
			cut := 0
			for i := 0; i < limit; i++ {
				_, size := utf8.DecodeRuneInString(line[cut:])
				cut += size
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
			lineLen -= limit
		}
		current.WriteString(line)
		currentLen += lineLen
	}
	flush()
	return chunks
}

func batchFiles(files []File, size int) [][]File {
	if len(files) == 0 {
		return [][]File{nil}
	}
	batches := make([][]File, 0, (len(files)+size-1)/size)
	for start := 0; start < len(files); start += size {
		end := min(start+size, len(files))
		batches = append(batches, files[start:end])
	}
	return batches
}
