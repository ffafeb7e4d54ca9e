package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Command and option names registered for the bot.
const (
	CommandNewTask    = "newtask"
	OptionTitle       = "title"
	OptionDescription = "description"
	OptionResponsible = "responsible"
	OptionProject     = "project"
)

// MaxAutocompleteChoices is the platform cap on inline suggestion results.
const MaxAutocompleteChoices = 25

// StringOptions flattens the command options into a name → value map.
func StringOptions(data discordgo.ApplicationCommandInteractionData) map[string]string {
	values := make(map[string]string, len(data.Options))
	for _, opt := range data.Options {
		if s, ok := opt.Value.(string); ok {
			values[opt.Name] = s
		}
	}
	return values
}

// FocusedOption returns the option the user is currently typing into, which
// is the one an autocomplete response must target.
func FocusedOption(data discordgo.ApplicationCommandInteractionData) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range data.Options {
		if opt.Focused {
			return opt
		}
	}
	return nil
}
