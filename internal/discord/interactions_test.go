package discord_test

import (
	"testing"

	"taskboard/internal/discord"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestStringOptions(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Name: discord.CommandNewTask,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: discord.OptionTitle, Type: discordgo.ApplicationCommandOptionString, Value: "Revisar contrato"},
			{Name: discord.OptionResponsible, Type: discordgo.ApplicationCommandOptionString, Value: "Alice"},
			// Non-string values are skipped, not coerced.
			{Name: "count", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
		},
	}

	opts := discord.StringOptions(data)

	assert.Equal(t, "Revisar contrato", opts[discord.OptionTitle])
	assert.Equal(t, "Alice", opts[discord.OptionResponsible])
	assert.NotContains(t, opts, "count")
}

func TestFocusedOption(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: discord.OptionTitle, Value: "Tar"},
			{Name: discord.OptionResponsible, Value: "Al", Focused: true},
		},
	}

	focused := discord.FocusedOption(data)

	assert.NotNil(t, focused)
	assert.Equal(t, discord.OptionResponsible, focused.Name)
}

func TestFocusedOption_None(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: discord.OptionTitle, Value: "Tar"},
		},
	}

	assert.Nil(t, discord.FocusedOption(data))
}
