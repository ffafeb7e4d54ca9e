package handler

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"taskboard/internal/discord"
	"taskboard/internal/hub"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
)

// DiscordHandler serves the interactions webhook for the /newtask slash
// command.
type DiscordHandler struct {
	userRepo  repository.UserRepositoryInterface
	taskRepo  repository.TaskRepositoryInterface
	events    hub.Publisher
	followup  *discord.FollowupClient
	publicKey ed25519.PublicKey
}

func NewDiscordHandler(userRepo repository.UserRepositoryInterface, taskRepo repository.TaskRepositoryInterface, events hub.Publisher, followup *discord.FollowupClient, publicKeyHex string) (*DiscordHandler, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid discord public key: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("discord public key must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}
	return &DiscordHandler{
		userRepo:  userRepo,
		taskRepo:  taskRepo,
		events:    events,
		followup:  followup,
		publicKey: key,
	}, nil
}

// Interactions is the single webhook Discord calls. Every request must carry
// a valid ed25519 signature; Discord probes the endpoint with ping and with
// deliberately broken signatures.
func (h *DiscordHandler) Interactions(c *gin.Context) {
	if !discordgo.VerifyInteraction(c.Request, h.publicKey) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid request signature"})
		return
	}

	var interaction discordgo.Interaction
	if err := json.NewDecoder(c.Request.Body).Decode(&interaction); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid interaction payload"})
		return
	}

	switch interaction.Type {
	case discordgo.InteractionPing:
		c.JSON(http.StatusOK, discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})

	case discordgo.InteractionApplicationCommandAutocomplete:
		h.autocomplete(c, &interaction)

	case discordgo.InteractionApplicationCommand:
		data := interaction.ApplicationCommandData()
		if data.Name != discord.CommandNewTask {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown command"})
			return
		}
		// Task creation talks to the store and back to Discord, which does
		// not fit in the 3 second interaction window. Acknowledge now,
		// deliver the result by editing the deferred message.
		c.JSON(http.StatusOK, discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		})
		go h.createTaskFromCommand(context.Background(), interaction)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported interaction type"})
	}
}

func (h *DiscordHandler) autocomplete(c *gin.Context, interaction *discordgo.Interaction) {
	data := interaction.ApplicationCommandData()
	focused := discord.FocusedOption(data)
	if focused == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No focused option"})
		return
	}
	query, _ := focused.Value.(string)
	query = strings.ToLower(query)

	var values []string
	switch focused.Name {
	case discord.OptionResponsible:
		users, err := h.userRepo.GetAll(c.Request.Context())
		if err != nil {
			log.Printf("⚠️  Autocomplete user lookup failed: %v", err)
		}
		for _, u := range users {
			values = append(values, u.Name)
		}
	case discord.OptionProject:
		tasks, err := h.taskRepo.GetAll(c.Request.Context())
		if err != nil {
			log.Printf("⚠️  Autocomplete project lookup failed: %v", err)
		}
		seen := make(map[string]bool)
		for _, t := range tasks {
			if t.Project != "" && !seen[t.Project] {
				seen[t.Project] = true
				values = append(values, t.Project)
			}
		}
		sort.Strings(values)
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, discord.MaxAutocompleteChoices)
	for _, v := range values {
		if query != "" && !strings.Contains(strings.ToLower(v), query) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
		if len(choices) == discord.MaxAutocompleteChoices {
			break
		}
	}

	c.JSON(http.StatusOK, discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}

// createTaskFromCommand runs after the deferred acknowledgment and reports
// the outcome by editing the original response. User-facing strings are in
// Portuguese to match the board.
func (h *DiscordHandler) createTaskFromCommand(ctx context.Context, interaction discordgo.Interaction) {
	fail := func(msg string) {
		content := "❌ " + msg
		if err := h.followup.EditOriginal(ctx, interaction.Token, &discordgo.WebhookEdit{Content: &content}); err != nil {
			log.Printf("❌ Failed to edit deferred response: %v", err)
		}
	}

	opts := discord.StringOptions(interaction.ApplicationCommandData())

	creator := "Discord"
	if interaction.Member != nil && interaction.Member.User != nil {
		creator = interaction.Member.User.Username
	} else if interaction.User != nil {
		creator = interaction.User.Username
	}

	responsibleName := opts[discord.OptionResponsible]
	user, err := h.userRepo.FindByName(ctx, responsibleName)
	if err != nil {
		fail(fmt.Sprintf("Responsável %q não encontrado no quadro.", responsibleName))
		return
	}

	numericID, err := h.taskRepo.NextNumericID(ctx)
	if err != nil {
		fail("Não foi possível gerar o ID da tarefa.")
		return
	}

	project := opts[discord.OptionProject]
	if project == "" {
		project = "Geral"
	}

	now := time.Now()
	task := &model.Task{
		ID:          model.FormatTaskID(numericID),
		NumericID:   numericID,
		Title:       opts[discord.OptionTitle],
		Description: opts[discord.OptionDescription],
		Responsible: model.ResponsibleList{{
			Name:    user.Name,
			Email:   user.Email,
			Picture: user.Picture,
		}},
		Project:      project,
		ProjectColor: model.DefaultProjectColor,
		Priority:     model.DefaultPriority,
		Status:       model.StatusTodo,
		CreatedAt:    now.UTC().Format(time.RFC3339),
		CreatedBy:    creator,
		Order:        -now.UnixMilli(),
		Attachments:  []model.Attachment{},
	}
	task.RecordStatus(model.StatusTodo, now)

	if err := h.taskRepo.Create(ctx, task); err != nil {
		fail("Não foi possível salvar a tarefa.")
		return
	}

	h.events.Publish(hub.EventTaskCreated, task)

	content := fmt.Sprintf("✅ Tarefa **%s** criada com sucesso!", task.ID)
	embeds := []*discordgo.MessageEmbed{{
		Title:       fmt.Sprintf("[%s] %s", task.ID, task.Title),
		Description: task.Description,
		Color:       0x526D82,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Projeto", Value: task.Project, Inline: true},
			{Name: "Responsável", Value: user.Name, Inline: true},
			{Name: "Prioridade", Value: task.Priority, Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Criado por: " + creator},
		Timestamp: task.CreatedAt,
	}}
	if err := h.followup.EditOriginal(ctx, interaction.Token, &discordgo.WebhookEdit{Content: &content, Embeds: &embeds}); err != nil {
		log.Printf("❌ Failed to edit deferred response: %v", err)
	}
}
