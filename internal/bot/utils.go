package bot

import (
	"fmt"
	"log"
	"strings"

	"standupbot/internal/standup"

	"github.com/bwmarrin/discordgo"
)

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, msg string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: msg}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}); err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

// respondWithError sends an error response to the user
func respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, errMsg string) {
	respond(s, i, "Error: "+errMsg, true)
}

// respondWithSuccess sends a response visible to the whole channel
func respondWithSuccess(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	respond(s, i, msg, false)
}

// respondEphemeral sends a response only the invoking user can see
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	respond(s, i, msg, true)
}

// deferResponse acknowledges a command whose work takes longer than the
// three seconds Discord allows for the initial response.
func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Printf("Error acknowledging interaction: %v", err)
	}
	return err
}

// followup sends a message after a deferred acknowledgment
func followup(s *discordgo.Session, i *discordgo.InteractionCreate, msg string, ephemeral bool) {
	params := &discordgo.WebhookParams{Content: msg}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	if _, err := s.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		log.Printf("Error sending followup: %v", err)
	}
}

// followupChunks splits long report output across followup messages so
// each stays within the Discord message limit.
func followupChunks(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	for _, chunk := range standup.Paginate(text, standup.MessageLimit) {
		followup(s, i, chunk, false)
	}
}

// hasPermission checks the member permissions computed for the
// interaction's channel. Administrators pass every check.
func hasPermission(i *discordgo.InteractionCreate, permission int64) bool {
	if i.Member == nil {
		return false
	}
	perms := i.Member.Permissions
	return perms&permission != 0 || perms&int64(discordgo.PermissionAdministrator) != 0
}

// requirePermission rejects the interaction when the invoking member lacks
// the permission. Command registration already hides gated commands from
// members without them, this is the backstop.
func requirePermission(s *discordgo.Session, i *discordgo.InteractionCreate, permission int64) bool {
	if hasPermission(i, permission) {
		return true
	}
	msg := "You don't have permission to use this command."
	if permission == adminPermission {
		msg = "This command is for administrators only."
	}
	respondEphemeral(s, i, msg)
	return false
}

// displayName resolves the guild nick for a user, falling back to the
// username.
func displayName(s *discordgo.Session, guildID string, user *discordgo.User) string {
	member, err := s.GuildMember(guildID, user.ID)
	if err == nil && member.Nick != "" {
		return member.Nick
	}
	return user.Username
}

// logCommand logs command execution with its parameters
func logCommand(i *discordgo.InteractionCreate, commandName string) {
	// Get username safely, handling both DM and server contexts
	var username string
	if i.Member != nil && i.Member.User != nil {
		username = i.Member.User.Username
	} else if i.User != nil {
		username = i.User.Username
	} else {
		username = "unknown"
	}

	// Build command parameters string
	var params []string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			params = append(params, fmt.Sprintf("%s:%s", opt.Name, opt.StringValue()))
		case discordgo.ApplicationCommandOptionUser:
			params = append(params, fmt.Sprintf("%s:%v", opt.Name, opt.Value))
		}
	}

	logMessage := fmt.Sprintf("%s executed /%s", username, commandName)
	if len(params) > 0 {
		logMessage += fmt.Sprintf(" [%s]", strings.Join(params, ", "))
	}
	log.Println(logMessage)
}
