package bot

import (
	"fmt"
	"strings"
	"time"

	"standupbot/internal/standup"

	"github.com/bwmarrin/discordgo"
)

var (
	manageMessagesPermission = int64(discordgo.PermissionManageMessages)
	adminPermission          = int64(discordgo.PermissionAdministrator)

	commands = []*discordgo.ApplicationCommand{
		{
			Name:                     "notify",
			Description:              "Add a user to the daily standup notification list",
			DefaultMemberPermissions: &manageMessagesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to notify for standups",
					Required:    true,
				},
			},
		},
		{
			Name:                     "remove",
			Description:              "Remove a user from the daily standup notification list",
			DefaultMemberPermissions: &manageMessagesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to remove from standup notifications",
					Required:    true,
				},
			},
		},
		{
			Name:                     "list-users",
			Description:              "List all users on the standup notification list",
			DefaultMemberPermissions: &manageMessagesPermission,
		},
		{
			Name:                     "set-reminder-time",
			Description:              "Set the time for daily standup reminders",
			DefaultMemberPermissions: &manageMessagesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "time",
					Description: "Reminder time (format: HH:MM, 24-hour)",
					Required:    true,
				},
			},
		},
		{
			Name:                     "set-second-reminder",
			Description:              "Set the second standup reminder time",
			DefaultMemberPermissions: &manageMessagesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "time",
					Description: "Second reminder time (format: HH:MM, or 'off' to disable)",
					Required:    true,
				},
			},
		},
		{
			Name:                     "set-deadline",
			Description:              "Set the standup deadline and follow-up time",
			DefaultMemberPermissions: &manageMessagesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "time",
					Description: "Deadline time (format: HH:MM, 24-hour)",
					Required:    true,
				},
			},
		},
		{
			Name:                     "set-timezone",
			Description:              "Set the timezone for standup scheduling",
			DefaultMemberPermissions: &manageMessagesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "timezone",
					Description: "Timezone (e.g., America/Los_Angeles, Europe/London)",
					Required:    true,
				},
			},
		},
		{
			Name:                     "set-standup-format",
			Description:              "Set the standup template posted with each reminder",
			DefaultMemberPermissions: &manageMessagesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "format",
					Description: "Template text shown to users (use \\n for new lines)",
					Required:    true,
				},
			},
		},
		{
			Name:        "daily-recap",
			Description: "Compile all standup updates for a day into a recap",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "date",
					Description: "Date to recap (MM/DD/YYYY, defaults to today)",
					Required:    false,
				},
			},
		},
		{
			Name:        "weekly-recap",
			Description: "Compile all standup updates from Monday through today",
		},
		{
			Name:                     "test-reminder",
			Description:              "Send a test standup reminder",
			DefaultMemberPermissions: &adminPermission,
		},
		{
			Name:                     "test-second-reminder",
			Description:              "Send a test second reminder",
			DefaultMemberPermissions: &adminPermission,
		},
		{
			Name:                     "test-followup",
			Description:              "Send a test follow-up notification",
			DefaultMemberPermissions: &adminPermission,
		},
		{
			Name:                     "resync-target",
			Description:              "Re-resolve today's standup thread",
			DefaultMemberPermissions: &adminPermission,
		},
		{
			Name:                     "status",
			Description:              "Show diagnostic information about the bot",
			DefaultMemberPermissions: &adminPermission,
		},
		{
			Name:                     "sync",
			Description:              "Re-register slash commands for this guild",
			DefaultMemberPermissions: &adminPermission,
		},
	}
)

func (b *Bot) handleNotify(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, manageMessagesPermission) {
		return
	}
	logCommand(i, "notify")

	user := i.ApplicationCommandData().Options[0].UserValue(s)
	if user == nil {
		respondWithError(s, i, "Could not determine the user")
		return
	}

	added, err := b.service.AddUser(user.ID)
	if err != nil {
		respondWithError(s, i, err.Error())
		return
	}
	if !added {
		respondEphemeral(s, i, fmt.Sprintf("%s is already on the standup list.", displayName(s, i.GuildID, user)))
		return
	}
	respondWithSuccess(s, i, fmt.Sprintf("Added %s to the standup notification list.", user.Mention()))
}

func (b *Bot) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, manageMessagesPermission) {
		return
	}
	logCommand(i, "remove")

	user := i.ApplicationCommandData().Options[0].UserValue(s)
	if user == nil {
		respondWithError(s, i, "Could not determine the user")
		return
	}

	removed, err := b.service.RemoveUser(user.ID)
	if err != nil {
		respondWithError(s, i, err.Error())
		return
	}
	if !removed {
		respondEphemeral(s, i, fmt.Sprintf("%s is not on the standup list.", displayName(s, i.GuildID, user)))
		return
	}
	respondWithSuccess(s, i, fmt.Sprintf("Removed %s from the standup notification list.", user.Mention()))
}

func (b *Bot) handleListUsers(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, manageMessagesPermission) {
		return
	}
	logCommand(i, "list-users")

	users := b.service.Users()
	if len(users) == 0 {
		respondEphemeral(s, i, "No users are currently on the standup notification list.")
		return
	}

	lines := make([]string, 0, len(users))
	for _, id := range users {
		member, err := s.GuildMember(i.GuildID, id)
		if err != nil {
			lines = append(lines, fmt.Sprintf("• Unknown User (ID: %s)", id))
			continue
		}
		name := member.Nick
		if name == "" && member.User != nil {
			name = member.User.Username
		}
		lines = append(lines, fmt.Sprintf("• <@%s> (%s)", id, name))
	}

	respondWithSuccess(s, i, "**Standup Notification List:**\n"+strings.Join(lines, "\n"))
}

func (b *Bot) handleSetReminderTime(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, manageMessagesPermission) {
		return
	}
	logCommand(i, "set-reminder-time")

	value := i.ApplicationCommandData().Options[0].StringValue()
	if _, _, err := standup.ParseClock(value); err != nil {
		respondEphemeral(s, i, "Invalid time format. Please use HH:MM (24-hour format).")
		return
	}
	if err := b.service.SetReminderTime(value); err != nil {
		respondWithError(s, i, err.Error())
		return
	}
	respondWithSuccess(s, i, fmt.Sprintf("Standup reminder time set to %s %s.", value, b.service.Settings().Timezone))
}

func (b *Bot) handleSetSecondReminder(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, manageMessagesPermission) {
		return
	}
	logCommand(i, "set-second-reminder")

	value := i.ApplicationCommandData().Options[0].StringValue()
	if strings.EqualFold(value, "off") {
		if err := b.service.SetSecondReminderTime(""); err != nil {
			respondWithError(s, i, err.Error())
			return
		}
		respondWithSuccess(s, i, "Second standup reminder disabled.")
		return
	}
	if _, _, err := standup.ParseClock(value); err != nil {
		respondEphemeral(s, i, "Invalid time format. Please use HH:MM (24-hour format).")
		return
	}
	if err := b.service.SetSecondReminderTime(value); err != nil {
		respondWithError(s, i, err.Error())
		return
	}
	respondWithSuccess(s, i, fmt.Sprintf("Second standup reminder set to %s %s.", value, b.service.Settings().Timezone))
}

func (b *Bot) handleSetDeadline(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, manageMessagesPermission) {
		return
	}
	logCommand(i, "set-deadline")

	value := i.ApplicationCommandData().Options[0].StringValue()
	if _, _, err := standup.ParseClock(value); err != nil {
		respondEphemeral(s, i, "Invalid time format. Please use HH:MM (24-hour format).")
		return
	}
	if err := b.service.SetDeadlineTime(value); err != nil {
		respondWithError(s, i, err.Error())
		return
	}
	respondWithSuccess(s, i, fmt.Sprintf("Standup deadline and follow-up time set to %s %s.", value, b.service.Settings().Timezone))
}

func (b *Bot) handleSetTimezone(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, manageMessagesPermission) {
		return
	}
	logCommand(i, "set-timezone")

	zone := i.ApplicationCommandData().Options[0].StringValue()
	if _, err := time.LoadLocation(zone); err != nil {
		respondEphemeral(s, i, "Invalid timezone. Please use a valid timezone identifier (e.g., America/Los_Angeles).")
		return
	}
	if err := b.service.SetTimezone(zone); err != nil {
		respondWithError(s, i, err.Error())
		return
	}
	respondWithSuccess(s, i, fmt.Sprintf("Timezone set to %s.", zone))
}

func (b *Bot) handleSetStandupFormat(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, manageMessagesPermission) {
		return
	}
	logCommand(i, "set-standup-format")

	// Slash command input cannot contain literal new lines, so accept the
	// escaped form.
	format := strings.ReplaceAll(i.ApplicationCommandData().Options[0].StringValue(), "\\n", "\n")
	if err := b.service.SetStandupFormat(format); err != nil {
		respondWithError(s, i, err.Error())
		return
	}
	respondWithSuccess(s, i, "Standup format template updated!")
}

func (b *Bot) handleSync(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, adminPermission) {
		return
	}
	logCommand(i, "sync")

	if err := deferResponse(s, i, true); err != nil {
		return
	}
	if err := b.registerGuildCommands(i.GuildID); err != nil {
		followup(s, i, "Failed to sync commands: "+err.Error(), true)
		return
	}
	followup(s, i, fmt.Sprintf("Synced %d command(s) successfully!", len(commands)), true)
}
