package bot

import (
	"fmt"
	"log"
	"runtime"
	"sort"
	"strings"
	"time"

	"standupbot/internal/standup"

	"github.com/bwmarrin/discordgo"
)

const statusTimeLayout = "2006-01-02 15:04:05 MST"

func (b *Bot) handleDailyRecap(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(i, "daily-recap")

	day := b.service.Today()
	if options := i.ApplicationCommandData().Options; len(options) > 0 {
		day = options[0].StringValue()
	}

	// Recaps read channel history, which can take a while.
	if err := deferResponse(s, i, false); err != nil {
		return
	}

	recap, err := b.service.DailyRecap(day)
	if err != nil {
		followup(s, i, "Error generating recap: "+err.Error(), false)
		return
	}
	followupChunks(s, i, recap)
}

func (b *Bot) handleWeeklyRecap(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(i, "weekly-recap")

	if err := deferResponse(s, i, false); err != nil {
		return
	}

	recap, err := b.service.WeeklyRecap()
	if err != nil {
		followup(s, i, "Error generating recap: "+err.Error(), false)
		return
	}
	followupChunks(s, i, recap)
}

func (b *Bot) handleTestReminder(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, adminPermission) {
		return
	}
	logCommand(i, "test-reminder")

	respondEphemeral(s, i, "Sending a test standup reminder...")
	if err := b.service.SendPrompt(); err != nil {
		followup(s, i, "Error: "+err.Error(), true)
	}
}

func (b *Bot) handleTestSecondReminder(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, adminPermission) {
		return
	}
	logCommand(i, "test-second-reminder")

	respondEphemeral(s, i, "Sending a test second reminder...")
	if err := b.service.SendSecondReminder(); err != nil {
		followup(s, i, "Error: "+err.Error(), true)
	}
}

func (b *Bot) handleTestFollowup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, adminPermission) {
		return
	}
	logCommand(i, "test-followup")

	respondEphemeral(s, i, "Sending a test followup notification...")
	if err := b.service.SendFollowup(); err != nil {
		followup(s, i, "Error: "+err.Error(), true)
	}
}

func (b *Bot) handleResyncTarget(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, adminPermission) {
		return
	}
	logCommand(i, "resync-target")

	if err := deferResponse(s, i, false); err != nil {
		return
	}

	target, err := b.service.ResyncTarget()
	if err != nil {
		followup(s, i, "Error re-resolving standup target: "+err.Error(), false)
		return
	}
	if target.Name != "" {
		followup(s, i, fmt.Sprintf("Standup target re-resolved: %s (ID: %s)", target.Name, target.ID), false)
	} else {
		followup(s, i, fmt.Sprintf("Standup target re-resolved: <#%s>", target.ID), false)
	}
}

func (b *Bot) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !requirePermission(s, i, adminPermission) {
		return
	}
	logCommand(i, "status")

	if err := deferResponse(s, i, false); err != nil {
		return
	}

	st := b.service.Status()

	embed := &discordgo.MessageEmbed{
		Title:       "🔍 Standup Bot Diagnostic Information",
		Description: "A complete overview of the bot's current configuration and status",
		Color:       0x3498db,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Generated at " + st.Now.Format(statusTimeLayout),
		},
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "🤖 Bot Information",
		Value: b.botInfoField(st),
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "⚙️ Configuration",
		Value: configField(st.Settings),
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "📅 Scheduled Events",
		Value: scheduleField(st),
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "👥 Standup Users",
		Value: b.rosterField(s, i.GuildID, st.Roster),
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "📊 Today's Responses",
		Value: b.responsesField(s, i.GuildID, st.Responses),
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "📝 Standup Format",
		Value: "```\n" + st.Settings.StandupFormat + "\n```",
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "🔐 Permission Check",
		Value: b.permissionField(s, st.ChannelID),
	})

	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}); err != nil {
		log.Printf("Error sending status embed: %v", err)
		return
	}

	b.sendTestMessage(s, st.ChannelID)
}

func (b *Bot) botInfoField(st standup.Status) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Guild ID:** %s\n", b.config.Discord.GuildID))
	sb.WriteString(fmt.Sprintf("**Standup Channel:** <#%s>\n", st.ChannelID))
	sb.WriteString(fmt.Sprintf("**Target Mode:** %s\n", st.Mode))
	sb.WriteString(fmt.Sprintf("**Today:** %s\n", st.Day))
	if st.Target != nil && st.Target.Name != "" {
		sb.WriteString(fmt.Sprintf("**Today's Thread:** %s (ID: %s)\n", st.Target.Name, st.Target.ID))
	} else if st.Mode == standup.ModeThread {
		sb.WriteString("**Today's Thread:** not resolved yet\n")
	}
	sb.WriteString(fmt.Sprintf("**discordgo:** v%s, **go:** %s", discordgo.VERSION, runtime.Version()))
	return sb.String()
}

func configField(settings standup.Settings) string {
	secondReminder := settings.SecondReminderTime
	if secondReminder == "" {
		secondReminder = "disabled"
	}
	weekdays := "No"
	if settings.WeekdaysOnly {
		weekdays = "Yes"
	}
	return fmt.Sprintf(
		"**Reminder Time:** %s\n**Second Reminder:** %s\n**Deadline Time:** %s\n**Timezone:** %s\n**Weekdays Only:** %s",
		settings.ReminderTime, secondReminder, settings.DeadlineTime, settings.Timezone, weekdays)
}

func scheduleField(st standup.Status) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Current Time:** %s\n", st.Now.Format(statusTimeLayout)))
	for _, trigger := range st.Triggers {
		next := "unknown"
		if !trigger.Next.IsZero() {
			next = trigger.Next.In(st.Now.Location()).Format(statusTimeLayout)
		}
		sb.WriteString(fmt.Sprintf("**Next %s:** %s\n", triggerLabel(trigger.Name), next))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func triggerLabel(name string) string {
	switch name {
	case standup.TriggerPrompt:
		return "Reminder"
	case standup.TriggerSecondReminder:
		return "Second Reminder"
	case standup.TriggerFollowup:
		return "Follow-up"
	case standup.TriggerDailyReset:
		return "Daily Reset"
	case standup.TriggerPrecreate:
		return "Thread Pre-create"
	}
	return name
}

func (b *Bot) rosterField(s *discordgo.Session, guildID string, roster []string) string {
	if len(roster) == 0 {
		return "No users currently on the standup list."
	}
	var sb strings.Builder
	for n, id := range roster {
		name := "Unknown User"
		if member, err := s.GuildMember(guildID, id); err == nil {
			if member.Nick != "" {
				name = member.Nick
			} else if member.User != nil {
				name = member.User.Username
			}
		}
		sb.WriteString(fmt.Sprintf("%d. %s - ID: %s\n", n+1, name, id))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) responsesField(s *discordgo.Session, guildID string, responses map[string]standup.Response) string {
	if len(responses) == 0 {
		return "No responses tracked for today."
	}

	ids := make([]string, 0, len(responses))
	for id := range responses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		return responses[ids[a]].Timestamp.Before(responses[ids[b]].Timestamp)
	})

	var sb strings.Builder
	for _, id := range ids {
		name := id
		if member, err := s.GuildMember(guildID, id); err == nil {
			if member.Nick != "" {
				name = member.Nick
			} else if member.User != nil {
				name = member.User.Username
			}
		}
		sb.WriteString(fmt.Sprintf("%s: ✅ Submitted at %s\n", name, responses[id].Timestamp.Format("15:04")))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) permissionField(s *discordgo.Session, channelID string) string {
	channelOK := "✅"
	if _, err := s.Channel(channelID); err != nil {
		channelOK = "❌"
	}

	var selfID string
	if s.State != nil && s.State.User != nil {
		selfID = s.State.User.ID
	}
	perms, err := s.UserChannelPermissions(selfID, channelID)
	check := func(p int64) string {
		if err == nil && perms&p != 0 {
			return "✅"
		}
		return "❌"
	}

	return fmt.Sprintf(
		"**Channel Exists:** %s\n**Can Send Messages:** %s\n**Can Create Threads:** %s\n**Can Mention Users:** %s",
		channelOK,
		check(discordgo.PermissionSendMessages),
		check(discordgo.PermissionCreatePublicThreads),
		check(discordgo.PermissionMentionEveryone))
}

// sendTestMessage verifies write access to the standup channel and cleans
// up after itself.
func (b *Bot) sendTestMessage(s *discordgo.Session, channelID string) {
	msg, err := s.ChannelMessageSend(channelID,
		"🔍 **Bot Test Message**\nThis message was generated from a diagnostic test and will be deleted in a few seconds.")
	if err != nil {
		log.Printf("Error sending test message: %v", err)
		return
	}
	time.Sleep(5 * time.Second)
	if err := s.ChannelMessageDelete(channelID, msg.ID); err != nil {
		log.Printf("Error deleting test message: %v", err)
	}
}
