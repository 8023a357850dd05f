package bot

import (
	"strconv"
	"time"

	"standupbot/internal/standup"

	"github.com/bwmarrin/discordgo"
)

// discordEpoch is the first millisecond of 2015, the zero point of
// snowflake timestamps.
const discordEpoch = 1420070400000

// threadAutoArchiveMinutes keeps a day's thread open for 24 hours of
// inactivity before Discord archives it.
const threadAutoArchiveMinutes = 1440

// Discord adapts a discordgo session to the standup.Transport interface.
type Discord struct {
	session *discordgo.Session
	guildID string
}

func NewDiscord(session *discordgo.Session, guildID string) *Discord {
	return &Discord{session: session, guildID: guildID}
}

func (d *Discord) SendMessage(channelID, content string) error {
	_, err := d.session.ChannelMessageSend(channelID, content)
	return err
}

func (d *Discord) CreateThread(channelID, name string) (*standup.Target, error) {
	thread, err := d.session.ThreadStartComplex(channelID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: threadAutoArchiveMinutes,
		Type:                discordgo.ChannelTypeGuildPublicThread,
	})
	if err != nil {
		return nil, err
	}
	return threadTarget(thread), nil
}

func (d *Discord) AddReaction(channelID, messageID, emoji string) error {
	return d.session.MessageReactionAdd(channelID, messageID, emoji)
}

// Messages fetches channel history. With a lower time bound it walks
// forward page by page from that bound; otherwise it takes the most recent
// page. Discord caps each page at 100 messages.
func (d *Discord) Messages(channelID string, q standup.HistoryQuery) ([]standup.Message, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	var raw []*discordgo.Message
	if q.After.IsZero() {
		batchSize := limit
		if batchSize > 100 {
			batchSize = 100
		}
		batch, err := d.session.ChannelMessages(channelID, batchSize, "", "", "")
		if err != nil {
			return nil, err
		}
		raw = batch
	} else {
		after := snowflakeAt(q.After)
		for len(raw) < limit {
			batchSize := limit - len(raw)
			if batchSize > 100 {
				batchSize = 100
			}
			batch, err := d.session.ChannelMessages(channelID, batchSize, "", after, "")
			if err != nil {
				return nil, err
			}
			if len(batch) == 0 {
				break
			}
			raw = append(raw, batch...)
			after = newestID(batch)
			if len(batch) < batchSize {
				break
			}
		}
	}

	selfID := d.selfID()
	var messages []standup.Message
	for _, m := range raw {
		if m.Author == nil {
			continue
		}
		if !q.After.IsZero() && m.Timestamp.Before(q.After) {
			continue
		}
		if !q.Before.IsZero() && !m.Timestamp.Before(q.Before) {
			continue
		}
		messages = append(messages, standup.Message{
			ID:        m.ID,
			AuthorID:  m.Author.ID,
			Author:    m.Author.Username,
			Content:   m.Content,
			CreatedAt: m.Timestamp,
			Bot:       m.Author.Bot,
			FromSelf:  m.Author.ID == selfID,
		})
	}
	return messages, nil
}

func (d *Discord) ActiveThreads(parentID string) ([]standup.Target, error) {
	list, err := d.session.GuildThreadsActive(d.guildID)
	if err != nil {
		return nil, err
	}
	var targets []standup.Target
	for _, thread := range list.Threads {
		if thread.ParentID != parentID {
			continue
		}
		targets = append(targets, *threadTarget(thread))
	}
	return targets, nil
}

func (d *Discord) ArchivedThreads(parentID string, limit int) ([]standup.Target, error) {
	list, err := d.session.ThreadsArchived(parentID, nil, limit)
	if err != nil {
		return nil, err
	}
	targets := make([]standup.Target, 0, len(list.Threads))
	for _, thread := range list.Threads {
		targets = append(targets, *threadTarget(thread))
	}
	return targets, nil
}

func (d *Discord) Member(userID string) (*standup.Member, error) {
	m, err := d.session.GuildMember(d.guildID, userID)
	if err != nil {
		return nil, err
	}
	member := &standup.Member{ID: userID}
	if m.User != nil {
		member.Username = m.User.Username
		member.DisplayName = m.User.Username
	}
	if m.Nick != "" {
		member.DisplayName = m.Nick
	}
	return member, nil
}

func (d *Discord) selfID() string {
	if d.session.State != nil && d.session.State.User != nil {
		return d.session.State.User.ID
	}
	return ""
}

func threadTarget(ch *discordgo.Channel) *standup.Target {
	created, _ := discordgo.SnowflakeTimestamp(ch.ID)
	return &standup.Target{ID: ch.ID, Name: ch.Name, CreatedAt: created}
}

// snowflakeAt returns the smallest snowflake whose timestamp is not before
// t, for use as a history cursor.
func snowflakeAt(t time.Time) string {
	ms := t.UnixMilli() - discordEpoch
	if ms < 0 {
		ms = 0
	}
	return strconv.FormatInt(ms<<22, 10)
}

func newestID(messages []*discordgo.Message) string {
	var newest uint64
	for _, m := range messages {
		if id, err := strconv.ParseUint(m.ID, 10, 64); err == nil && id > newest {
			newest = id
		}
	}
	return strconv.FormatUint(newest, 10)
}
