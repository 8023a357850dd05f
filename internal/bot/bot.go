package bot

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"standupbot/internal/config"
	"standupbot/internal/scheduler"
	"standupbot/internal/standup"
	"standupbot/internal/store"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	config     *config.Config
	session    *discordgo.Session
	service    *standup.Service
	scheduler  *scheduler.Scheduler
	shutdownCh chan struct{}
	isShutdown bool
	mu         sync.Mutex
	wg         sync.WaitGroup
}

func New(cfg *config.Config, st *store.Store, settings standup.Settings, roster []string) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	mode, err := standup.ParseTargetMode(cfg.Standup.TargetMode)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New()
	service, err := standup.NewService(standup.ServiceConfig{
		Transport: NewDiscord(session, cfg.Discord.GuildID),
		Store:     st,
		Schedule:  sched,
		Settings:  settings,
		Roster:    roster,
		Resolver: standup.ResolverConfig{
			Mode:            mode,
			ChannelID:       cfg.Discord.ChannelID,
			ArchiveLookback: cfg.Standup.ArchiveLookback,
		},
		PrecreateEvery:   cfg.PrecreateEvery,
		RosterOnlyRecaps: cfg.Standup.RosterOnlyRecaps,
	})
	if err != nil {
		return nil, err
	}

	return &Bot{
		config:     cfg,
		session:    session,
		service:    service,
		scheduler:  sched,
		shutdownCh: make(chan struct{}),
		isShutdown: false,
	}, nil
}

// Helper function to register commands for a guild
func (b *Bot) registerGuildCommands(guildID string) error {
	maxRetries := 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := b.registerGuildCommandsOnce(guildID)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Printf("Attempt %d to register commands failed: %v", i+1, err)
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return fmt.Errorf("failed to register commands after %d attempts: %v", maxRetries, lastErr)
}

func (b *Bot) registerGuildCommandsOnce(guildID string) error {
	log.Printf("Registering commands for guild %s", guildID)

	// Clear existing commands first so renamed or removed commands do not
	// linger in the guild.
	existing, err := b.session.ApplicationCommands(b.config.Discord.ClientID, guildID)
	if err != nil {
		return fmt.Errorf("error getting existing commands: %w", err)
	}

	for _, v := range existing {
		if err := b.session.ApplicationCommandDelete(b.config.Discord.ClientID, guildID, v.ID); err != nil {
			log.Printf("%s: Failed to delete command (%v)", v.Name, err)
		} else {
			log.Printf("%s: Successfully removed command", v.Name)
		}
	}

	// Wait a moment to ensure all deletions are processed
	time.Sleep(time.Second)

	for _, v := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.config.Discord.ClientID, guildID, v); err != nil {
			return fmt.Errorf("error creating command %s: %w", v.Name, err)
		}
		log.Printf("%s: Registered command", v.Name)
	}

	return nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.Println("Starting standup bot...")

	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type == discordgo.InteractionApplicationCommand {
			b.handleCommand(s, i)
		}
	})
	b.session.AddHandler(b.handleMessageCreate)

	// Keep trying to connect until successful
	for {
		// Test Discord API connection
		log.Println("Testing Discord API connection...")
		if _, err := b.session.User("@me"); err != nil {
			log.Printf("Failed to connect to Discord API: %v. Retrying in 5 seconds...", err)
			time.Sleep(5 * time.Second)
			continue
		}
		log.Println("Successfully connected to Discord API")
		break
	}

	// Keep trying to open session until successful
	for {
		if err := b.session.Open(); err != nil {
			log.Printf("Error opening Discord session: %v. Retrying in 5 seconds...", err)
			time.Sleep(5 * time.Second)
			continue
		}
		log.Printf("Session opened successfully (Session ID: %s)", b.session.State.SessionID)
		break
	}

	if err := b.registerGuildCommands(b.config.Discord.GuildID); err != nil {
		log.Printf("Error registering commands for guild %s: %v", b.config.Discord.GuildID, err)
	}

	if err := b.service.ApplySchedule(); err != nil {
		return fmt.Errorf("error applying schedule: %w", err)
	}

	log.Println("Bot is now running. Press CTRL-C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()
	return b.Shutdown()
}

// Shutdown performs a graceful shutdown of the bot
func (b *Bot) Shutdown() error {
	log.Println("Initiating graceful shutdown...")

	// Ensure we only close the channel once
	b.mu.Lock()
	if b.isShutdown {
		b.mu.Unlock()
		return nil
	}
	b.isShutdown = true
	close(b.shutdownCh)
	b.mu.Unlock()

	// Stop scheduled triggers and let running ones finish
	log.Println("Stopping scheduler...")
	b.scheduler.Stop()

	// Wait for all handlers to complete
	log.Println("Waiting for active handlers to complete...")
	b.wg.Wait()

	log.Printf("Removing commands for guild %s", b.config.Discord.GuildID)
	registered, err := b.session.ApplicationCommands(b.config.Discord.ClientID, b.config.Discord.GuildID)
	if err != nil {
		log.Printf("Error getting commands: %v", err)
	} else {
		for _, cmd := range registered {
			if err := b.session.ApplicationCommandDelete(b.config.Discord.ClientID, b.config.Discord.GuildID, cmd.ID); err != nil {
				log.Printf("%s: Failed to remove command (%v)", cmd.Name, err)
			} else {
				log.Printf("%s: Successfully removed command", cmd.Name)
			}
		}
	}

	// Close Discord session
	log.Println("Closing Discord session...")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing Discord session: %w", err)
	}

	log.Println("Shutdown completed successfully")
	return nil
}

// track registers a handler with the shutdown wait group. It reports false
// once shutdown has begun and new work must be refused.
func (b *Bot) track() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isShutdown {
		return false
	}
	b.wg.Add(1)
	return true
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Bot is ready! Connected to %d guilds", len(r.Guilds))
}

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID != b.config.Discord.GuildID {
		return
	}
	if !b.track() {
		return
	}
	defer b.wg.Done()

	channel, err := s.State.Channel(m.ChannelID)
	if err != nil {
		channel, err = s.Channel(m.ChannelID)
		if err != nil {
			log.Printf("Error resolving channel %s: %v", m.ChannelID, err)
			return
		}
	}

	incoming := standup.IncomingMessage{
		ChannelID:  m.ChannelID,
		MessageID:  m.ID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Content:    m.Content,
		CreatedAt:  m.Timestamp,
	}
	if channel.IsThread() {
		incoming.ThreadName = channel.Name
		incoming.ParentID = channel.ParentID
	}

	b.service.HandleMessage(incoming)
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Add defer to catch panics with stack trace
	defer func() {
		if r := recover(); r != nil {
			// Get username and context for better error tracking
			var username, context string
			if i.Member != nil && i.Member.User != nil {
				username = i.Member.User.Username
				if guild, err := s.Guild(i.GuildID); err == nil {
					context = fmt.Sprintf("guild %s (%s)", guild.Name, i.GuildID)
				} else {
					context = fmt.Sprintf("guild ID %s", i.GuildID)
				}
			} else if i.User != nil {
				username = i.User.Username
				context = "DM"
			} else {
				username = "unknown"
				context = "unknown context"
			}

			// Log the stack trace with context
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			log.Printf("Panic in command handler for user %s in %s:\nError: %v\nStack Trace:\n%s",
				username, context, r, string(buf[:n]))

			respondWithError(s, i, "An internal error occurred")
		}
	}()

	commandName := i.ApplicationCommandData().Name

	// Strict DM check
	if i.GuildID == "" {
		respondWithError(s, i, fmt.Sprintf("The `/%s` command can only be used in a server", commandName))
		return
	}

	if !b.track() {
		respondWithError(s, i, "The bot is shutting down")
		return
	}
	defer b.wg.Done()

	// Handle the command
	switch commandName {
	case "notify":
		b.handleNotify(s, i)
	case "remove":
		b.handleRemove(s, i)
	case "list-users":
		b.handleListUsers(s, i)
	case "set-reminder-time":
		b.handleSetReminderTime(s, i)
	case "set-second-reminder":
		b.handleSetSecondReminder(s, i)
	case "set-deadline":
		b.handleSetDeadline(s, i)
	case "set-timezone":
		b.handleSetTimezone(s, i)
	case "set-standup-format":
		b.handleSetStandupFormat(s, i)
	case "daily-recap":
		b.handleDailyRecap(s, i)
	case "weekly-recap":
		b.handleWeeklyRecap(s, i)
	case "test-reminder":
		b.handleTestReminder(s, i)
	case "test-second-reminder":
		b.handleTestSecondReminder(s, i)
	case "test-followup":
		b.handleTestFollowup(s, i)
	case "resync-target":
		b.handleResyncTarget(s, i)
	case "status":
		b.handleStatus(s, i)
	case "sync":
		b.handleSync(s, i)
	default:
		log.Printf("Unknown command: %s", commandName)
		respondWithError(s, i, "Unknown command")
	}
}
