package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/quanghng/discord-tft-notify/internal/config"
	"github.com/quanghng/discord-tft-notify/internal/database"
	"github.com/quanghng/discord-tft-notify/internal/embed"
	"github.com/quanghng/discord-tft-notify/internal/models"
	"github.com/quanghng/discord-tft-notify/internal/poller"
	"github.com/quanghng/discord-tft-notify/internal/riotid"
	"github.com/quanghng/discord-tft-notify/internal/stats"
	"github.com/quanghng/discord-tft-notify/internal/verify"
)

type Bot struct {
	Session  *discordgo.Session
	Repo     *database.Repository
	Fetcher  *stats.Fetcher
	Verifier *verify.Manager
	Poller   *poller.Poller

	cancel    context.CancelFunc
	ready     chan struct{}
	readyOnce sync.Once
}

func New() (*Bot, error) {
	discord, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		return nil, err
	}
	discord.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	b := &Bot{
		Session:  discord,
		Repo:     database.NewRepository(),
		Fetcher:  stats.NewFetcher(config.CacheTTL, stats.NewTrackerGG(), stats.NewOpGG()),
		Verifier: verify.NewManager(config.VerifyTTL),
		ready:    make(chan struct{}),
	}
	b.Poller = poller.New(
		b.Repo,
		b.Fetcher,
		b,
		poller.FixedDelay(config.SubscriberDelay),
		config.PollInterval,
	)
	b.Poller.Housekeeping = func() { b.Verifier.Purge() }

	b.registerHandlers()

	return b, nil
}

func (b *Bot) Start() error {
	if err := b.Session.Open(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	// The loop waits on the ready signal before its first tick
	b.Poller.Start(ctx, b.ready)

	return nil
}

func (b *Bot) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.Session.Close()
}

func (b *Bot) registerHandlers() {
	b.Session.AddHandler(b.onReady)
	b.Session.AddHandler(b.messageCreate)
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Info().Str("user", event.User.Username).Msg("bot is ready")
	b.readyOnce.Do(func() { close(b.ready) })
	b.updateBotStatus()
}

// NotifyMatch delivers a new-match notification. It implements
// poller.Notifier.
func (b *Bot) NotifyMatch(ctx context.Context, sub models.Subscriber, match stats.Match) error {
	var rank *stats.Rank
	if id, err := riotid.Parse(sub.RiotID); err == nil {
		// Best effort, the notification goes out without a rank line
		// when the sources have nothing
		rank, _ = b.Fetcher.Rank(ctx, id, sub.Region)
	}

	var mention string
	if sub.MentionOnNotify {
		mention = fmt.Sprintf("<@%s> ", sub.OwnerID)
	}

	_, err := b.Session.ChannelMessageSendComplex(sub.ChannelID, &discordgo.MessageSend{
		Content: mention,
		Embed:   embed.CreateMatchEmbed(sub, match, rank),
	})
	return err
}

// SubscriberCount and PollerRunning back the HTTP status endpoint.

func (b *Bot) SubscriberCount() int64 {
	count, err := b.Repo.Count()
	if err != nil {
		return 0
	}
	return count
}

func (b *Bot) PollerRunning() bool {
	return b.Poller.Running()
}

func (b *Bot) updateBotStatus() {
	count, err := b.Repo.Count()
	if err != nil {
		log.Error().Err(err).Msg("could not count subscribers for status")
		return
	}
	err = b.Session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{
			{
				Name: fmt.Sprintf("%d TFT players", count),
				Type: discordgo.ActivityTypeWatching,
			},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("could not update bot status")
	}
}
