package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/quanghng/discord-tft-notify/internal/config"
	"github.com/quanghng/discord-tft-notify/internal/database"
	"github.com/quanghng/discord-tft-notify/internal/embed"
	"github.com/quanghng/discord-tft-notify/internal/models"
	"github.com/quanghng/discord-tft-notify/internal/riotid"
	"github.com/quanghng/discord-tft-notify/internal/stats"
	"github.com/quanghng/discord-tft-notify/internal/verify"
)

func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if m.GuildID == "" {
		// Commands only work in guild channels
		return
	}

	cmd, ok := ParseCommand(m.Content, config.CommandPrefix)
	if !ok {
		return
	}

	log.Debug().Str("command", cmd.Name).Str("user", m.Author.Username).Msg("command received")

	ctx := context.Background()
	switch cmd.Name {
	case "track":
		b.handleTrack(ctx, s, m, cmd.Args)
	case "confirm":
		b.handleConfirm(s, m, cmd.Args)
	case "cancel":
		b.handleCancel(s, m)
	case "untrack":
		b.handleUntrack(s, m, cmd.Args)
	case "myplayers":
		b.handleMyPlayers(s, m)
	case "player":
		b.handlePlayer(ctx, s, m, cmd.Args)
	case "check":
		b.handleCheck(ctx, s, m, cmd.Args)
	case "settings":
		b.handleSettings(s, m, cmd.Args)
	case "ping":
		b.handlePing(s, m)
	case "help":
		b.handleHelp(s, m)
	}
}

func (b *Bot) reply(s *discordgo.Session, channelID string, e *discordgo.MessageEmbed) {
	if _, err := s.ChannelMessageSendEmbed(channelID, e); err != nil {
		log.Error().Str("channel", channelID).Err(err).Msg("could not send reply")
	}
}

func (b *Bot) handleTrack(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 {
		b.reply(s, m.ChannelID, embed.Error("❌ Missing Riot ID",
			fmt.Sprintf("Usage: `%strack Username#Tag [region]`", config.CommandPrefix)))
		return
	}

	id, err := riotid.Parse(args[0])
	if err != nil {
		b.reply(s, m.ChannelID, embed.Error("❌ Invalid Riot ID format",
			"Please use the format **Username#Tag**\n\nExample: `PlayerName#VN2`"))
		return
	}
	region := riotid.NormalizeRegion(config.DefaultRegion)
	if len(args) > 1 {
		region = riotid.NormalizeRegion(args[1])
	}

	existing, err := b.Repo.Get(m.Author.ID, id.Normalized())
	if err != nil {
		b.reply(s, m.ChannelID, embed.Error("❌ Store error", "Please try again later."))
		return
	}
	if existing != nil {
		b.reply(s, m.ChannelID, embed.Warning("⚠️ Already tracking",
			fmt.Sprintf("You are already tracking **%s**!", id)))
		return
	}

	profile, err := b.Fetcher.Profile(ctx, id, region)
	if err != nil {
		description := fmt.Sprintf("Could not find data for **%s**.\n\nPossible reasons:\n"+
			"• the Riot ID is misspelled\n• the region does not match\n• the account has no TFT games", id)
		if errors.Is(err, stats.ErrUnavailable) {
			description = "The stat-tracking sites are not responding right now. Please try again in a few minutes."
		}
		b.reply(s, m.ChannelID, embed.Error("❌ Account not found", description))
		return
	}

	b.Verifier.Begin(m.Author.ID, id, region, profile)
	b.reply(s, m.ChannelID, embed.CreateVerifyPromptEmbed(id.String(), region, config.CommandPrefix, profile, config.VerifyTTL))
}

func (b *Bot) handleConfirm(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 {
		b.reply(s, m.ChannelID, embed.Error("❌ Missing Riot ID",
			fmt.Sprintf("Usage: `%sconfirm Username#Tag`", config.CommandPrefix)))
		return
	}

	id, err := riotid.Parse(args[0])
	if err != nil {
		b.reply(s, m.ChannelID, embed.Error("❌ Invalid Riot ID format",
			"Please use the format **Username#Tag**"))
		return
	}

	session, err := b.Verifier.Confirm(m.Author.ID, id)
	switch {
	case errors.Is(err, verify.ErrNoSession):
		b.reply(s, m.ChannelID, embed.Error("❌ No pending verification",
			fmt.Sprintf("Start with `%strack` first!", config.CommandPrefix)))
		return
	case errors.Is(err, verify.ErrExpired):
		b.reply(s, m.ChannelID, embed.Warning("⏰ Verification expired",
			fmt.Sprintf("Please start again with `%strack`.", config.CommandPrefix)))
		return
	case errors.Is(err, verify.ErrMismatch):
		b.reply(s, m.ChannelID, embed.Error("❌ Riot ID does not match",
			fmt.Sprintf("You entered `%s`, which is not the pending verification. Re-check the id or `%scancel`.",
				id, config.CommandPrefix)))
		return
	case err != nil:
		b.reply(s, m.ChannelID, embed.Error("❌ Verification failed", "Please try again."))
		return
	}

	sub := &models.Subscriber{
		OwnerID:         m.Author.ID,
		OwnerName:       m.Author.Username,
		RiotID:          session.RiotID.String(),
		RiotIDNorm:      session.RiotID.Normalized(),
		Region:          session.Region,
		ChannelID:       m.ChannelID,
		AddedAt:         time.Now(),
		AutoNotify:      true,
		MentionOnNotify: true,
	}
	if err := b.Repo.Add(sub); err != nil {
		if errors.Is(err, database.ErrAlreadyTracked) {
			b.reply(s, m.ChannelID, embed.Warning("⚠️ Already tracking",
				fmt.Sprintf("You are already tracking **%s**!", sub.RiotID)))
			return
		}
		log.Error().Err(err).Str("riot_id", sub.RiotID).Msg("could not persist subscriber")
		b.reply(s, m.ChannelID, embed.Error("❌ Could not save", "Please try again later."))
		return
	}

	b.reply(s, m.ChannelID, embed.CreateTrackedEmbed(*sub, session.Profile.Rank.Tier, config.PollInterval))
	b.updateBotStatus()
}

func (b *Bot) handleCancel(s *discordgo.Session, m *discordgo.MessageCreate) {
	if b.Verifier.Cancel(m.Author.ID) {
		b.reply(s, m.ChannelID, embed.Success("✅ Cancelled", "Your pending verification has been discarded."))
		return
	}
	b.reply(s, m.ChannelID, embed.Info("📭 Nothing to cancel", "You have no pending verification."))
}

func (b *Bot) handleUntrack(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 {
		b.reply(s, m.ChannelID, embed.Error("❌ Missing Riot ID",
			fmt.Sprintf("Usage: `%suntrack Username#Tag`", config.CommandPrefix)))
		return
	}

	id, err := riotid.Parse(args[0])
	if err != nil {
		b.reply(s, m.ChannelID, embed.Error("❌ Invalid Riot ID format",
			"Please use the format **Username#Tag**"))
		return
	}

	if err := b.Repo.Remove(m.Author.ID, id.Normalized()); err != nil {
		if errors.Is(err, database.ErrNotTracked) {
			b.reply(s, m.ChannelID, embed.Error("❌ Not found",
				fmt.Sprintf("You are not tracking **%s**.", id)))
			return
		}
		b.reply(s, m.ChannelID, embed.Error("❌ Store error", "Please try again later."))
		return
	}

	b.reply(s, m.ChannelID, embed.Success("✅ Stopped tracking",
		fmt.Sprintf("No longer tracking **%s**.", id)))
	b.updateBotStatus()
}

func (b *Bot) handleMyPlayers(s *discordgo.Session, m *discordgo.MessageCreate) {
	subs, err := b.Repo.ListByOwner(m.Author.ID)
	if err != nil {
		b.reply(s, m.ChannelID, embed.Error("❌ Store error", "Please try again later."))
		return
	}
	if len(subs) == 0 {
		b.reply(s, m.ChannelID, embed.Info("📭 Not tracking anyone",
			fmt.Sprintf("Use `%strack Username#Tag` to start!", config.CommandPrefix)))
		return
	}
	b.reply(s, m.ChannelID, embed.CreateListEmbed(m.Author.Mention(), subs, config.CommandPrefix))
}

func (b *Bot) handlePlayer(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 {
		b.reply(s, m.ChannelID, embed.Error("❌ Missing Riot ID",
			fmt.Sprintf("Usage: `%splayer Username#Tag [region]`", config.CommandPrefix)))
		return
	}

	id, err := riotid.Parse(args[0])
	if err != nil {
		b.reply(s, m.ChannelID, embed.Error("❌ Invalid Riot ID format",
			"Please use the format **Username#Tag**"))
		return
	}
	region := riotid.NormalizeRegion(config.DefaultRegion)
	if len(args) > 1 {
		region = riotid.NormalizeRegion(args[1])
	}

	profile, err := b.Fetcher.Profile(ctx, id, region)
	if err != nil {
		if errors.Is(err, stats.ErrNotFound) {
			b.reply(s, m.ChannelID, embed.Error("❌ Account not found",
				fmt.Sprintf("Could not find **%s** on any source.", id)))
			return
		}
		b.reply(s, m.ChannelID, embed.Warning("⚠️ Sources unavailable",
			"The stat-tracking sites are not responding right now."))
		return
	}
	b.reply(s, m.ChannelID, embed.CreateRankEmbed(id.String(), region, profile))
}

func (b *Bot) handleCheck(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	var subs []models.Subscriber

	if len(args) > 0 {
		id, err := riotid.Parse(args[0])
		if err != nil {
			b.reply(s, m.ChannelID, embed.Error("❌ Invalid Riot ID format",
				"Please use the format **Username#Tag**"))
			return
		}
		sub, err := b.Repo.Get(m.Author.ID, id.Normalized())
		if err != nil || sub == nil {
			b.reply(s, m.ChannelID, embed.Error("❌ Not found",
				fmt.Sprintf("You are not tracking **%s**!", id)))
			return
		}
		subs = []models.Subscriber{*sub}
	} else {
		var err error
		subs, err = b.Repo.ListByOwner(m.Author.ID)
		if err != nil || len(subs) == 0 {
			b.reply(s, m.ChannelID, embed.Info("📭 Not tracking anyone",
				fmt.Sprintf("Use `%strack Username#Tag` to start!", config.CommandPrefix)))
			return
		}
	}

	b.reply(s, m.ChannelID, embed.Info("🔍 Checking...",
		fmt.Sprintf("Checking %d player(s) now.", len(subs))))

	// Force checks run regardless of the auto_notify setting
	for _, sub := range subs {
		if err := b.Poller.CheckSubscriber(ctx, sub); err != nil {
			log.Error().Str("riot_id", sub.RiotID).Err(err).Msg("force check failed")
		}
	}

	b.reply(s, m.ChannelID, embed.Success("✅ Done",
		fmt.Sprintf("Checked %d player(s).", len(subs))))
}

func (b *Bot) handleSettings(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	usage := fmt.Sprintf("Usage: `%ssettings Username#Tag <%s> <on|off>`",
		config.CommandPrefix, strings.Join(database.SettingKeys(), "|"))

	if len(args) < 3 {
		b.reply(s, m.ChannelID, embed.Error("❌ Missing arguments", usage))
		return
	}

	id, err := riotid.Parse(args[0])
	if err != nil {
		b.reply(s, m.ChannelID, embed.Error("❌ Invalid Riot ID format",
			"Please use the format **Username#Tag**"))
		return
	}

	var value bool
	switch strings.ToLower(args[2]) {
	case "on", "true", "1":
		value = true
	case "off", "false", "0":
		value = false
	default:
		b.reply(s, m.ChannelID, embed.Error("❌ Invalid value", usage))
		return
	}

	key := strings.ToLower(args[1])
	if err := b.Repo.UpdateSetting(m.Author.ID, id.Normalized(), key, value); err != nil {
		if errors.Is(err, database.ErrNotTracked) {
			b.reply(s, m.ChannelID, embed.Error("❌ Not found",
				fmt.Sprintf("You are not tracking **%s**!", id)))
			return
		}
		b.reply(s, m.ChannelID, embed.Error("❌ Could not update setting", err.Error()))
		return
	}

	state := "off"
	if value {
		state = "on"
	}
	b.reply(s, m.ChannelID, embed.Success("✅ Setting updated",
		fmt.Sprintf("`%s` is now **%s** for **%s**.", key, state, id)))
}

func (b *Bot) handlePing(s *discordgo.Session, m *discordgo.MessageCreate) {
	latency := s.HeartbeatLatency().Round(time.Millisecond)
	count, _ := b.Repo.Count()

	autoCheck := "❌ stopped"
	if b.Poller.Running() {
		autoCheck = "✅ running"
	}

	e := embed.Success("🏓 Pong!", fmt.Sprintf("Latency: **%s**", latency))
	e.Fields = []*discordgo.MessageEmbedField{
		{
			Name: "📊 Stats",
			Value: fmt.Sprintf("• Servers: %d\n• Players: %d\n• Auto-check: %s",
				len(s.State.Guilds), count, autoCheck),
			Inline: true,
		},
		{
			Name: "⚙️ Config",
			Value: fmt.Sprintf("• Prefix: `%s`\n• Check every: %d minutes",
				config.CommandPrefix, int(config.PollInterval.Minutes())),
			Inline: true,
		},
	}
	b.reply(s, m.ChannelID, e)
}

func (b *Bot) handleHelp(s *discordgo.Session, m *discordgo.MessageCreate) {
	prefix := config.CommandPrefix
	e := embed.Info("🎮 TFT match tracker — help",
		"Automatically announces finished TFT matches for tracked players.")

	commands := []struct{ usage, description string }{
		{prefix + "track <Username#Tag> [region]", "Start tracking a player"},
		{prefix + "confirm <Username#Tag>", "Confirm a pending tracking request"},
		{prefix + "cancel", "Cancel a pending tracking request"},
		{prefix + "untrack <Username#Tag>", "Stop tracking a player"},
		{prefix + "myplayers", "List the players you track"},
		{prefix + "player <Username#Tag> [region]", "Show a player's current rank"},
		{prefix + "check [Username#Tag]", "Check for new matches right now"},
		{prefix + "settings <Username#Tag> <key> <on|off>", "Change per-player settings"},
		{prefix + "ping", "Show bot latency and stats"},
	}
	for _, c := range commands {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("`%s`", c.usage),
			Value: c.description,
		})
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
		Name:  "📝 Example",
		Value: fmt.Sprintf("```\n%strack PlayerName#VN2 vn\n%sconfirm PlayerName#VN2\n```", prefix, prefix),
	})
	b.reply(s, m.ChannelID, e)
}
