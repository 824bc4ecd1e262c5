package embed

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/quanghng/discord-tft-notify/internal/models"
	"github.com/quanghng/discord-tft-notify/internal/stats"
)

const (
	colorInfo    = 0x7289da
	colorSuccess = 0x00ff00
	colorWarning = 0xff9900
	colorError   = 0xff0000
	colorGold    = 0xffd700
	colorSilver  = 0xc0c0c0
	colorBronze  = 0xcd7f32
)

func profileURL(riotID string) string {
	return fmt.Sprintf("https://tracker.gg/tft/profile/riot/%s/overview",
		strings.ReplaceAll(riotID, "#", "%23"))
}

// CreateMatchEmbed builds the notification for a freshly completed
// match.
func CreateMatchEmbed(sub models.Subscriber, match stats.Match, rank *stats.Rank) *discordgo.MessageEmbed {
	var color int
	var emoji, result string
	switch {
	case match.Placement == 1:
		color, emoji = colorGold, "👑"
		result = "**TOP 1 — perfect game!** 🏆"
	case match.Placement <= 4:
		color, emoji = colorSilver, "🥈"
		result = fmt.Sprintf("**TOP %d — a win!** ✅", match.Placement)
	default:
		color, emoji = colorBronze, "📉"
		result = fmt.Sprintf("**TOP %d — better luck next game!** 💪", match.Placement)
	}

	currentRank := "updating..."
	if rank != nil {
		currentRank = rank.Tier
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s %s just finished a TFT match!", emoji, sub.RiotID),
		URL:   profileURL(sub.RiotID),
		Color: color,
		Description: fmt.Sprintf("%s\n\n**📊 Current rank:** %s\n**🎮 Level:** %d\n**⏰ Played:** <t:%d:R>",
			result, currentRank, match.Level, match.Time.Unix()),
		Timestamp: time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "TFT match tracker",
		},
	}

	if len(match.Traits) > 0 {
		lines := make([]string, 0, 4)
		for _, trait := range match.Traits {
			lines = append(lines, fmt.Sprintf("• %s (tier %d)", trait.Name, trait.Tier))
			if len(lines) == 4 {
				break
			}
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "🏆 Composition",
			Value:  strings.Join(lines, "\n"),
			Inline: true,
		})
	}

	if len(match.Units) > 0 {
		lines := make([]string, 0, 4)
		for _, unit := range match.Units {
			lines = append(lines, fmt.Sprintf("• %s ⭐%d", unit.Name, unit.Tier))
			if len(lines) == 4 {
				break
			}
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "⚔️ Key units",
			Value:  strings.Join(lines, "\n"),
			Inline: true,
		})
	}

	if sub.IncludeAnalysis {
		if match.Placement > 4 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "💡 Suggestions",
				Value: "🔸 **Econ**: manage your gold curve\n" +
					"🔸 **Scouting**: check opponents' boards more often\n" +
					"🔸 **Positioning**: adjust against the lobby",
			})
		} else {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "🎯 Nice one!",
				Value: "Keep the streak going! 🚀",
			})
		}
	}

	return embed
}

// CreateRankEmbed builds the player-info overview.
func CreateRankEmbed(riotID, region string, profile *stats.Profile) *discordgo.MessageEmbed {
	rank := profile.Rank
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("🎮 %s", riotID),
		URL:       profileURL(riotID),
		Color:     colorInfo,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📊 Rank", Value: rank.Tier, Inline: true},
			{Name: "🏷️ Region", Value: strings.ToUpper(region), Inline: true},
			{Name: "🔎 Source", Value: profile.Source, Inline: true},
		},
	}
	if rank.Wins+rank.Losses > 0 {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "✅ Wins", Value: fmt.Sprintf("%d", rank.Wins), Inline: true},
			&discordgo.MessageEmbedField{Name: "❌ Losses", Value: fmt.Sprintf("%d", rank.Losses), Inline: true},
			&discordgo.MessageEmbedField{Name: "📈 Win rate", Value: fmt.Sprintf("%.1f%%", rank.WinRate), Inline: true},
		)
	}
	if rank.LP > 0 {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "🏅 LP", Value: fmt.Sprintf("%d", rank.LP), Inline: true})
	}
	return embed
}

// CreateVerifyPromptEmbed asks the user to confirm a tracking request.
func CreateVerifyPromptEmbed(riotID, region, prefix string, profile *stats.Profile, ttl time.Duration) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "✅ Account found!",
		Color:       colorSuccess,
		Description: fmt.Sprintf("**Riot ID:** `%s`\n**Region:** `%s`", riotID, strings.ToUpper(region)),
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📊 Current TFT rank", Value: fmt.Sprintf("**%s**", profile.Rank.Tier), Inline: true},
			{Name: "🏷️ Data source", Value: profile.Source, Inline: true},
			{
				Name: "🔐 Confirm tracking",
				Value: fmt.Sprintf("To confirm, type:\n`%sconfirm %s`\n\n*You have %d minutes to confirm.*",
					prefix, riotID, int(ttl.Minutes())),
			},
		},
	}
}

// CreateTrackedEmbed announces a confirmed subscription.
func CreateTrackedEmbed(sub models.Subscriber, rank string, interval time.Duration) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎉 Tracking started!",
		Color:       colorSuccess,
		Description: fmt.Sprintf("Now tracking **%s**", sub.RiotID),
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "📊 Saved",
				Value: fmt.Sprintf("• Riot ID: `%s`\n• Region: `%s`\n• Channel: <#%s>\n• Current rank: %s",
					sub.RiotID, strings.ToUpper(sub.Region), sub.ChannelID, rank),
			},
			{
				Name: "🔄 Automation",
				Value: fmt.Sprintf("• Checked every **%d minutes**\n• Notifies on every new TFT match",
					int(interval.Minutes())),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "You will be notified as soon as a new match shows up"},
	}
}

// CreateListEmbed renders a user's tracked accounts.
func CreateListEmbed(ownerMention string, subs []models.Subscriber, prefix string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📋 Tracking %d player(s)", len(subs)),
		Description: fmt.Sprintf("User: %s", ownerMention),
		Color:       colorInfo,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Use %suntrack <RiotID> to stop tracking", prefix)},
	}
	for _, sub := range subs {
		lastChecked := "never"
		if !sub.LastChecked.IsZero() {
			lastChecked = sub.LastChecked.Format("15:04")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("🎮 %s", sub.RiotID),
			Value: fmt.Sprintf("• Region: %s\n• Since: %s\n• Last checked: %s\n• Notified: %d time(s)",
				strings.ToUpper(sub.Region), sub.AddedAt.Format("2006-01-02"), lastChecked, sub.TotalNotified),
			Inline: true,
		})
	}
	return embed
}

// Simple status embeds

func Info(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: colorInfo}
}

func Success(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: colorSuccess}
}

func Warning(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: colorWarning}
}

func Error(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: colorError}
}
