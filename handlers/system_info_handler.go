package handlers

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"
	"warden/bot"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)
	vm, _ := mem.VirtualMemory()
	hostInfo, _ := host.Info()

	var dbSize int64
	if info, err := os.Stat(b.GetConfig().DBPath); err == nil {
		dbSize = info.Size() / 1024
	}

	usage := 0.0
	if len(cpuPercent) > 0 {
		usage = cpuPercent[0]
	}
	var uptime time.Duration
	if hostInfo != nil {
		uptime = time.Duration(hostInfo.Uptime) * time.Second
	}
	var memUsed float64
	if vm != nil {
		memUsed = vm.UsedPercent
	}

	// State tracking is off, so count guilds over REST.
	guildCount := "?"
	if guilds, err := s.UserGuilds(200, "", "", false); err == nil {
		guildCount = fmt.Sprintf("%d", len(guilds))
	}

	embed := &discordgo.MessageEmbed{
		Title: "System Info",
		Color: 0x5865f2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "CPU", Value: fmt.Sprintf("%d cores, %.1f%%", cpuCount, usage), Inline: true},
			{Name: "Memory", Value: fmt.Sprintf("%.1f%%", memUsed), Inline: true},
			{Name: "Host uptime", Value: uptime.Truncate(time.Minute).String(), Inline: true},
			{Name: "Guilds", Value: guildCount, Inline: true},
			{Name: "Go routines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "Database", Value: fmt.Sprintf("%d KiB", dbSize), Inline: true},
		},
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to system-info: %v", err)
	}
}
