// Command inspect dumps the persisted history of a room as a table.
// Useful to check what the relay actually stored without going through
// the HTTP surface.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"chat-relay/domain"
	"chat-relay/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
	// INSPECT_COLOURS enables colorized output for better readability
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
}

func main() {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal("Config error: ", err)
	}

	room := flag.String("room", "", "Room to inspect")
	limit := flag.Int("limit", 2000, "Maximum number of messages to print")
	flag.Parse()

	if *room == "" {
		log.Fatal("Missing -room flag")
	}

	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repository := repositories.NewMessageRepository(db, slog.Default(), lo.ToPtr(*limit))
	messages, err := repository.History(domain.RoomID(*room))
	if err != nil {
		log.Fatal("Error while reading history: ", err)
	}

	header := fmt.Sprintf("  ====== room %s: %d message(s) ======", *room, len(messages))
	if cfg.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Timestamp", "Author", "Payload"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, msg := range messages {
		// Only the first 8 characters of the ID for readability
		displayID := msg.ID.String()
		if len(displayID) > 8 {
			displayID = displayID[:8]
		}
		table.Append([]string{
			displayID,
			msg.At.Format("2006-01-02 15:04:05"),
			msg.Author,
			msg.Payload,
		})
	}
	table.Render()
}
