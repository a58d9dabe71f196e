package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/playmark/playmark/history"
	"github.com/playmark/playmark/icon"
	"github.com/playmark/playmark/key"
	"github.com/playmark/playmark/log"
	"github.com/playmark/playmark/playback"
	"github.com/playmark/playmark/player"
	"github.com/playmark/playmark/style"
	"github.com/playmark/playmark/telemetry"
	"github.com/playmark/playmark/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntP("start", "s", 0, "Playlist index to start from")
	lo.Must0(viper.BindPFlag(key.PlayerStartIndex, watchCmd.Flags().Lookup("start")))

	watchCmd.Flags().StringP("purchase", "p", "", "Purchase identifier attached to telemetry (defaults to session.purchase_id)")
	lo.Must0(viper.BindPFlag(key.SessionPurchaseID, watchCmd.Flags().Lookup("purchase")))

	watchCmd.Flags().String("session", "", "Session redirect identifier (random when omitted)")
	watchCmd.Flags().StringP("title", "t", "", "Title shown in the player and stored in history")
	watchCmd.Flags().StringSlice("header", []string{}, "HTTP header sent with stream requests, as 'Name: value'")
}

var watchCmd = &cobra.Command{
	Use:     "watch <file|url>...",
	Short:   "Play a playlist in mpv, resuming every item where it was left",
	Args:    cobra.MinimumNArgs(1),
	Example: "  playmark watch ep1.mkv ep2.mkv --start 1\n  playmark watch https://cdn.example.com/show.m3u8 --title Show --purchase p-123",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(checkPlayer())

		var (
			title   = lo.Must(cmd.Flags().GetString("title"))
			session = lo.Must(cmd.Flags().GetString("session"))
			raw     = lo.Must(cmd.Flags().GetStringSlice("header"))
		)

		headers, err := parseHeaders(raw)
		handleErr(err)

		items := itemsFor(args, title)
		if viper.GetBool(key.HistoryEnable) {
			if err := history.Seed(items); err != nil {
				log.Warnf("seeding from history: %v", err)
			}
		}

		if session == "" {
			session = uuid.NewString()
		}

		handleErr(watch(args, title, headers, items, sessionOptions(session)))
		printSummary(items)
	},
}

func watch(targets []string, title string, headers map[string]string, items []*playback.Item, opts playback.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mpv := player.NewMPV()
	session := playback.NewSession(mpv, items, opts)
	session.Attach()
	defer session.Close()

	fmt.Printf("%s Playing %s\n", icon.Get(icon.Play), util.Quantify(len(items), "item", "items"))
	if err := mpv.Play(targets, title, headers); err != nil {
		_ = mpv.Close()
		return err
	}

	select {
	case <-mpv.Wait():
	case <-ctx.Done():
		log.Info("interrupted, closing player")
	}

	// Let reported checkpoints land before the player and session go away.
	drain := opts.DispatchTimeout
	if drain <= 0 {
		drain = telemetry.DefaultTimeout
	}
	if !session.Drain(drain) {
		log.Warn("some telemetry was not delivered before exit")
	}
	return mpv.Close()
}

// sessionOptions reads the tracking and telemetry settings.
func sessionOptions(sessionID string) playback.Options {
	purchase := mo.None[string]()
	if id := viper.GetString(key.SessionPurchaseID); id != "" {
		purchase = mo.Some(id)
	}

	return playback.Options{
		SessionRedirectID:  sessionID,
		PurchaseID:         purchase,
		StartIndex:         viper.GetInt(key.PlayerStartIndex),
		Sink:               sinkFor(),
		DispatchTimeout:    time.Duration(viper.GetInt(key.TelemetryTimeout)) * time.Second,
		CheckpointInterval: time.Duration(viper.GetInt(key.TrackingCheckpointInterval)) * time.Millisecond,
		ResumeDebounce:     time.Duration(viper.GetInt(key.TrackingResumeDebounce)) * time.Millisecond,
	}
}

// sinkFor combines the enabled telemetry backends.
func sinkFor() telemetry.Sink {
	var sinks telemetry.Multi

	if viper.GetBool(key.HistoryEnable) {
		sinks = append(sinks, history.NewSink())
	}

	if viper.GetBool(key.TelemetryEnable) {
		if endpoint := viper.GetString(key.TelemetryEndpoint); endpoint != "" {
			sinks = append(sinks, telemetry.NewHTTPSink(endpoint))
		} else {
			log.Warnf("%s is set but %s is empty", key.TelemetryEnable, key.TelemetryEndpoint)
		}
	}

	switch len(sinks) {
	case 0:
		return telemetry.Nop{}
	case 1:
		return sinks[0]
	default:
		return sinks
	}
}

// itemsFor builds one playlist item per target. The target doubles as the item ID.
func itemsFor(targets []string, title string) []*playback.Item {
	return lo.Map(targets, func(target string, i int) *playback.Item {
		item := &playback.Item{ID: target, Title: targetName(target)}
		switch {
		case title != "" && len(targets) == 1:
			item.Title = title
		case title != "":
			item.Title = fmt.Sprintf("%s #%d", title, i+1)
		}
		return item
	})
}

func targetName(target string) string {
	if u, err := url.Parse(target); err == nil && u.Scheme != "" && u.Path != "" {
		return path.Base(u.Path)
	}
	return filepath.Base(target)
}

func parseHeaders(raw []string) (map[string]string, error) {
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

func printSummary(items []*playback.Item) {
	if !viper.GetBool(key.HistoryEnable) {
		return
	}

	for _, item := range items {
		record, err := history.Lookup(item.ID)
		if err != nil {
			log.Warnf("history lookup %s: %v", item.ID, err)
			continue
		}
		if r, ok := record.Get(); ok {
			fmt.Printf("%s %s %s\n", icon.Get(icon.Resume), style.Bold(r.Name()), style.Faint(resumeLabel(r)))
		}
	}
}

// resumeLabel describes where a record will resume.
func resumeLabel(r *history.Record) string {
	if r.Location <= 0 {
		return "from the start"
	}
	return "at " + history.FormatLocation(r.Location)
}
