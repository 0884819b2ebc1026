package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/kigopro/kigo/internal/events"
	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

var watchCmd = &cobra.Command{
	Use:   "watch <campaigns|ads|adgroups|tokens>",
	Short: "Watch a list and print rows as they change",
	Long: `Watch a list and print rows that are new or changed since the last query.

Re-queries when the server publishes an event on NATS (--nats, $KIGO_NATS_URL
or the active remote), otherwise polls every --interval. The list flags
narrow what is watched, e.g.:
  kigo watch campaigns --preset running
  kigo watch tokens --customer cust-004 --status Active`,
	GroupID:   "views",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"campaigns", "ads", "adgroups", "tokens"},
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := listRequestFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		customer, _ := cmd.Flags().GetString("customer")
		opts := watchOptions{out: cmd.OutOrStdout()}
		opts.interval, _ = cmd.Flags().GetDuration("interval")
		opts.once, _ = cmd.Flags().GetBool("once")
		opts.topic, _ = cmd.Flags().GetString("topic")
		natsFlag, _ := cmd.Flags().GetString("nats")
		opts.natsURL = resolveNATSURL(natsFlag)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		switch args[0] {
		case "campaigns":
			return newWatcher(campaignColumns, func(ctx context.Context) (*listing.Response[*model.Campaign], error) {
				return kigoClient.ListCampaigns(ctx, req)
			}, func(c *model.Campaign) string { return c.ID }).run(ctx, opts)
		case "ads":
			return newWatcher(adColumns, func(ctx context.Context) (*listing.Response[*model.Ad], error) {
				return kigoClient.ListAds(ctx, req)
			}, func(a *model.Ad) string { return a.ID }).run(ctx, opts)
		case "adgroups":
			return newWatcher(adGroupColumns, func(ctx context.Context) (*listing.Response[*model.AdGroup], error) {
				return kigoClient.ListAdGroups(ctx, req)
			}, func(g *model.AdGroup) string { return g.ID }).run(ctx, opts)
		default:
			if customer == "" {
				return fmt.Errorf("watching tokens requires --customer")
			}
			return newWatcher(tokenColumns, func(ctx context.Context) (*listing.Response[*model.Token], error) {
				return kigoClient.ListTokens(ctx, customer, req)
			}, func(t *model.Token) string { return t.ID }).run(ctx, opts)
		}
	},
}

// resolveNATSURL picks the NATS URL: flag, then KIGO_NATS_URL, then the
// active remote.
func resolveNATSURL(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("KIGO_NATS_URL"); v != "" {
		return v
	}
	return activeRemoteNATSURL()
}

type watchOptions struct {
	out      io.Writer
	natsURL  string
	topic    string
	interval time.Duration
	once     bool
}

// watcher re-runs one list query and prints the rows that differ from
// what it printed before.
type watcher[T any] struct {
	cols  []column[T]
	fetch func(context.Context) (*listing.Response[T], error)
	id    func(T) string
	seen  map[string]string
}

func newWatcher[T any](cols []column[T], fetch func(context.Context) (*listing.Response[T], error), id func(T) string) *watcher[T] {
	return &watcher[T]{cols: cols, fetch: fetch, id: id, seen: make(map[string]string)}
}

func (w *watcher[T]) run(ctx context.Context, opts watchOptions) error {
	if err := w.queryAndPrint(ctx, opts.out); err != nil {
		return err
	}
	if opts.once {
		return nil
	}
	if opts.natsURL != "" {
		return w.watchNATS(ctx, opts)
	}
	return w.watchPoll(ctx, opts)
}

// watchNATS re-queries on events with a short debounce, and immediately
// after a reconnect to pick up anything missed while disconnected.
func (w *watcher[T]) watchNATS(ctx context.Context, opts watchOptions) error {
	reconnectCh := make(chan struct{}, 1)

	sub, err := events.NewNATSSubscriber(opts.natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats: disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("nats: reconnected")
			select {
			case reconnectCh <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(opts.topic)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	debounce := time.NewTimer(0)
	debounce.Stop()
	select {
	case <-debounce.C:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			debounce.Reset(200 * time.Millisecond)
		case <-reconnectCh:
			debounce.Reset(0)
		case <-debounce.C:
			if err := w.queryAndPrint(ctx, opts.out); err != nil {
				return err
			}
		}
	}
}

func (w *watcher[T]) watchPoll(ctx context.Context, opts watchOptions) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(opts.interval):
		}
		if err := w.queryAndPrint(ctx, opts.out); err != nil {
			return err
		}
	}
}

func (w *watcher[T]) queryAndPrint(ctx context.Context, out io.Writer) error {
	resp, err := w.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	changed := w.diff(resp.Items)
	if len(changed) == 0 {
		return nil
	}
	if jsonOutput {
		enc := json.NewEncoder(out)
		for _, it := range changed {
			if err := enc.Encode(it); err != nil {
				return err
			}
		}
		return nil
	}
	fmt.Fprintf(out, "%s  %d changed\n", time.Now().Format("15:04:05"), len(changed))
	printTable(out, w.cols, changed, resp.Pagination, resp.PageNumbers)
	return nil
}

// diff returns the items that are new or whose encoding changed since the
// last call, and records them as seen.
func (w *watcher[T]) diff(items []T) []T {
	var changed []T
	for _, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			continue
		}
		id := w.id(it)
		if prev, ok := w.seen[id]; !ok || prev != string(data) {
			changed = append(changed, it)
		}
		w.seen[id] = string(data)
	}
	return changed
}

func init() {
	addListFlags(watchCmd)
	watchCmd.Flags().String("customer", "", "customer whose tokens to watch")
	watchCmd.Flags().String("nats", "", "NATS URL (default: $KIGO_NATS_URL or the active remote's)")
	watchCmd.Flags().String("topic", events.TopicAll, "NATS subject pattern that triggers a re-query")
	watchCmd.Flags().Duration("interval", 5*time.Second, "polling interval without NATS")
	watchCmd.Flags().Bool("once", false, "exit after the first query")
}
