package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"safeguard/config"
	"safeguard/internal/client/api"
	"safeguard/internal/client/geolocation"
	"safeguard/internal/client/sharing"
	"safeguard/internal/domain/entity"
	"safeguard/internal/infra/auth"
	"safeguard/internal/infra/cache"
	"safeguard/internal/infra/httpclient"
	logs "safeguard/internal/infra/log"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer

	apiURL string
	token  string
}

func newRootCmd() *cobra.Command {
	a := &app{out: os.Stdout}

	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Share this device's location and inspect nearby alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api", "", "Backend base URL (defaults to tracker.apiBaseUrl)")
	root.PersistentFlags().StringVar(&a.token, "token", "", "Session token (defaults to tracker.token)")

	root.AddCommand(
		a.shareCmd(),
		a.peersCmd(),
		a.nearbyCmd(),
		a.tokenCmd(),
	)

	return root
}

// init loads config.yaml when present; the tracker also runs from flags alone.
func (a *app) init() error {
	cfg, err := config.New()
	if err != nil {
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}
	a.cfg = cfg

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return err
	}
	a.logger = logger

	if a.apiURL == "" {
		a.apiURL = cfg.Tracker.APIBaseURL
	}
	if a.token == "" {
		a.token = cfg.Tracker.Token
	}

	return nil
}

func (a *app) client(opts ...api.Option) *api.Client {
	return api.New(a.apiURL, a.token, httpclient.New(a.cfg, a.logger), a.logger, opts...)
}

func (a *app) shareCmd() *cobra.Command {
	var (
		recipients []string
		lat, lng   float64
		replayPath string
		name       string
	)

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share live location until interrupted, then stop sharing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			shareWith, err := parseUUIDs(recipients)
			if err != nil {
				return err
			}

			source, err := newSource(lat, lng, replayPath)
			if err != nil {
				return err
			}

			ctrl := sharing.New(source, a.client(), sharing.SettingsFromConfig(a.cfg.Tracker, name), a.logger,
				sharing.WithPushHook(func(r sharing.PushResult) {
					if r.Err != nil {
						fmt.Fprintf(a.out, "%s push failed: %v\n", r.Trigger, r.Err)

						return
					}
					fmt.Fprintf(a.out, "%s pushed %.6f,%.6f\n", r.Trigger, r.Position.Latitude, r.Position.Longitude)
				}))
			defer ctrl.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := ctrl.StartSharing(ctx, shareWith); err != nil {
				var posErr *geolocation.PositionError
				if errors.As(err, &posErr) {
					return errors.Errorf("cannot start sharing: %s", posErr.Reason())
				}

				return err
			}
			fmt.Fprintf(a.out, "sharing with %d recipient(s), press Ctrl+C to stop\n", len(shareWith))

			<-ctx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			return ctrl.StopSharing(stopCtx)
		},
	}

	cmd.Flags().StringSliceVar(&recipients, "to", nil, "Recipient user IDs")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of a fixed position")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude of a fixed position")
	cmd.Flags().StringVar(&replayPath, "replay", "", "JSON file with a track of {\"lat\",\"lng\"} points to walk")
	cmd.Flags().StringVar(&name, "name", "", "Display name shown to recipients")

	return cmd
}

func (a *app) peersCmd() *cobra.Command {
	var includeOwn bool

	cmd := &cobra.Command{
		Use:   "peers",
		Short: "List live locations shared with you",
		RunE: func(cmd *cobra.Command, _ []string) error {
			locations, err := a.client().VisibleLocations(cmd.Context(), includeOwn)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tNAME\tLAT\tLNG\tUPDATED")
			for _, l := range locations {
				fmt.Fprintf(w, "%s\t%s\t%.6f\t%.6f\t%s\n",
					l.UserID, l.Name, l.Latitude, l.Longitude, l.LastUpdated.Format(time.RFC3339))
			}

			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&includeOwn, "include-own", false, "Include your own location")

	return cmd
}

func (a *app) nearbyCmd() *cobra.Command {
	var lat, lng, radius float64

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Print hazard alerts whose area overlaps a circle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := a.client(api.WithCache(cache.NewMemoryCache(a.cfg.Cache.Retention), a.cfg.Cache.DefaultTTL))

			list, err := client.Alerts(cmd.Context(), api.AlertQuery{Near: true, Lat: lat, Lng: lng, RadiusKm: radius})
			if err != nil {
				return err
			}
			if list.Fallback {
				fmt.Fprintln(a.out, "warning: live alert feed unavailable, showing partial data")
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SEVERITY\tTYPE\tTITLE\tLOCATION")
			for _, alert := range list.Alerts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", alert.Severity, alert.Type, alert.Title, alert.Location)
			}

			return w.Flush()
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the center")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude of the center")
	cmd.Flags().Float64Var(&radius, "radius", 10, "Radius in km")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")

	return cmd
}

func (a *app) tokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development session token signed with auth.jwtSecret",
		RunE: func(*cobra.Command, []string) error {
			id := uuid.New()
			if userID != "" {
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return errors.Wrap(err, "invalid --user")
				}
				id = parsed
			}

			jwtService, err := auth.NewJWTService(a.cfg)
			if err != nil {
				return err
			}

			token, err := jwtService.Issue(entity.Identity{UserID: id, Email: email}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "user:  %s\ntoken: %s\n", id, token)

			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID (random when empty)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errors.Errorf("invalid recipient %q", s)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

type trackPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func newSource(lat, lng float64, replayPath string) (geolocation.Source, error) {
	if replayPath == "" {
		return geolocation.NewStatic(lat, lng), nil
	}

	raw, err := os.ReadFile(replayPath)
	if err != nil {
		return nil, errors.Wrap(err, "read replay track")
	}
	var track []trackPoint
	if err := json.Unmarshal(raw, &track); err != nil {
		return nil, errors.Wrap(err, "decode replay track")
	}

	points := make([]entity.Position, 0, len(track))
	for _, p := range track {
		points = append(points, entity.Position{Latitude: p.Lat, Longitude: p.Lng})
	}

	return geolocation.NewReplay(points, 5*time.Second)
}
