// Command unifi-facts runs one read-only query against a UniFi controller
// and prints the controller's data payload as JSON on stdout.
//
// Connection parameters come from flags or from the environment
// (UNIFI_URL, UNIFI_USERNAME, UNIFI_PASSWORD, UNIFI_SITE); a .env file in
// the working directory is loaded if present.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kenmoini/go-unifi-facts/controller"
	"github.com/kenmoini/go-unifi-facts/observability"
)

type options struct {
	baseURL  string
	username string
	password string
	site     string
	query    string
	insecure bool
	timeout  time.Duration
	verbose  bool
	list     bool

	since       int
	startEpoch  int64
	endEpoch    int64
	createdTime int64
	deviceMAC   string
	clientMAC   string
	networkID   string
	wlanID      string
	startNum    int
	limitNum    int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "unifi-facts",
		Short:         "Query read-only facts from a UniFi controller",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	// .env is a convenience for local use; absence is not an error.
	_ = godotenv.Load()

	flags := cmd.Flags()
	flags.StringVar(&opts.baseURL, "base-url", os.Getenv("UNIFI_URL"), "controller base URL, e.g. https://192.168.1.1:8443 (env UNIFI_URL)")
	flags.StringVar(&opts.username, "username", os.Getenv("UNIFI_USERNAME"), "controller username (env UNIFI_USERNAME)")
	flags.StringVar(&opts.password, "password", os.Getenv("UNIFI_PASSWORD"), "controller password (env UNIFI_PASSWORD)")
	flags.StringVar(&opts.site, "site", os.Getenv("UNIFI_SITE"), "controller site (default \"default\")")
	flags.StringVar(&opts.query, "query", "", "query to run; see --list")
	flags.BoolVar(&opts.insecure, "insecure", true, "skip TLS certificate verification (self-signed controllers)")
	flags.DurationVar(&opts.timeout, "timeout", controller.DefaultTimeout, "HTTP timeout")
	flags.BoolVar(&opts.verbose, "verbose", false, "log client activity to stderr")
	flags.BoolVar(&opts.list, "list", false, "list supported queries and exit")

	flags.IntVar(&opts.since, "since", 0, "look-back window in hours, where the query supports it")
	flags.Int64Var(&opts.startEpoch, "start", 0, "window start epoch (units follow the query)")
	flags.Int64Var(&opts.endEpoch, "end", 0, "window end epoch (units follow the query)")
	flags.Int64Var(&opts.createdTime, "created-time", 0, "voucher creation timestamp filter (seconds)")
	flags.StringVar(&opts.deviceMAC, "device-mac", "", "narrow device queries to one device MAC")
	flags.StringVar(&opts.clientMAC, "client-mac", "", "narrow client queries to one client MAC")
	flags.StringVar(&opts.networkID, "network-id", "", "narrow network configuration to one network")
	flags.StringVar(&opts.wlanID, "wlan-id", "", "narrow WLAN configuration to one wireless network")
	flags.IntVar(&opts.startNum, "start-num", 0, "events paging offset")
	flags.IntVar(&opts.limitNum, "limit-num", 0, "events paging limit")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	if opts.list {
		for _, q := range controller.SupportedQueries() {
			fmt.Println(q)
		}
		return nil
	}

	if opts.baseURL == "" {
		return fmt.Errorf("--base-url (or UNIFI_URL) is required")
	}
	if opts.username == "" {
		return fmt.Errorf("--username (or UNIFI_USERNAME) is required")
	}
	if opts.password == "" {
		return fmt.Errorf("--password (or UNIFI_PASSWORD) is required")
	}
	if opts.query == "" {
		return fmt.Errorf("--query is required; run with --list to see the supported queries")
	}

	logger := observability.NoopLogger()
	if opts.verbose {
		zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		logger = observability.NewZerologLogger(zl)
	}

	client, err := controller.NewWithConfig(&controller.ClientConfig{
		BaseURL:            opts.baseURL,
		Username:           opts.username,
		Password:           opts.password,
		Site:               opts.site,
		InsecureSkipVerify: opts.insecure,
		Timeout:            opts.timeout,
		Logger:             logger,
	})
	if err != nil {
		return err
	}

	if _, err := client.Login(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer client.Logout(ctx)

	result, err := client.Execute(ctx, controller.Query(opts.query), &controller.QueryOptions{
		Since:       opts.since,
		StartEpoch:  opts.startEpoch,
		EndEpoch:    opts.endEpoch,
		CreatedTime: opts.createdTime,
		DeviceMAC:   opts.deviceMAC,
		ClientMAC:   opts.clientMAC,
		NetworkID:   opts.networkID,
		WLANID:      opts.wlanID,
		StartNum:    opts.startNum,
		LimitNum:    opts.limitNum,
	})
	if err != nil {
		return fmt.Errorf("query %s: %w", opts.query, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(json.RawMessage(result.Data))
}
