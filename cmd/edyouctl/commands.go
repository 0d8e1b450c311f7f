package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/edyou/engine-dashboard/internal/auth"
	"github.com/edyou/engine-dashboard/internal/client"
	"github.com/edyou/engine-dashboard/internal/config"
	"github.com/edyou/engine-dashboard/internal/logging"
	"github.com/edyou/engine-dashboard/internal/models"
	"github.com/edyou/engine-dashboard/internal/termview"
)

// backend is the slice of the API client the commands use
type backend interface {
	FetchTenants(ctx context.Context) (*models.TenantsResponse, error)
	FetchUsersByTenant(ctx context.Context, tenantName, q string, limit, offset int) (*models.UsersResponse, error)
	FetchUserOverview(ctx context.Context, email string) (*models.UserOverviewResponse, error)
	FetchMetrics(ctx context.Context, q client.MetricsQuery) (*models.MetricsResponse, error)
}

type rootOptions struct {
	configPath string
	baseURL    string
	asJSON     bool

	// newBackend is swapped out in tests
	newBackend func(*rootOptions) (backend, error)
}

func buildRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{newBackend: dialBackend})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "edyouctl",
		Short:        "Inspect EdYou engine analytics from the terminal",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config/dashboard.yml", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Analytics API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print raw JSON instead of tables")

	rootCmd.AddCommand(
		buildTenantsCmd(opts),
		buildUsersCmd(opts),
		buildOverviewCmd(opts),
		buildMetricsCmd(opts),
	)
	return rootCmd
}

func dialBackend(opts *rootOptions) (backend, error) {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Log)
	if opts.baseURL != "" {
		cfg.Backend.BaseURL = opts.baseURL
	}

	var clientOpts []client.Option
	if signer := auth.ServiceTokens(cfg); signer != nil {
		clientOpts = append(clientOpts, client.WithTokenSource(signer))
	}
	return client.New(cfg.Backend, clientOpts...), nil
}

func buildTenantsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tenants",
		Short: "List tenants with their user counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.newBackend(opts)
			if err != nil {
				return err
			}
			resp, err := b.FetchTenants(cmd.Context())
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), resp, func() string { return termview.Tenants(resp) })
		},
	}
}

func buildUsersCmd(opts *rootOptions) *cobra.Command {
	var (
		q      string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "users <tenant>",
		Short: "List one page of a tenant's users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.newBackend(opts)
			if err != nil {
				return err
			}
			pageLimit, pageOffset := client.NormalizePage(limit, offset)
			resp, err := b.FetchUsersByTenant(cmd.Context(), args[0], q, pageLimit, pageOffset)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), resp, func() string { return termview.Users(args[0], pageOffset, resp) })
		},
	}

	cmd.Flags().StringVar(&q, "q", "", "Email substring filter")
	cmd.Flags().IntVar(&limit, "limit", client.DefaultLimit, "Page size (max 500)")
	cmd.Flags().IntVar(&offset, "offset", client.DefaultOffset, "Rows to skip")
	return cmd
}

func buildOverviewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overview <email>",
		Short: "Show a user's runs and the latest run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.newBackend(opts)
			if err != nil {
				return err
			}
			resp, err := b.FetchUserOverview(cmd.Context(), args[0])
			if client.IsNotFound(err) {
				return fmt.Errorf("no user with email %q", args[0])
			}
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), resp, func() string { return termview.Overview(resp) })
		},
	}
}

func buildMetricsCmd(opts *rootOptions) *cobra.Command {
	var (
		days   int
		tenant string
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show KPIs, daily series and distributions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.newBackend(opts)
			if err != nil {
				return err
			}
			resp, err := b.FetchMetrics(cmd.Context(), client.MetricsQuery{Days: days, TenantName: tenant})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), resp, func() string { return termview.Metrics(resp) })
		},
	}

	cmd.Flags().IntVar(&days, "days", client.DefaultDays, "Window in days")
	cmd.Flags().StringVar(&tenant, "tenant", "", "Restrict to one tenant")
	return cmd
}

func (o *rootOptions) print(w io.Writer, v interface{}, render func() string) error {
	if o.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, render())
	return err
}
