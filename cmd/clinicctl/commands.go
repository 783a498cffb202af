package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wolfman30/clinicdesk/internal/appointments"
	"github.com/wolfman30/clinicdesk/internal/auth"
	"github.com/wolfman30/clinicdesk/internal/clients"
	"github.com/wolfman30/clinicdesk/internal/export"
	"github.com/wolfman30/clinicdesk/internal/reports"
)

func (c *cli) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored bearer token",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <token>",
		Short: "Store a bearer token and drop cached responses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.Tokens.SetToken(args[0]); err != nil {
				return err
			}
			if exp, ok := auth.Expiry(args[0]); ok {
				fmt.Fprintf(c.out, "token stored, expires %s\n", exp.Format(time.RFC3339))
			} else {
				fmt.Fprintln(c.out, "token stored")
			}
			return client.ClearCaches(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Log out: remove the token and every cached response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "logged out")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether a usable token is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			token, ok := client.Tokens.Token()
			if !ok {
				fmt.Fprintln(c.out, "no usable token")
				return nil
			}
			if exp, ok := auth.Expiry(token); ok {
				fmt.Fprintf(c.out, "token valid until %s\n", exp.Format(time.RFC3339))
				return nil
			}
			fmt.Fprintln(c.out, "opaque token stored")
			return nil
		},
	})
	return cmd
}

func (c *cli) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or drop cached responses",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.ClearCaches(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "caches cleared")
			return nil
		},
	})
	return cmd
}

func (c *cli) clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Browse clinic clients",
	}

	var (
		page, limit int
		q           clients.Query
		status      string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			q.Status = clients.Status(status)
			result, err := client.Clients.List(cmd.Context(), q, page, limit)
			if err != nil {
				return err
			}
			return c.printJSON(result)
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&limit, "limit", 20, "page size")
	list.Flags().StringVar(&q.Search, "search", "", "free-text filter")
	list.Flags().StringVar(&status, "status", "", "active, inactive or archived")
	list.Flags().StringVar(&q.Tag, "tag", "", "only clients carrying this tag")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			found, err := client.Clients.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printJSON(found)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "search <term>",
		Short: "Search clients by name, email or phone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			result, err := client.Clients.Search(cmd.Context(), args[0], 1, 20)
			if err != nil {
				return err
			}
			return c.printJSON(result)
		},
	})
	return cmd
}

func (c *cli) appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "Browse and cancel appointments",
	}

	var (
		page, limit int
		q           appointments.Query
		status      string
		from, to    string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if q.From, err = parseDay(from); err != nil {
				return err
			}
			if q.To, err = parseDay(to); err != nil {
				return err
			}
			q.Status = appointments.Status(status)
			client, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			result, err := client.Appointments.List(cmd.Context(), q, page, limit)
			if err != nil {
				return err
			}
			return c.printJSON(result)
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&limit, "limit", 20, "page size")
	list.Flags().StringVar(&q.ClientID, "client", "", "client id")
	list.Flags().StringVar(&q.ProviderID, "provider", "", "provider id")
	list.Flags().StringVar(&status, "status", "", "appointment status")
	list.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	list.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	cmd.AddCommand(list)

	var reason string
	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			appt, err := client.Appointments.Cancel(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			return c.printJSON(appt)
		},
	}
	cancel.Flags().StringVar(&reason, "reason", "", "cancellation reason")
	cmd.AddCommand(cancel)
	return cmd
}

func (c *cli) reportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Generate and export analytics reports",
	}

	var preset, from, to string
	rangeFlags := func(fc *cobra.Command) {
		fc.Flags().StringVar(&preset, "range", string(reports.PresetLast30), "preset: today, last7, last30, thisMonth, lastMonth, ytd")
		fc.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (overrides --range)")
		fc.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	}
	resolve := func() (reports.DateRange, error) {
		if from == "" {
			return reports.RangeFor(reports.Preset(preset), time.Now(), time.Local)
		}
		start, err := parseDay(from)
		if err != nil {
			return reports.DateRange{}, err
		}
		end := start
		if to != "" {
			if end, err = parseDay(to); err != nil {
				return reports.DateRange{}, err
			}
		}
		return reports.NewDateRange(start, end, time.UTC)
	}

	generate := &cobra.Command{
		Use:   "generate <kind>",
		Short: "Fetch a revenue, appointments, clients or products report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := reports.ParseKind(args[0])
			if err != nil {
				return err
			}
			rng, err := resolve()
			if err != nil {
				return err
			}
			client, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			report, err := client.Reports.Generate(cmd.Context(), kind, rng)
			if err != nil {
				return err
			}
			return c.printJSON(report)
		},
	}
	rangeFlags(generate)
	cmd.AddCommand(generate)

	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Fetch every report for one range at once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rng, err := resolve()
			if err != nil {
				return err
			}
			client, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			dash, err := client.Reports.Dashboard(cmd.Context(), rng)
			if err != nil {
				return err
			}
			return c.printJSON(dash)
		},
	}
	rangeFlags(dashboard)
	cmd.AddCommand(dashboard)

	var format, outPath string
	exportCmd := &cobra.Command{
		Use:   "export <kind>",
		Short: "Render a report as csv, json or printable html",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := reports.ParseKind(args[0])
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			rng, err := resolve()
			if err != nil {
				return err
			}
			client, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = c.out
			if outPath != "" {
				file, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			res, err := client.Reports.Export(cmd.Context(), kind, rng, f, w)
			if err != nil {
				return err
			}
			c.logger.Info("report exported",
				"filename", res.Filename,
				"bytes", res.Bytes,
				"archive_key", res.ArchiveKey,
			)
			return nil
		},
	}
	rangeFlags(exportCmd)
	exportCmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "csv, json or pdf")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")
	cmd.AddCommand(exportCmd)
	return cmd
}
