package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/cla-admin/internal/config"
	"github.com/deppfellow/cla-admin/internal/database"
	"github.com/deppfellow/cla-admin/internal/lib/utils"
)

// recordFlags are the flags of one record command. Every command gets its
// own set, bound in its constructor.
type recordFlags struct {
	where  []string
	params []string
	fields []string
	byID   bool
}

func (f *recordFlags) addWhere(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.where, "where", "w", nil, "Equality filter key=value (repeatable)")
}

func (f *recordFlags) addFields(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.fields, "fields", "f", nil, "Comma separated columns to select")
}

func (f *recordFlags) addByID(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.byID, "by-id", false, "Key the output by the id column")
}

// parseParams turns repeated key=value flags into DAL params. The value
// is everything after the first "=" and may be empty.
func parseParams(pairs []string) (database.Params, error) {
	params := database.Params{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

// cliLogger writes DAL logs to stderr so stdout stays valid JSON.
func cliLogger(verbosity int) zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case verbosity == 1:
		level = zerolog.InfoLevel
	case verbosity >= 2:
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// withDB loads the config, opens the database and runs fn.
func withDB(cmd *cobra.Command, fn func(ctx context.Context, db *database.DB) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	log := cliLogger(verbosity)
	db, err := database.New(cfg, &log, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, db)
}

func newRecordsCmd() *cobra.Command {
	flags := &recordFlags{}
	cmd := &cobra.Command{
		Use:   "records <table>",
		Short: "List the records of a table",
		Example: `  cla records extract --where status=approved --fields id,title
  cla records users --by-id`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseParams(flags.where)
			if err != nil {
				return err
			}

			return withDB(cmd, func(ctx context.Context, db *database.DB) error {
				if flags.byID {
					index, err := db.GetRecordsByID(ctx, args[0], filter, flags.fields...)
					if err != nil {
						return err
					}
					return utils.PrintJSON(cmd.OutOrStdout(), index)
				}

				records, err := db.GetRecords(ctx, args[0], filter, flags.fields...)
				if err != nil {
					return err
				}
				if records == nil {
					records = []database.Record{}
				}
				return utils.PrintJSON(cmd.OutOrStdout(), records)
			})
		},
	}

	flags.addWhere(cmd)
	flags.addFields(cmd)
	flags.addByID(cmd)
	return cmd
}

func newRecordCmd() *cobra.Command {
	flags := &recordFlags{}
	cmd := &cobra.Command{
		Use:   "record <table>",
		Short: "Show the single record matching the filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseParams(flags.where)
			if err != nil {
				return err
			}

			return withDB(cmd, func(ctx context.Context, db *database.DB) error {
				rec, err := db.GetRecord(ctx, args[0], filter, flags.fields...)
				if err != nil {
					return err
				}
				if rec == nil {
					return fmt.Errorf("no record in %s matches %v", args[0], filter)
				}
				return utils.PrintJSON(cmd.OutOrStdout(), rec)
			})
		},
	}

	flags.addWhere(cmd)
	flags.addFields(cmd)
	return cmd
}

func newFieldsetCmd() *cobra.Command {
	flags := &recordFlags{}
	cmd := &cobra.Command{
		Use:   "fieldset <table> <field>",
		Short: "List the values of one field for every matching record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseParams(flags.where)
			if err != nil {
				return err
			}

			return withDB(cmd, func(ctx context.Context, db *database.DB) error {
				values, err := db.GetFieldset(ctx, args[0], args[1], filter)
				if err != nil {
					return err
				}
				return utils.PrintJSON(cmd.OutOrStdout(), values)
			})
		},
	}

	flags.addWhere(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	flags := &recordFlags{}
	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete the records matching the filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseParams(flags.where)
			if err != nil {
				return err
			}

			return withDB(cmd, func(ctx context.Context, db *database.DB) error {
				deleted, err := db.DeleteRecord(ctx, args[0], filter)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d record(s) from %s\n", deleted, args[0])
				return nil
			})
		},
	}

	flags.addWhere(cmd)
	_ = cmd.MarkFlagRequired("where")
	return cmd
}

func newQueryCmd() *cobra.Command {
	flags := &recordFlags{}
	cmd := &cobra.Command{
		Use:     "query <sql>",
		Short:   "Run a read statement with {table} references and :name parameters",
		Example: `  cla query "SELECT id, title FROM {extract} WHERE userid = :user" --param user=2`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(flags.params)
			if err != nil {
				return err
			}

			return withDB(cmd, func(ctx context.Context, db *database.DB) error {
				if flags.byID {
					index, err := db.QueryByID(ctx, args[0], params)
					if err != nil {
						return err
					}
					return utils.PrintJSON(cmd.OutOrStdout(), index)
				}

				records, err := db.QueryList(ctx, args[0], params)
				if err != nil {
					return err
				}
				if records == nil {
					records = []database.Record{}
				}
				return utils.PrintJSON(cmd.OutOrStdout(), records)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&flags.params, "param", "p", nil, "Bind parameter name=value (repeatable)")
	flags.addByID(cmd)
	return cmd
}
