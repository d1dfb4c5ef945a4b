package cmd

import (
	"fmt"

	"wordsmith/pkg/config"
	"wordsmith/pkg/errors"
	"wordsmith/pkg/history"

	"github.com/spf13/cobra"
)

type CommandBuilder struct {
	cmd *cobra.Command
}

func NewCommand(name, short, long string) *CommandBuilder {
	return &CommandBuilder{
		cmd: &cobra.Command{
			Use:     name,
			Short:   short,
			Long:    long,
			Example: "",
		},
	}
}

func (b *CommandBuilder) WithExample(example string) *CommandBuilder {
	b.cmd.Example = example
	return b
}

func (b *CommandBuilder) WithAliases(aliases ...string) *CommandBuilder {
	b.cmd.Aliases = aliases
	return b
}

func (b *CommandBuilder) WithRun(fn func(cmd *cobra.Command, args []string) error) *CommandBuilder {
	b.cmd.RunE = fn
	return b
}

// WithHistory runs fn against the history store selected by the effective
// configuration and closes the store afterwards.
func (b *CommandBuilder) WithHistory(fn func(cmd *cobra.Command, args []string, cfg *config.Config, store *history.Store) error) *CommandBuilder {
	b.cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(currentOverrides())
		if err != nil {
			return err
		}
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(cmd, args, cfg, store)
	}
	return b
}

func (b *CommandBuilder) WithArgsValidation(minArgs int) *CommandBuilder {
	b.cmd.Args = func(cmd *cobra.Command, args []string) error {
		if len(args) < minArgs {
			return errors.ValidationError(fmt.Sprintf("requires at least %d argument(s)", minArgs))
		}
		return nil
	}
	return b
}

func (b *CommandBuilder) WithMaxArgs(maxArgs int) *CommandBuilder {
	b.cmd.Args = func(cmd *cobra.Command, args []string) error {
		if len(args) > maxArgs {
			return errors.ValidationError(fmt.Sprintf("accepts at most %d argument(s), received %d", maxArgs, len(args)))
		}
		return nil
	}
	return b
}

func (b *CommandBuilder) Build() *cobra.Command {
	return b.cmd
}

var loadConfig = config.Load

var openHistory = func(cfg *config.Config) (*history.Store, error) {
	return history.Open(cfg.HistoryPath(), cfg.History.Limit)
}
