// ABOUTME: Command-line client for the test-management API
// ABOUTME: Root cobra command, global flags and the shared client setup

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/api"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/entity"
)

// Version is set at build time.
var version = "dev"

// cli is the state shared by every subcommand of one invocation.
type cli struct {
	out io.Writer
	in  io.Reader

	flagConfigDir string
	flagAPIURL    string
	flagJSON      bool

	configDir string
	cfg       *viper.Viper
	client    *api.Client
	registry  *entity.Registry
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stdin).Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		if api.IsUnauthorized(err) {
			fmt.Fprintln(os.Stderr, "Your session is missing or expired; run `tm-admin login`.")
		}
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer, in io.Reader) *cobra.Command {
	c := &cli{out: out, in: in, registry: entity.Default()}

	root := &cobra.Command{
		Use:           "tm-admin",
		Short:         "tm-admin manages test-management records from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	root.SetOut(out)
	root.SetIn(in)

	root.PersistentFlags().StringVar(&c.flagConfigDir, "config-dir", "", "configuration directory (default: $TESTDESK_ADMIN_DIR or ~/.config/testdesk)")
	root.PersistentFlags().StringVar(&c.flagAPIURL, "api-url", "", "API base URL (default: "+defaultAPIURL+")")
	root.PersistentFlags().BoolVar(&c.flagJSON, "json", false, "output as JSON")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.meCmd(),
		c.entitiesCmd(),
		c.listCmd(),
		c.getCmd(),
		c.createCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.runsCmd(),
	)
	return root
}

// setup loads configuration and builds the API client.
func (c *cli) setup(cmd *cobra.Command) error {
	dir, err := resolveConfigDir(c.flagConfigDir)
	if err != nil {
		return err
	}
	c.configDir = dir

	v, err := loadConfig(dir)
	if err != nil {
		return err
	}
	if err := v.BindPFlag(cfgKeyAPIURL, cmd.Root().PersistentFlags().Lookup("api-url")); err != nil {
		return fmt.Errorf("bind api-url flag: %w", err)
	}
	c.cfg = v

	opts := []api.Option{api.WithTokenSource(c.readToken)}
	if timeout := v.GetDuration(cfgKeyTimeout); timeout > 0 {
		opts = append(opts, api.WithTimeout(timeout))
	}
	c.client = api.New(v.GetString(cfgKeyAPIURL), opts...)
	return nil
}

// descriptor resolves an entity by name, slug or resource.
func (c *cli) descriptor(key string) (entity.Descriptor, error) {
	d, err := c.registry.Resolve(key)
	if errors.Is(err, entity.ErrUnknownEntity) {
		return entity.Descriptor{}, fmt.Errorf("unknown entity %q (run `tm-admin entities` for the list)", key)
	}
	return d, err
}
