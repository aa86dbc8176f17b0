package terminal

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
)

// dispatch parses one line of input through a fresh cobra command tree and
// returns its rendered output. A new root is built per invocation (cobra
// commands aren't safe to re-Execute concurrently, and a debug console may
// have several sessions dispatching at once) — building the tree is cheap
// next to a TCP round trip.
func (c *Console) dispatch(styles styleSet, args []string) (string, error) {
	var out bytes.Buffer
	root := c.newRootCmd(styles)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)

	if err := root.Execute(); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (c *Console) newRootCmd(styles styleSet) *cobra.Command {
	root := &cobra.Command{
		Use:           "rovmesh",
		Short:         "rovmesh debug console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		c.statusCmd(styles),
		c.armCmd(styles),
		c.disarmCmd(styles),
		c.peersCmd(styles),
	)
	return root
}

func (c *Console) statusCmd(styles styleSet) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "show the robot's current status",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.api.Snapshot()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), styles.renderStatus(snap))
			return nil
		},
	}
}

func (c *Console) armCmd(styles styleSet) *cobra.Command {
	return &cobra.Command{
		Use:   "arm",
		Short: "arm the robot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.api.RequestArm(); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), styles.armed.Render("arm requested")+"\n")
			return nil
		},
	}
}

func (c *Console) disarmCmd(styles styleSet) *cobra.Command {
	return &cobra.Command{
		Use:   "disarm",
		Short: "disarm the robot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.api.RequestDisarm(); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), styles.disarmed.Render("disarm requested")+"\n")
			return nil
		},
	}
}

func (c *Console) peersCmd(styles styleSet) *cobra.Command {
	return &cobra.Command{
		Use:   "peers",
		Short: "list connected peers",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.api.Snapshot()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), styles.renderPeers(snap))
			return nil
		},
	}
}
