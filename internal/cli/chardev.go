package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commandlogd/commandlogd/internal/chardev"
	"github.com/commandlogd/commandlogd/internal/config"
	"github.com/commandlogd/commandlogd/internal/ringlog"
)

// newCharDevDemoCmd exercises the in-process CharInterface without a
// socket: it writes a few commands, reads the whole log back through a
// handle, then uses the out-of-band positioning request to seek to the
// second command and reads onward from there.
func newCharDevDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chardev-demo",
		Short: "Exercise the in-process char-device-style interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(effectiveDataDir())
			if err != nil {
				return err
			}

			ring := ringlog.New(cfg.RingCapacity)
			ci := chardev.New(ring)
			ctx := context.Background()

			writer := chardev.NewHandle()
			for _, s := range []string{"hello\n", "world\n", "aesd is cool\n"} {
				if _, err := ci.Write(ctx, writer, []byte(s)); err != nil {
					return err
				}
			}

			reader := chardev.NewHandle()
			buf := make([]byte, 4096)
			n, err := ci.Read(ctx, reader, buf)
			if err != nil {
				return err
			}
			fmt.Printf("full read (%d bytes):\n%s", n, buf[:n])

			if err := ci.Ioctl(ctx, reader, chardev.OpSeekTo, chardev.PositionRequest{WriteCmd: 1, WriteCmdOffset: 0}); err != nil {
				return err
			}
			n, err = ci.Read(ctx, reader, buf)
			if err != nil {
				return err
			}
			fmt.Printf("read from command 1 (%d bytes):\n%s", n, buf[:n])

			return nil
		},
	}
}
