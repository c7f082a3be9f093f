package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/wrapgen/design"
	"github.com/sarchlab/wrapgen/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a design document over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		s, err := newServer(cmd)
		if err != nil {
			return err
		}

		url, err := s.StartServer()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Serving design at %s\n", url)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("design", "", "design file to serve")
	serveCmd.Flags().Int("port", 0, "port to listen on (default $"+envPort+" or random)")
	serveCmd.Flags().Bool("open", false, "open the server in a browser")
	_ = serveCmd.MarkFlagRequired("design")

	rootCmd.AddCommand(serveCmd)
}

func newServer(cmd *cobra.Command) (*server.Server, error) {
	path, _ := cmd.Flags().GetString("design")
	open, _ := cmd.Flags().GetBool("open")

	port, err := strconv.Atoi(stringFlagOrEnv(cmd, "port", envPort))
	if err != nil {
		return nil, errors.Wrap(err, "invalid port")
	}

	f, err := design.Load(path)
	if err != nil {
		return nil, err
	}

	return server.NewServer(f).WithPortNumber(port).WithBrowser(open), nil
}
